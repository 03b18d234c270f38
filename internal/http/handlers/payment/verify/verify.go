// Package verify реализует HTTP-обработчик решения администратора по платежу.
//
// Handler принимает действие verify либо decline, вызывает бизнес-логику
// подтверждения и отвечает ошибкой, если платёж уже был разрешён ранее.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/visitgate/visitgate/internal/http/response"
	"github.com/visitgate/visitgate/internal/lib/sl"
	"github.com/visitgate/visitgate/internal/models"
)

// Handler управляет HTTP-запросами на подтверждение платежей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики подтверждения платежей.
type Service interface {
	Verify(ctx context.Context, paymentID string) error
	Decline(ctx context.Context, paymentID, reason string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтвердить или отклонить платёж
// @Description Однократно разрешает ожидающее пополнение: verify зачисляет средства, decline требует причину.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID платежа"
// @Param request body models.DummyVerification true "Решение администратора"
// @Success 200 {object} map[string]any "Платёж разрешён"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Платёж не найден"
// @Failure 409 {object} response.ErrorResponse "Платёж уже разрешён"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /update-verification/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyVerification
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	paymentID := chi.URLParam(r, "id")

	var err error
	if req.Action == "verify" {
		err = h.service.Verify(r.Context(), paymentID)
	} else {
		err = h.service.Decline(r.Context(), paymentID, req.Reason)
	}
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidInput):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, models.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
		case errors.Is(err, models.ErrAlreadyResolved):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("payment already resolved"))
		default:
			log.Error("failed to resolve payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not resolve payment"))
		}
		return
	}

	log.Info("payment resolved", slog.String("payment_id", paymentID), slog.String("action", req.Action))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment_id": paymentID,
		"action":     req.Action,
	}))
}
