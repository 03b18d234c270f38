// Package topup реализует HTTP-обработчик заявки на пополнение баланса.
//
// Средства не зачисляются сразу: заявка попадает в журнал платежей
// в статусе pending и ждёт решения администратора.
package topup

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

	"github.com/visitgate/visitgate/internal/http/middlewarectx"
	"github.com/visitgate/visitgate/internal/http/response"
	"github.com/visitgate/visitgate/internal/lib/sl"
	"github.com/visitgate/visitgate/internal/models"
)

// Handler управляет HTTP-запросами на пополнение баланса.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики пополнения.
type Service interface {
	TopUp(ctx context.Context, userUID string, req models.DummyTopUp) (string, error)
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
// @Summary Пополнить баланс
// @Description Создает заявку на пополнение, ожидающую подтверждения администратора.
// @Tags Balance
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param userId path string true "UID пользователя"
// @Param request body models.DummyTopUp true "Сумма и способ оплаты"
// @Success 200 {object} map[string]any "ID созданной заявки"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Чужой баланс"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /top-up/{userId} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.balance.topup"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyTopUp
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

	targetUID := chi.URLParam(r, "userId")
	callerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || callerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if targetUID != callerUID && role != models.RoleAdmin {
		log.Error("attempt to top up foreign balance", slog.String("target", targetUID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	}

	paymentID, err := h.service.TopUp(r.Context(), targetUID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidInput):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("malformed user id"))
		case errors.Is(err, models.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to create top-up", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create top-up"))
		}
		return
	}

	log.Info("created top-up request", slog.String("payment_id", paymentID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment_id": paymentID,
	}))
}
