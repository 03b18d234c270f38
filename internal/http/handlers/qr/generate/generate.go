// Package generate реализует HTTP-обработчик платного выпуска QR-кода.
//
// Handler принимает JSON-запрос с посетителем и визитом, валидирует его,
// извлекает идентификатор подписчика из контекста и вызывает бизнес-логику
// выпуска. Каждая отказавшая проверка превращается в отдельный HTTP-статус,
// чтобы клиент мог отличить нехватку средств от дубликата или прошедшей даты.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/visitgate/visitgate/internal/http/middlewarectx"
	"github.com/visitgate/visitgate/internal/http/response"
	"github.com/visitgate/visitgate/internal/lib/sl"
	"github.com/visitgate/visitgate/internal/models"
)

// Handler управляет HTTP-запросами на выпуск QR-кодов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики выпуска QR-кода.
type Service interface {
	Issue(ctx context.Context, userUID string, req models.DummyGenerateQR) (*models.IssueResult, error)
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
// @Summary Выпустить QR-код для визита
// @Description Списывает комиссию с баланса и выпускает QR-пропуск для запланированного визита.
// @Tags QR
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyGenerateQR true "Посетитель и визит"
// @Success 200 {object} map[string]any "Выпущенный QR-код и новый баланс"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Недостаточно средств"
// @Failure 404 {object} response.ErrorResponse "Посетитель или визит не найдены"
// @Failure 409 {object} response.ErrorResponse "Дубликат QR-кода или прошедшая дата"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /generate-qr [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.qr.generate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyGenerateQR
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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.Issue(r.Context(), userUID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidInput):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, models.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, models.ErrPastVisitDate):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("cannot generate QR for a past visit date"))
		case errors.Is(err, models.ErrDuplicateQR):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("QR code for this visit date already exists"))
		case errors.Is(err, models.ErrInsufficientFunds):
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error("insufficient funds"))
		default:
			log.Error("failed to issue QR code", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not issue QR code"))
		}
		return
	}

	log.Info("issued QR code", slog.String("qr_code_id", result.QRCodeID))
	render.JSON(w, r, response.StatusOKWithData(result))
}
