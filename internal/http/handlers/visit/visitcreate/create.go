// Package visitcreate реализует HTTP-обработчик планирования визита.
package visitcreate

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

// Handler управляет HTTP-запросами на планирование визитов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики планирования визита.
type Service interface {
	ScheduleVisit(ctx context.Context, userUID string, req models.DummyVisitDetail) (string, error)
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
// @Summary Запланировать визит
// @Description Создает запланированный визит для посетителя. Дата в формате 02-01-2006.
// @Tags Visits
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyVisitDetail true "Данные визита"
// @Success 200 {object} map[string]any "ID созданного визита"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Посетитель не найден"
// @Failure 409 {object} response.ErrorResponse "Дубликат визита или прошедшая дата"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /visits [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.visit.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyVisitDetail
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

	id, err := h.service.ScheduleVisit(r.Context(), userUID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidInput):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, models.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("visitor not found"))
		case errors.Is(err, models.ErrPastVisitDate):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("cannot schedule a visit for a past date"))
		case errors.Is(err, models.ErrDuplicateVisit):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("visit for this date already exists"))
		default:
			log.Error("failed to schedule visit", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not schedule visit"))
		}
		return
	}

	log.Info("scheduled visit", slog.String("visit_details_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"visit_details_id": id,
	}))
}
