// Package feeread реализует HTTP-обработчик чтения комиссии по бизнес-коду.
package feeread

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/visitgate/visitgate/internal/http/response"
	"github.com/visitgate/visitgate/internal/lib/sl"
	"github.com/visitgate/visitgate/internal/models"
)

// Handler управляет HTTP-запросами на чтение комиссий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс поиска комиссии.
type Service interface {
	FindFeeByCodeAndStatus(ctx context.Context, feeCode, status string) (*models.Fee, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить комиссию по коду
// @Description Возвращает размер активной комиссии по её бизнес-коду, например GENQR01.
// @Tags Fees
// @Produce  json
// @Security BearerAuth
// @Param code path string true "Бизнес-код комиссии"
// @Success 200 {object} map[string]any "Комиссия"
// @Failure 404 {object} response.ErrorResponse "Комиссия не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /fees/{code} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.fee.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	fee, err := h.service.FindFeeByCodeAndStatus(r.Context(), chi.URLParam(r, "code"), "active")
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("fee not found"))
			return
		}
		log.Error("failed to read fee", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read fee"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"fee": fee,
	}))
}
