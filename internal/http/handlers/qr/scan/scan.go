// Package scan реализует HTTP-обработчик сканирования QR-кода на проходной.
//
// Handler извлекает токен из URL, вызывает бизнес-логику сканирования
// и возвращает сводку визита. Использованный, истёкший или преждевременно
// предъявленный код превращается в отдельный HTTP-статус.
package scan

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

// Handler управляет HTTP-запросами на сканирование QR-кодов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики сканирования.
type Service interface {
	Scan(ctx context.Context, qrData string) (*models.VisitSummary, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сканировать QR-код
// @Description Проверяет QR-пропуск и однократно помечает его использованным, возвращая сводку визита.
// @Tags QR
// @Produce  json
// @Security BearerAuth
// @Param qrData path string true "Токен QR-кода"
// @Success 200 {object} map[string]any "Сводка визита"
// @Failure 400 {object} response.ErrorResponse "Пустой токен"
// @Failure 404 {object} response.ErrorResponse "Код не найден"
// @Failure 409 {object} response.ErrorResponse "Код уже использован или дата не наступила"
// @Failure 410 {object} response.ErrorResponse "Код истёк"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /scan-qr/{qrData} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.qr.scan"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	qrData := chi.URLParam(r, "qrData")
	if qrData == "" {
		log.Error("empty qr token in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("empty qr token"))
		return
	}

	summary, err := h.service.Scan(r.Context(), qrData)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("QR code not found"))
		case errors.Is(err, models.ErrAlreadyTerminal):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("QR code is no longer usable"))
		case errors.Is(err, models.ErrNotYet):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("visit date does not match today"))
		case errors.Is(err, models.ErrQRExpired):
			w.WriteHeader(http.StatusGone)
			render.JSON(w, r, response.Error("QR code expired"))
		default:
			log.Error("failed to scan QR code", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not scan QR code"))
		}
		return
	}

	log.Info("QR code scanned", slog.String("visitor", summary.VisitorName))
	render.JSON(w, r, response.StatusOKWithData(summary))
}
