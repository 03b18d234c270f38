// Package check реализует HTTP-обработчик проверки баланса пользователя.
//
// Подписчик видит только собственный баланс, администратор — любой.
package check

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/visitgate/visitgate/internal/http/middlewarectx"
	"github.com/visitgate/visitgate/internal/http/response"
	"github.com/visitgate/visitgate/internal/lib/sl"
	"github.com/visitgate/visitgate/internal/models"
)

// Handler управляет HTTP-запросами на проверку баланса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики баланса.
type Service interface {
	GetBalance(ctx context.Context, userUID string) (int64, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверить баланс
// @Description Возвращает текущий остаток средств пользователя в минимальных единицах.
// @Tags Balance
// @Produce  json
// @Security BearerAuth
// @Param userId path string true "UID пользователя"
// @Success 200 {object} map[string]any "Текущий баланс"
// @Failure 400 {object} response.ErrorResponse "Некорректный UID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Чужой баланс"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /check-balance/{userId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.balance.check"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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
		log.Error("attempt to read foreign balance", slog.String("target", targetUID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	}

	amount, err := h.service.GetBalance(r.Context(), targetUID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("malformed user id"))
			return
		}
		log.Error("failed to get balance", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get balance"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_uid": targetUID,
		"balance":  amount,
	}))
}
