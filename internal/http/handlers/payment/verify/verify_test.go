package verify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/visitgate/visitgate/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Verify(ctx context.Context, paymentID string) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

func (m *MockService) Decline(ctx context.Context, paymentID, reason string) error {
	args := m.Called(ctx, paymentID, reason)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const testPaymentID = "5f4e3d2c-1b0a-4f9e-8d7c-6b5a4f3e2d1c"

func TestVerifyHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "verify succeeds",
			body: `{"action":"verify"}`,
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, testPaymentID).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"action":"verify"`,
		},
		{
			name: "decline with reason succeeds",
			body: `{"action":"decline","reason":"подозрительный перевод"}`,
			setupMock: func(m *MockService) {
				m.On("Decline", mock.Anything, testPaymentID, "подозрительный перевод").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"action":"decline"`,
		},
		{
			name:           "invalid JSON",
			body:           `{not json`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
		{
			name:           "unknown action",
			body:           `{"action":"approve"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "Action",
		},
		{
			name: "decline without reason",
			body: `{"action":"decline"}`,
			setupMock: func(m *MockService) {
				m.On("Decline", mock.Anything, testPaymentID, "").Return(models.ErrInvalidInput)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "payment not found",
			body: `{"action":"verify"}`,
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, testPaymentID).Return(models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "payment not found",
		},
		{
			name: "already resolved",
			body: `{"action":"verify"}`,
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, testPaymentID).Return(models.ErrAlreadyResolved)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "payment already resolved",
		},
		{
			name: "service failure",
			body: `{"action":"verify"}`,
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, testPaymentID).Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "could not resolve payment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(newNoopLogger(), mockService)

			req := httptest.NewRequest(http.MethodPut, "/update-verification/"+testPaymentID, strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", testPaymentID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}

			mockService.AssertExpectations(t)
		})
	}
}
