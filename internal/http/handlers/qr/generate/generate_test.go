package generate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/visitgate/visitgate/internal/http/middlewarectx"
	"github.com/visitgate/visitgate/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Issue(ctx context.Context, userUID string, req models.DummyGenerateQR) (*models.IssueResult, error) {
	args := m.Called(ctx, userUID, req)
	if res := args.Get(0); res != nil {
		return res.(*models.IssueResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const (
	testUserUID   = "7b8d6c1e-3f5a-4b2c-9d8e-1a2b3c4d5e6f"
	testVisitorID = "2c3d4e5f-6a7b-4c8d-9e0f-1a2b3c4d5e6f"
	testVisitID   = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

func validBody() string {
	return `{"visitor_id":"` + testVisitorID + `","visit_details_id":"` + testVisitID + `"}`
}

func TestGenerateHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "successful issuance",
			body:    validBody(),
			userUID: testUserUID,
			setupMock: func(m *MockService) {
				m.On("Issue", mock.Anything, testUserUID, mock.Anything).Return(&models.IssueResult{
					NewBalance: 5000,
					PaymentID:  "payment-1",
					QRCodeID:   "qr-1",
					QRImageURL: "https://qr.example.com/img",
					QRData:     "token",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"qr_code_id":"qr-1"`,
		},
		{
			name:           "invalid JSON",
			body:           `{not json`,
			userUID:        testUserUID,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
		{
			name:           "validation failure",
			body:           `{"visitor_id":"not-a-uuid","visit_details_id":"` + testVisitID + `"}`,
			userUID:        testUserUID,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "VisitorID",
		},
		{
			name:           "missing user in context",
			body:           validBody(),
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "unauthorized",
		},
		{
			name:    "insufficient funds",
			body:    validBody(),
			userUID: testUserUID,
			setupMock: func(m *MockService) {
				m.On("Issue", mock.Anything, testUserUID, mock.Anything).Return(nil, models.ErrInsufficientFunds)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   "insufficient funds",
		},
		{
			name:    "duplicate QR",
			body:    validBody(),
			userUID: testUserUID,
			setupMock: func(m *MockService) {
				m.On("Issue", mock.Anything, testUserUID, mock.Anything).Return(nil, models.ErrDuplicateQR)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "already exists",
		},
		{
			name:    "past visit date",
			body:    validBody(),
			userUID: testUserUID,
			setupMock: func(m *MockService) {
				m.On("Issue", mock.Anything, testUserUID, mock.Anything).Return(nil, models.ErrPastVisitDate)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "past visit date",
		},
		{
			name:    "service failure",
			body:    validBody(),
			userUID: testUserUID,
			setupMock: func(m *MockService) {
				m.On("Issue", mock.Anything, testUserUID, mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "could not issue QR code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(newNoopLogger(), mockService)

			req := httptest.NewRequest(http.MethodPost, "/generate-qr", strings.NewReader(tt.body))
			if tt.userUID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
