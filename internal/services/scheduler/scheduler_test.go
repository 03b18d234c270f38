package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/visitgate/visitgate/internal/lib/visitday"
	"github.com/visitgate/visitgate/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ExpireQRCodesBefore(ctx context.Context, day time.Time) (int, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ExpireLapsedSubscriptions(ctx context.Context, now time.Time) ([]*models.Notice, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notice), args.Error(1)
}

func (m *MockRepository) ExpireLapsedTrials(ctx context.Context, now time.Time) ([]*models.Notice, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notice), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newTestClock(t *testing.T) *visitday.Clock {
	t.Helper()
	clock, err := visitday.NewClock("UTC")
	if err != nil {
		t.Fatalf("failed to create clock: %v", err)
	}
	return clock
}

func TestService_RunOnce(t *testing.T) {
	clock := newTestClock(t)
	today := clock.Today().Time()

	t.Run("all sweeps run and publish notices", func(t *testing.T) {
		repo := new(MockRepository)
		publisher := new(MockPublisher)
		service := New(repo, publisher, clock, time.Hour, newNoopLogger())

		repo.On("ExpireQRCodesBefore", mock.Anything, today).Return(3, nil).Once()
		repo.On("ExpireLapsedSubscriptions", mock.Anything, mock.Anything).Return([]*models.Notice{
			{Email: "a@example.com", Username: "a"},
		}, nil).Once()
		repo.On("ExpireLapsedTrials", mock.Anything, mock.Anything).Return([]*models.Notice{
			{Email: "b@example.com", Username: "b"},
		}, nil).Once()
		publisher.On("Publish", "expiring", mock.Anything).Return(nil).Twice()

		service.RunOnce(context.Background())

		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("failed sweep does not stop the others", func(t *testing.T) {
		repo := new(MockRepository)
		publisher := new(MockPublisher)
		service := New(repo, publisher, clock, time.Hour, newNoopLogger())

		repo.On("ExpireQRCodesBefore", mock.Anything, today).Return(0, errors.New("db error")).Once()
		repo.On("ExpireLapsedSubscriptions", mock.Anything, mock.Anything).Return([]*models.Notice{}, nil).Once()
		repo.On("ExpireLapsedTrials", mock.Anything, mock.Anything).Return([]*models.Notice{}, nil).Once()

		service.RunOnce(context.Background())

		repo.AssertExpectations(t)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestService_Run_StopsOnContextCancel(t *testing.T) {
	clock := newTestClock(t)
	repo := new(MockRepository)
	publisher := new(MockPublisher)
	service := New(repo, publisher, clock, time.Hour, newNoopLogger())

	repo.On("ExpireQRCodesBefore", mock.Anything, mock.Anything).Return(0, nil).Once()
	repo.On("ExpireLapsedSubscriptions", mock.Anything, mock.Anything).Return([]*models.Notice{}, nil).Once()
	repo.On("ExpireLapsedTrials", mock.Anything, mock.Anything).Return([]*models.Notice{}, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		service.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}

	repo.AssertExpectations(t)
}
