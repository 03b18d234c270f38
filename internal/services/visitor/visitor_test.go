package visitor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/visitgate/visitgate/internal/lib/visitday"
	"github.com/visitgate/visitgate/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateVisitor(ctx context.Context, visitor models.Visitor) (string, error) {
	args := m.Called(ctx, visitor)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) GetVisitor(ctx context.Context, id string) (*models.Visitor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Visitor), args.Error(1)
}

func (m *MockRepository) ListVisitors(ctx context.Context, userUID string, limit, offset int) ([]*models.Visitor, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Visitor), args.Error(1)
}

func (m *MockRepository) CreateVisitDetail(ctx context.Context, visit models.VisitDetail) (string, error) {
	args := m.Called(ctx, visit)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) ListVisitDetails(ctx context.Context, visitorID string, limit, offset int) ([]*models.VisitDetail, error) {
	args := m.Called(ctx, visitorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.VisitDetail), args.Error(1)
}

func (m *MockRepository) HasVisitOnDay(ctx context.Context, visitorID string, day time.Time) (bool, error) {
	args := m.Called(ctx, visitorID, day)
	return args.Bool(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	if args.Bool(0) {
		if v, ok := args.Get(2).(*models.Visitor); ok {
			*(result.(*models.Visitor)) = *v
		}
	}
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
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

const (
	testUserUID   = "7b8d6c1e-3f5a-4b2c-9d8e-1a2b3c4d5e6f"
	testVisitorID = "2c3d4e5f-6a7b-4c8d-9e0f-1a2b3c4d5e6f"
)

func cacheMiss(c *MockCache) {
	c.On("Get", "visitor:"+testVisitorID, mock.Anything).Return(false, nil, nil).Once()
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name          string
		req           models.DummyVisitor
		setupMocks    func(*MockRepository)
		expectedID    string
		expectedError error
	}{
		{
			name: "individual visitor",
			req: models.DummyVisitor{
				VisitorType: models.VisitorTypeIndividual,
				FirstName:   "Ivan",
				LastName:    "Petrov",
			},
			setupMocks: func(r *MockRepository) {
				r.On("CreateVisitor", mock.Anything, mock.MatchedBy(func(v models.Visitor) bool {
					return v.VisitorType == models.VisitorTypeIndividual &&
						v.FirstName == "Ivan" && v.GroupName == ""
				})).Return(testVisitorID, nil).Once()
			},
			expectedID: testVisitorID,
		},
		{
			name: "group visitor",
			req: models.DummyVisitor{
				VisitorType: models.VisitorTypeGroup,
				GroupName:   "Delegation",
			},
			setupMocks: func(r *MockRepository) {
				r.On("CreateVisitor", mock.Anything, mock.MatchedBy(func(v models.Visitor) bool {
					return v.VisitorType == models.VisitorTypeGroup &&
						v.GroupName == "Delegation" && v.FirstName == ""
				})).Return(testVisitorID, nil).Once()
			},
			expectedID: testVisitorID,
		},
		{
			name:          "unknown visitor type",
			req:           models.DummyVisitor{VisitorType: "robot"},
			setupMocks:    func(*MockRepository) {},
			expectedError: models.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			service := New(repo, new(MockCache), newTestClock(t), newNoopLogger())

			tt.setupMocks(repo)

			id, err := service.Create(context.Background(), testUserUID, tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, id)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_Read(t *testing.T) {
	visitor := &models.Visitor{
		ID:          testVisitorID,
		UserUID:     testUserUID,
		VisitorType: models.VisitorTypeIndividual,
		FirstName:   "Ivan",
		LastName:    "Petrov",
	}

	t.Run("cache miss loads from storage and fills cache", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		service := New(repo, cache, newTestClock(t), newNoopLogger())

		cacheMiss(cache)
		repo.On("GetVisitor", mock.Anything, testVisitorID).Return(visitor, nil).Once()
		cache.On("Set", "visitor:"+testVisitorID, visitor, cacheTTL).Return(nil).Once()

		result, err := service.Read(context.Background(), testUserUID, testVisitorID)

		assert.NoError(t, err)
		assert.Equal(t, visitor, result)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips storage", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		service := New(repo, cache, newTestClock(t), newNoopLogger())

		cache.On("Get", "visitor:"+testVisitorID, mock.Anything).Return(true, nil, visitor).Once()

		result, err := service.Read(context.Background(), testUserUID, testVisitorID)

		assert.NoError(t, err)
		assert.Equal(t, visitor.FirstName, result.FirstName)
		repo.AssertNotCalled(t, "GetVisitor", mock.Anything, mock.Anything)
		cache.AssertExpectations(t)
	})

	t.Run("foreign visitor is hidden", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		service := New(repo, cache, newTestClock(t), newNoopLogger())

		foreign := *visitor
		foreign.UserUID = "00000000-0000-0000-0000-000000000001"
		cacheMiss(cache)
		repo.On("GetVisitor", mock.Anything, testVisitorID).Return(&foreign, nil).Once()

		result, err := service.Read(context.Background(), testUserUID, testVisitorID)

		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Nil(t, result)
		repo.AssertExpectations(t)
	})
}

func TestService_ScheduleVisit(t *testing.T) {
	clock := newTestClock(t)
	today := clock.Today()
	yesterday := clock.FromTime(time.Now().UTC().AddDate(0, 0, -1))

	visitor := &models.Visitor{
		ID:          testVisitorID,
		UserUID:     testUserUID,
		VisitorType: models.VisitorTypeIndividual,
	}

	loadVisitor := func(r *MockRepository, c *MockCache) {
		cacheMiss(c)
		r.On("GetVisitor", mock.Anything, testVisitorID).Return(visitor, nil).Once()
		c.On("Set", "visitor:"+testVisitorID, visitor, cacheTTL).Return(nil).Once()
	}

	tests := []struct {
		name          string
		req           models.DummyVisitDetail
		setupMocks    func(*MockRepository, *MockCache)
		expectedID    string
		expectedError error
	}{
		{
			name: "schedules visit for today",
			req: models.DummyVisitDetail{
				VisitorID:    testVisitorID,
				VisitDate:    today.String(),
				Purpose:      "meeting",
				Department:   "sales",
				NoOfVisitors: 1,
			},
			setupMocks: func(r *MockRepository, c *MockCache) {
				loadVisitor(r, c)
				r.On("HasVisitOnDay", mock.Anything, testVisitorID, today.Time()).Return(false, nil).Once()
				r.On("CreateVisitDetail", mock.Anything, mock.MatchedBy(func(v models.VisitDetail) bool {
					return v.VisitorID == testVisitorID && v.VisitDate.Equal(today.Time())
				})).Return("visit-1", nil).Once()
			},
			expectedID: "visit-1",
		},
		{
			name: "rejects malformed date",
			req: models.DummyVisitDetail{
				VisitorID: testVisitorID,
				VisitDate: "2026-08-31",
			},
			setupMocks: func(r *MockRepository, c *MockCache) {
				loadVisitor(r, c)
			},
			expectedError: models.ErrInvalidInput,
		},
		{
			name: "rejects past date",
			req: models.DummyVisitDetail{
				VisitorID: testVisitorID,
				VisitDate: yesterday.String(),
			},
			setupMocks: func(r *MockRepository, c *MockCache) {
				loadVisitor(r, c)
			},
			expectedError: models.ErrPastVisitDate,
		},
		{
			name: "rejects duplicate visit on the same day",
			req: models.DummyVisitDetail{
				VisitorID: testVisitorID,
				VisitDate: today.String(),
			},
			setupMocks: func(r *MockRepository, c *MockCache) {
				loadVisitor(r, c)
				r.On("HasVisitOnDay", mock.Anything, testVisitorID, today.Time()).Return(true, nil).Once()
			},
			expectedError: models.ErrDuplicateVisit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			cache := new(MockCache)
			service := New(repo, cache, clock, newNoopLogger())

			tt.setupMocks(repo, cache)

			id, err := service.ScheduleVisit(context.Background(), testUserUID, tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, id)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_ListVisits(t *testing.T) {
	visitor := &models.Visitor{ID: testVisitorID, UserUID: testUserUID}
	visits := []*models.VisitDetail{{ID: "visit-1", VisitorID: testVisitorID}}

	repo := new(MockRepository)
	cache := new(MockCache)
	service := New(repo, cache, newTestClock(t), newNoopLogger())

	cacheMiss(cache)
	repo.On("GetVisitor", mock.Anything, testVisitorID).Return(visitor, nil).Once()
	cache.On("Set", "visitor:"+testVisitorID, visitor, cacheTTL).Return(nil).Once()
	repo.On("ListVisitDetails", mock.Anything, testVisitorID, 10, 0).Return(visits, nil).Once()

	result, err := service.ListVisits(context.Background(), testUserUID, testVisitorID, 10, 0)

	assert.NoError(t, err)
	assert.Equal(t, visits, result)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}
