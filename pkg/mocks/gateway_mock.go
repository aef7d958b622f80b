package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/postdeck/postdeck/pkg/calendar"
	"github.com/postdeck/postdeck/pkg/gateway"
	"github.com/postdeck/postdeck/pkg/models"
)

// MockGateway is a mock implementation of gateway.RemoteSchedulingGateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateScheduledItem(ctx context.Context, req gateway.CreateItemRequest) (models.ScheduledItem, error) {
	args := m.Called(ctx, req)

	item, _ := args.Get(0).(models.ScheduledItem)

	return item, args.Error(1)
}

func (m *MockGateway) RescheduleOne(ctx context.Context, id models.ItemID, newScheduledAt time.Time) error {
	args := m.Called(ctx, id, newScheduledAt)

	return args.Error(0)
}

func (m *MockGateway) RescheduleMany(ctx context.Context, reqs []gateway.RescheduleRequest) error {
	args := m.Called(ctx, reqs)

	return args.Error(0)
}

func (m *MockGateway) ListScheduledItems(ctx context.Context, from, to calendar.Day) ([]models.ScheduledItem, error) {
	args := m.Called(ctx, from, to)

	items, _ := args.Get(0).([]models.ScheduledItem)

	return items, args.Error(1)
}
