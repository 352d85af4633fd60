package mockrepository

import (
	"context"

	"conversion-analytics/internal/model"
	"conversion-analytics/internal/repository"

	"github.com/stretchr/testify/mock"
)

type Repository struct {
	mock.Mock
}

// Interface compliance check
var _ repository.EventRepository = &Repository{}

func (m *Repository) Create(ctx context.Context, event model.ConversionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *Repository) CreateBatch(ctx context.Context, events []model.ConversionEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
