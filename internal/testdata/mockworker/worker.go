package mockworker

import (
	"conversion-analytics/internal/model"

	"github.com/stretchr/testify/mock"
)

type Worker struct {
	mock.Mock
}

func (m *Worker) Enqueue(event model.ConversionEvent) {
	m.Called(event)
}

func (m *Worker) Shutdown() {
	m.Called()
}
