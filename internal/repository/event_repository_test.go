package repository

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"conversion-analytics/internal/model"
	"conversion-analytics/internal/testdata/mockclickhousebatch"
	"conversion-analytics/internal/testdata/mockclickhouseconnection"
)

type EventRepositoryTestSuite struct {
	suite.Suite

	repository *eventRepository
	connMock   *mockclickhouseconnection.Connection
	batchMock  *mockclickhousebatch.Batch
}

func TestEventRepository(t *testing.T) {
	suite.Run(t, new(EventRepositoryTestSuite))
}

func (s *EventRepositoryTestSuite) SetupTest() {
	s.connMock = &mockclickhouseconnection.Connection{}
	s.batchMock = &mockclickhousebatch.Batch{}
	s.repository = &eventRepository{conn: s.connMock}
}

func (s *EventRepositoryTestSuite) TearDownTest() {
	s.connMock.AssertExpectations(s.T())
	s.batchMock.AssertExpectations(s.T())
}

func sampleEvents() []model.ConversionEvent {
	ts := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	return []model.ConversionEvent{
		{
			ID:        "event_1",
			Type:      model.EventScrollDepth,
			UserID:    "user_1",
			SessionID: "session_1",
			Timestamp: ts,
			Data:      map[string]any{"depth": 50},
		},
		{
			ID:        "event_2",
			Type:      model.EventCookieAccept,
			UserID:    "user_1",
			SessionID: "session_1",
			Timestamp: ts.Add(time.Second),
		},
	}
}

func (s *EventRepositoryTestSuite) TestCreate_Success() {
	event := sampleEvents()[0]

	s.connMock.On(
		"Exec",
		mock.Anything,          // context
		insertEventValuesQuery, // query
		event.ID,
		string(event.Type),
		event.UserID,
		event.SessionID,
		event.Timestamp,
		`{"depth":50}`,
	).Return(nil).Once()

	err := s.repository.Create(context.Background(), event)
	s.NoError(err)
}

func (s *EventRepositoryTestSuite) TestCreate_EmptyDataStoredAsObject() {
	event := sampleEvents()[1]

	s.connMock.On(
		"Exec",
		mock.Anything,
		insertEventValuesQuery,
		event.ID,
		string(event.Type),
		event.UserID,
		event.SessionID,
		event.Timestamp,
		"{}",
	).Return(nil).Once()

	err := s.repository.Create(context.Background(), event)
	s.NoError(err)
}

func (s *EventRepositoryTestSuite) TestCreate_DataMarshalError() {
	event := sampleEvents()[0]
	event.Data = map[string]any{"fn": func() {}}

	err := s.repository.Create(context.Background(), event)
	s.ErrorContains(err, "marshal data")

	s.connMock.AssertNotCalled(s.T(), "Exec", mock.Anything, insertEventValuesQuery, mock.Anything)
}

func (s *EventRepositoryTestSuite) TestCreate_ExecError() {
	event := sampleEvents()[1]
	expectedErr := errors.New("connection reset")

	s.connMock.On("Exec", mock.Anything, insertEventValuesQuery,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything,
	).Return(expectedErr).Once()

	err := s.repository.Create(context.Background(), event)
	s.ErrorIs(err, expectedErr)
	s.ErrorContains(err, "insert event")
}

func (s *EventRepositoryTestSuite) TestCreateBatch_EmptySlice_NoOp() {
	ctx := context.Background()

	s.NoError(s.repository.CreateBatch(ctx, nil))
	s.NoError(s.repository.CreateBatch(ctx, []model.ConversionEvent{}))

	s.connMock.AssertNotCalled(s.T(), "PrepareBatch", mock.Anything, insertEventQuery)
	s.batchMock.AssertNotCalled(s.T(), "Send")
}

func (s *EventRepositoryTestSuite) TestCreateBatch_PrepareBatchError() {
	expectedErr := errors.New("prepare batch error")

	s.connMock.On("PrepareBatch", mock.Anything, insertEventQuery).Return(nil, expectedErr).Once()

	err := s.repository.CreateBatch(context.Background(), sampleEvents())

	s.ErrorIs(err, expectedErr)
	s.ErrorContains(err, "prepare batch")
	s.batchMock.AssertNotCalled(s.T(), "Send")
}

func (s *EventRepositoryTestSuite) TestCreateBatch_AppendError() {
	events := sampleEvents()
	expectedErr := errors.New("append error")

	s.connMock.On("PrepareBatch", mock.Anything, insertEventQuery).Return(s.batchMock, nil).Once()
	s.batchMock.On(
		"Append",
		events[0].ID,
		string(events[0].Type),
		events[0].UserID,
		events[0].SessionID,
		events[0].Timestamp,
		`{"depth":50}`,
	).Return(expectedErr).Once()
	s.batchMock.On("Abort").Return(nil).Once()

	err := s.repository.CreateBatch(context.Background(), events)

	s.ErrorIs(err, expectedErr)
	s.ErrorContains(err, "append batch")
	s.batchMock.AssertNotCalled(s.T(), "Send")
}

func (s *EventRepositoryTestSuite) TestCreateBatch_SendError() {
	events := sampleEvents()
	expectedErr := errors.New("send error")

	s.connMock.On("PrepareBatch", mock.Anything, insertEventQuery).Return(s.batchMock, nil).Once()
	for _, e := range events {
		s.batchMock.On("Append", e.ID, string(e.Type), e.UserID, e.SessionID, e.Timestamp, mock.Anything).Return(nil).Once()
	}
	s.batchMock.On("Send").Return(expectedErr).Once()

	err := s.repository.CreateBatch(context.Background(), events)

	s.ErrorIs(err, expectedErr)
	s.ErrorContains(err, "send batch")
}

func (s *EventRepositoryTestSuite) TestCreateBatch_Success() {
	events := sampleEvents()

	s.connMock.On("PrepareBatch", mock.Anything, insertEventQuery).Return(s.batchMock, nil).Once()
	s.batchMock.On("Append", events[0].ID, string(events[0].Type), events[0].UserID, events[0].SessionID, events[0].Timestamp, `{"depth":50}`).Return(nil).Once()
	s.batchMock.On("Append", events[1].ID, string(events[1].Type), events[1].UserID, events[1].SessionID, events[1].Timestamp, "{}").Return(nil).Once()
	s.batchMock.On("Send").Return(nil).Once()

	err := s.repository.CreateBatch(context.Background(), events)
	s.NoError(err)
}

func TestLogRepository_WritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	repo := NewLogRepository(zerolog.New(&buf))

	err := repo.CreateBatch(context.Background(), sampleEvents())
	require.NoError(t, err)

	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
	assert.Contains(t, buf.String(), `"session_id":"session_1"`)
	assert.Contains(t, buf.String(), `"type":"scroll_depth"`)
}
