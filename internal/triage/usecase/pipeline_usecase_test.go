package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
	eventsDomain "github.com/karthikpoola6-cmd/email-triage-ai/internal/events/domain"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	// Execute the function to test the logic inside
	return fn(ctx)
}

// MockAuditRecordRepository is a mock implementation of AuditRecordRepository
type MockAuditRecordRepository struct {
	mock.Mock
}

func (m *MockAuditRecordRepository) Create(ctx context.Context, record *domain.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRecordRepository) ListUnnotified(ctx context.Context) ([]*domain.AuditRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditRecord), args.Error(1)
}

func (m *MockAuditRecordRepository) MarkNotified(ctx context.Context, ticketID string) (int64, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditRecordRepository) List(ctx context.Context, offset, limit int) ([]*domain.AuditRecord, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditRecord), args.Error(1)
}

func (m *MockAuditRecordRepository) ListAll(ctx context.Context) ([]*domain.AuditRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditRecord), args.Error(1)
}

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *eventsDomain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockClassifier is a mock implementation of Classifier
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, msg domain.InboundMessage) (domain.Classification, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(domain.Classification), args.Error(1)
}

// MockRoutingPolicy is a mock implementation of service.RoutingPolicy
type MockRoutingPolicy struct {
	mock.Mock
}

func (m *MockRoutingPolicy) Decide(classification domain.Classification) (domain.RoutingDecision, error) {
	args := m.Called(classification)
	return args.Get(0).(domain.RoutingDecision), args.Error(1)
}

// MockTicketing is a mock implementation of Ticketing
type MockTicketing struct {
	mock.Mock
}

func (m *MockTicketing) CreateIncident(ctx context.Context, req domain.TicketRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockTicketing) GetTicketState(ctx context.Context, ticketID string) (domain.TicketState, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).(domain.TicketState), args.Error(1)
}

// MockRenderer is a mock implementation of Renderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderAck(
	msg domain.InboundMessage,
	cls domain.Classification,
	routing domain.RoutingDecision,
	ticketID string,
) (domain.OutboundEmail, error) {
	args := m.Called(msg, cls, routing, ticketID)
	return args.Get(0).(domain.OutboundEmail), args.Error(1)
}

func (m *MockRenderer) RenderResolution(sender, subject, ticketID, notes string) (domain.OutboundEmail, error) {
	args := m.Called(sender, subject, ticketID, notes)
	return args.Get(0).(domain.OutboundEmail), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

func (m *MockNotifier) MarkRead(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

// stubStatusError mimics a ticketing client error carrying the HTTP status.
type stubStatusError struct {
	code int
}

func (e *stubStatusError) Error() string {
	return fmt.Sprintf("status %d", e.code)
}

func (e *stubStatusError) StatusCode() int {
	return e.code
}

// pipelineMocks bundles every pipeline collaborator mock.
type pipelineMocks struct {
	txManager     *MockTxManager
	auditRepo     *MockAuditRecordRepository
	eventRepo     *MockEventRepository
	classifier    *MockClassifier
	routingPolicy *MockRoutingPolicy
	ticketing     *MockTicketing
	renderer      *MockRenderer
	notifier      *MockNotifier
}

func newPipelineMocks() *pipelineMocks {
	return &pipelineMocks{
		txManager:     &MockTxManager{},
		auditRepo:     &MockAuditRecordRepository{},
		eventRepo:     &MockEventRepository{},
		classifier:    &MockClassifier{},
		routingPolicy: &MockRoutingPolicy{},
		ticketing:     &MockTicketing{},
		renderer:      &MockRenderer{},
		notifier:      &MockNotifier{},
	}
}

// useCase builds the pipeline with every collaborator wired, as live runs do.
func (m *pipelineMocks) useCase() PipelineUseCase {
	return NewPipelineUseCase(
		m.txManager, m.auditRepo, m.eventRepo,
		m.classifier, m.routingPolicy, m.ticketing,
		m.renderer, m.notifier, nil,
	)
}

// sampleUseCase builds the pipeline without a notifier, as sample runs do.
func (m *pipelineMocks) sampleUseCase() PipelineUseCase {
	return NewPipelineUseCase(
		m.txManager, m.auditRepo, m.eventRepo,
		m.classifier, m.routingPolicy, m.ticketing,
		m.renderer, nil, nil,
	)
}

func (m *pipelineMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.txManager.AssertExpectations(t)
	m.auditRepo.AssertExpectations(t)
	m.eventRepo.AssertExpectations(t)
	m.classifier.AssertExpectations(t)
	m.routingPolicy.AssertExpectations(t)
	m.ticketing.AssertExpectations(t)
	m.renderer.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
}

func newTestMessage() domain.InboundMessage {
	return domain.InboundMessage{
		ID:         "AAMkAGI2-abc=",
		Sender:     "john@company.com",
		SenderName: "John Doe",
		Subject:    "VPN not connecting",
		Body:       "Can't connect to VPN from home.",
		ReceivedAt: time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC),
	}
}

func newTestClassification() domain.Classification {
	return domain.Classification{
		Category:   domain.CategoryConnectivity,
		Confidence: 0.98,
		Summary:    "VPN connection timeout from home office",
		IsUrgent:   false,
	}
}

func newTestRouting() domain.RoutingDecision {
	return domain.RoutingDecision{
		AssignmentGroup: "Network Support",
		Priority:        2,
		SLAHours:        4,
		Category:        domain.CategoryConnectivity,
	}
}

func newTestAck() domain.OutboundEmail {
	return domain.OutboundEmail{
		To:       "john@company.com",
		Subject:  "Re: VPN not connecting [Ticket: INC0010001]",
		BodyHTML: "<p>Hi John Doe,</p>",
	}
}

func TestNewPipelineUseCase(t *testing.T) {
	mocks := newPipelineMocks()

	useCase := mocks.useCase()

	assert.NotNil(t, useCase)
}

func TestPipelineUseCase_ProcessMessage_Success(t *testing.T) {
	mocks := newPipelineMocks()
	useCase := mocks.useCase()

	ctx := context.Background()
	msg := newTestMessage()
	cls := newTestClassification()
	routing := newTestRouting()
	ack := newTestAck()
	ticketReq := domain.NewTicketRequest(msg, cls, routing)

	// Setup expectations
	mocks.classifier.On("Classify", ctx, msg).Return(cls, nil)
	mocks.routingPolicy.On("Decide", cls).Return(routing, nil)
	mocks.ticketing.On("CreateIncident", ctx, ticketReq).Return("INC0010001", nil)
	mocks.renderer.On("RenderAck", msg, cls, routing, "INC0010001").Return(ack, nil)
	mocks.notifier.On("Send", ctx, ack.To, ack.Subject, ack.BodyHTML).Return(nil)
	mocks.notifier.On("MarkRead", ctx, msg.ID).Return(nil)
	mocks.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)

	var storedRecord *domain.AuditRecord
	mocks.auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditRecord")).
		Run(func(args mock.Arguments) {
			storedRecord = args.Get(1).(*domain.AuditRecord)
		}).
		Return(nil)
	mocks.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.Event")).Return(nil)

	acc, err := useCase.ProcessMessage(ctx, msg)

	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.NotEmpty(t, acc.RunID)
	assert.Equal(t, msg, acc.Message)
	assert.Equal(t, cls, acc.Classification)
	assert.Equal(t, routing, acc.Routing)
	assert.Equal(t, "INC0010001", acc.TicketID)
	assert.Equal(t, ack, acc.Acknowledgement)
	assert.True(t, acc.Delivered)

	require.NotNil(t, acc.Record)
	require.NotNil(t, storedRecord)
	assert.Equal(t, storedRecord, acc.Record)
	assert.Equal(t, msg.ID, storedRecord.MessageID)
	assert.Equal(t, msg.Sender, storedRecord.Sender)
	assert.Equal(t, domain.CategoryConnectivity, storedRecord.Category)
	assert.Equal(t, "Network Support", storedRecord.AssignmentGroup)
	assert.Equal(t, "INC0010001", storedRecord.TicketID)
	assert.False(t, storedRecord.ResolutionNotified)

	mocks.assertExpectations(t)
}

func TestPipelineUseCase_ProcessMessage_VerifyEventPayload(t *testing.T) {
	mocks := newPipelineMocks()
	useCase := mocks.useCase()

	ctx := context.Background()
	msg := newTestMessage()
	cls := newTestClassification()
	routing := newTestRouting()

	// Setup expectations
	mocks.classifier.On("Classify", ctx, msg).Return(cls, nil)
	mocks.routingPolicy.On("Decide", cls).Return(routing, nil)
	mocks.ticketing.On("CreateIncident", ctx, mock.AnythingOfType("domain.TicketRequest")).Return("INC0010001", nil)
	mocks.renderer.On("RenderAck", msg, cls, routing, "INC0010001").Return(newTestAck(), nil)
	mocks.notifier.On("Send", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mocks.notifier.On("MarkRead", ctx, msg.ID).Return(nil)
	mocks.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	mocks.auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditRecord")).Return(nil)

	// Capture the event to verify its payload
	var capturedEvent *eventsDomain.Event
	mocks.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.Event")).
		Run(func(args mock.Arguments) {
			capturedEvent = args.Get(1).(*eventsDomain.Event)
		}).
		Return(nil)

	_, err := useCase.ProcessMessage(ctx, msg)

	require.NoError(t, err)
	require.NotNil(t, capturedEvent)
	assert.Equal(t, eventsDomain.EventTypeRequestProcessed, capturedEvent.EventType)
	assert.Equal(t, "INC0010001", capturedEvent.TicketID)
	assert.Equal(t, eventsDomain.EventStatusPending, capturedEvent.Status)

	// Verify payload structure
	var payload map[string]interface{}
	err = json.Unmarshal([]byte(capturedEvent.Payload), &payload)
	require.NoError(t, err)
	assert.Equal(t, msg.Sender, payload["sender"])
	assert.Equal(t, "connectivity", payload["category"])
	assert.Equal(t, "INC0010001", payload["ticket_id"])
	assert.Equal(t, false, payload["ticket_failed"])
	assert.Equal(t, true, payload["delivered"])

	mocks.assertExpectations(t)
}

func TestPipelineUseCase_ProcessMessage_SampleModeSkipsDelivery(t *testing.T) {
	mocks := newPipelineMocks()
	useCase := mocks.sampleUseCase()

	ctx := context.Background()
	msg := newTestMessage()
	cls := newTestClassification()
	routing := newTestRouting()

	// Setup expectations; Send and MarkRead must never happen
	mocks.classifier.On("Classify", ctx, msg).Return(cls, nil)
	mocks.routingPolicy.On("Decide", cls).Return(routing, nil)
	mocks.ticketing.On("CreateIncident", ctx, mock.AnythingOfType("domain.TicketRequest")).Return("INC0010001", nil)
	mocks.renderer.On("RenderAck", msg, cls, routing, "INC0010001").Return(newTestAck(), nil)
	mocks.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	mocks.auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditRecord")).Return(nil)
	mocks.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.Event")).Return(nil)

	acc, err := useCase.ProcessMessage(ctx, msg)

	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.False(t, acc.Delivered)
	assert.NotNil(t, acc.Record)

	mocks.assertExpectations(t)
}

func TestPipelineUseCase_ProcessMessage_TicketFailureUsesStatusSentinel(t *testing.T) {
	mocks := newPipelineMocks()
	useCase := mocks.useCase()

	ctx := context.Background()
	msg := newTestMessage()
	cls := newTestClassification()
	routing := newTestRouting()
	ack := domain.OutboundEmail{
		To:      "john@company.com",
		Subject: "Re: VPN not connecting [Ticket: FAILED-500]",
	}

	// Setup expectations; the run continues after the creation failure
	mocks.classifier.On("Classify", ctx, msg).Return(cls, nil)
	mocks.routingPolicy.On("Decide", cls).Return(routing, nil)
	mocks.ticketing.On("CreateIncident", ctx, mock.AnythingOfType("domain.TicketRequest")).
		Return("", &stubStatusError{code: 500})
	mocks.renderer.On("RenderAck", msg, cls, routing, "FAILED-500").Return(ack, nil)
	mocks.notifier.On("Send", ctx, ack.To, ack.Subject, ack.BodyHTML).Return(nil)
	mocks.notifier.On("MarkRead", ctx, msg.ID).Return(nil)
	mocks.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)

	var storedRecord *domain.AuditRecord
	mocks.auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditRecord")).
		Run(func(args mock.Arguments) {
			storedRecord = args.Get(1).(*domain.AuditRecord)
		}).
		Return(nil)
	mocks.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.Event")).Return(nil)

	acc, err := useCase.ProcessMessage(ctx, msg)

	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, "FAILED-500", acc.TicketID)

	require.NotNil(t, storedRecord)
	assert.Equal(t, "FAILED-500", storedRecord.TicketID)
	assert.True(t, storedRecord.TicketFailed())

	mocks.assertExpectations(t)
}

func TestPipelineUseCase_ProcessMessage_TicketFailureUnreachableUsesRequestSentinel(t *testing.T) {
	mocks := newPipelineMocks()
	useCase := mocks.useCase()

	ctx := context.Background()
	msg := newTestMessage()
	cls := newTestClassification()
	routing := newTestRouting()

	// Setup expectations
	mocks.classifier.On("Classify", ctx, msg).Return(cls, nil)
	mocks.routingPolicy.On("Decide", cls).Return(routing, nil)
	mocks.ticketing.On("CreateIncident", ctx, mock.AnythingOfType("domain.TicketRequest")).
		Return("", errors.New("connection refused"))
	mocks.renderer.On("RenderAck", msg, cls, routing, "FAILED-REQUEST").Return(newTestAck(), nil)
	mocks.notifier.On("Send", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mocks.notifier.On("MarkRead", ctx, msg.ID).Return(nil)
	mocks.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	mocks.auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditRecord")).Return(nil)
	mocks.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.Event")).Return(nil)

	acc, err := useCase.ProcessMessage(ctx, msg)

	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, "FAILED-REQUEST", acc.TicketID)

	mocks.assertExpectations(t)
}

func TestPipelineUseCase_ProcessMessage_ClassificationError(t *testing.T) {
	mocks := newPipelineMocks()
	useCase := mocks.useCase()

	ctx := context.Background()
	msg := newTestMessage()
	classifyError := apperrors.Wrap(apperrors.ErrClassification, "model returned no verdict")

	// Setup expectations; nothing past the first stage may run
	mocks.classifier.On("Classify", ctx, msg).Return(domain.Classification{}, classifyError)

	acc, err := useCase.ProcessMessage(ctx, msg)

	assert.Error(t, err)
	assert.Nil(t, acc)
	assert.ErrorIs(t, err, apperrors.ErrClassification)

	mocks.assertExpectations(t)
}

func TestPipelineUseCase_ProcessMessage_RoutingError(t *testing.T) {
	mocks := newPipelineMocks()
	useCase := mocks.useCase()

	ctx := context.Background()
	msg := newTestMessage()
	cls := newTestClassification()

	// Setup expectations
	mocks.classifier.On("Classify", ctx, msg).Return(cls, nil)
	mocks.routingPolicy.On("Decide", cls).Return(domain.RoutingDecision{}, domain.ErrMissingGeneralRule)

	acc, err := useCase.ProcessMessage(ctx, msg)

	assert.Error(t, err)
	assert.Nil(t, acc)
	assert.ErrorIs(t, err, apperrors.ErrConfig)

	mocks.assertExpectations(t)
}

func TestPipelineUseCase_ProcessMessage_RenderError(t *testing.T) {
	mocks := newPipelineMocks()
	useCase := mocks.useCase()

	ctx := context.Background()
	msg := newTestMessage()
	cls := newTestClassification()
	routing := newTestRouting()
	renderError := errors.New("template execution failed")

	// Setup expectations
	mocks.classifier.On("Classify", ctx, msg).Return(cls, nil)
	mocks.routingPolicy.On("Decide", cls).Return(routing, nil)
	mocks.ticketing.On("CreateIncident", ctx, mock.AnythingOfType("domain.TicketRequest")).Return("INC0010001", nil)
	mocks.renderer.On("RenderAck", msg, cls, routing, "INC0010001").
		Return(domain.OutboundEmail{}, renderError)

	acc, err := useCase.ProcessMessage(ctx, msg)

	assert.Error(t, err)
	assert.Nil(t, acc)
	assert.ErrorIs(t, err, renderError)

	mocks.assertExpectations(t)
}

func TestPipelineUseCase_ProcessMessage_PersistError(t *testing.T) {
	mocks := newPipelineMocks()
	useCase := mocks.useCase()

	ctx := context.Background()
	msg := newTestMessage()
	cls := newTestClassification()
	routing := newTestRouting()
	dbError := errors.New("database error")

	// Setup expectations; WithTx fails without running the function
	mocks.classifier.On("Classify", ctx, msg).Return(cls, nil)
	mocks.routingPolicy.On("Decide", cls).Return(routing, nil)
	mocks.ticketing.On("CreateIncident", ctx, mock.AnythingOfType("domain.TicketRequest")).Return("INC0010001", nil)
	mocks.renderer.On("RenderAck", msg, cls, routing, "INC0010001").Return(newTestAck(), nil)
	mocks.notifier.On("Send", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mocks.notifier.On("MarkRead", ctx, msg.ID).Return(nil)
	mocks.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(dbError)

	acc, err := useCase.ProcessMessage(ctx, msg)

	assert.Error(t, err)
	assert.Nil(t, acc)
	assert.ErrorIs(t, err, dbError)

	mocks.assertExpectations(t)
}

func TestPipelineUseCase_ProcessMessage_DeliveryFailureContinues(t *testing.T) {
	mocks := newPipelineMocks()
	useCase := mocks.useCase()

	ctx := context.Background()
	msg := newTestMessage()
	cls := newTestClassification()
	routing := newTestRouting()
	ack := newTestAck()

	// Setup expectations; MarkRead must never happen after a failed send
	mocks.classifier.On("Classify", ctx, msg).Return(cls, nil)
	mocks.routingPolicy.On("Decide", cls).Return(routing, nil)
	mocks.ticketing.On("CreateIncident", ctx, mock.AnythingOfType("domain.TicketRequest")).Return("INC0010001", nil)
	mocks.renderer.On("RenderAck", msg, cls, routing, "INC0010001").Return(ack, nil)
	mocks.notifier.On("Send", ctx, ack.To, ack.Subject, ack.BodyHTML).
		Return(errors.New("smtp unavailable"))
	mocks.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	mocks.auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditRecord")).Return(nil)
	mocks.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.Event")).Return(nil)

	acc, err := useCase.ProcessMessage(ctx, msg)

	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.False(t, acc.Delivered)
	assert.NotNil(t, acc.Record)

	mocks.assertExpectations(t)
}

func TestPipelineUseCase_ProcessMessage_MarkReadFailureContinues(t *testing.T) {
	mocks := newPipelineMocks()
	useCase := mocks.useCase()

	ctx := context.Background()
	msg := newTestMessage()
	cls := newTestClassification()
	routing := newTestRouting()
	ack := newTestAck()

	// Setup expectations
	mocks.classifier.On("Classify", ctx, msg).Return(cls, nil)
	mocks.routingPolicy.On("Decide", cls).Return(routing, nil)
	mocks.ticketing.On("CreateIncident", ctx, mock.AnythingOfType("domain.TicketRequest")).Return("INC0010001", nil)
	mocks.renderer.On("RenderAck", msg, cls, routing, "INC0010001").Return(ack, nil)
	mocks.notifier.On("Send", ctx, ack.To, ack.Subject, ack.BodyHTML).Return(nil)
	mocks.notifier.On("MarkRead", ctx, msg.ID).Return(errors.New("graph unavailable"))
	mocks.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	mocks.auditRepo.On("Create", ctx, mock.AnythingOfType("*domain.AuditRecord")).Return(nil)
	mocks.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.Event")).Return(nil)

	acc, err := useCase.ProcessMessage(ctx, msg)

	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.True(t, acc.Delivered)

	mocks.assertExpectations(t)
}

func TestFailureCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "status error",
			err:  &stubStatusError{code: 500},
			want: "500",
		},
		{
			name: "wrapped status error",
			err:  apperrors.Wrap(&stubStatusError{code: 403}, "create incident"),
			want: "403",
		},
		{
			name: "plain error",
			err:  errors.New("connection refused"),
			want: "REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failureCode(tt.err))
		})
	}
}
