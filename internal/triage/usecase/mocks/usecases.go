// Package mocks provides mock implementations for testing CLI commands and
// HTTP handlers that depend on the triage use cases.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// MockPipelineUseCase is a mock implementation of PipelineUseCase for testing.
type MockPipelineUseCase struct {
	mock.Mock
}

// ProcessMessage mocks the ProcessMessage method of PipelineUseCase.
func (m *MockPipelineUseCase) ProcessMessage(
	ctx context.Context,
	msg domain.InboundMessage,
) (*domain.PipelineAccumulator, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PipelineAccumulator), args.Error(1)
}

// MockResolutionUseCase is a mock implementation of ResolutionUseCase for testing.
type MockResolutionUseCase struct {
	mock.Mock
}

// RunCycle mocks the RunCycle method of ResolutionUseCase.
func (m *MockResolutionUseCase) RunCycle(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAuditRecordRepository is a mock implementation of AuditRecordRepository for testing.
type MockAuditRecordRepository struct {
	mock.Mock
}

// Create mocks the Create method of AuditRecordRepository.
func (m *MockAuditRecordRepository) Create(ctx context.Context, record *domain.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// ListUnnotified mocks the ListUnnotified method of AuditRecordRepository.
func (m *MockAuditRecordRepository) ListUnnotified(ctx context.Context) ([]*domain.AuditRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditRecord), args.Error(1)
}

// MarkNotified mocks the MarkNotified method of AuditRecordRepository.
func (m *MockAuditRecordRepository) MarkNotified(ctx context.Context, ticketID string) (int64, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).(int64), args.Error(1)
}

// List mocks the List method of AuditRecordRepository.
func (m *MockAuditRecordRepository) List(ctx context.Context, offset, limit int) ([]*domain.AuditRecord, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditRecord), args.Error(1)
}

// ListAll mocks the ListAll method of AuditRecordRepository.
func (m *MockAuditRecordRepository) ListAll(ctx context.Context) ([]*domain.AuditRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditRecord), args.Error(1)
}
