package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"accreditation-backend/internal/credential"
	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/email"
	"accreditation-backend/internal/repository"
)

// MockAccessRequestRepo
type MockAccessRequestRepo struct {
	mock.Mock
}

func (m *MockAccessRequestRepo) GetByID(ctx context.Context, id string) (*domain.AccessRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessRequest), args.Error(1)
}
func (m *MockAccessRequestRepo) ApplyReview(ctx context.Context, id string, status domain.Status, reviewerID string) (*domain.AccessRequest, error) {
	args := m.Called(ctx, id, status, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessRequest), args.Error(1)
}
func (m *MockAccessRequestRepo) Redeem(ctx context.Context, id string, wristbandCode string) (*domain.AccessRequest, error) {
	args := m.Called(ctx, id, wristbandCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessRequest), args.Error(1)
}
func (m *MockAccessRequestRepo) SetCredentialURL(ctx context.Context, id string, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}
func (m *MockAccessRequestRepo) MarkEmailSent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockAccessRequestRepo) MarkEmailFailed(ctx context.Context, id string, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}
func (m *MockAccessRequestRepo) ListEmailFailures(ctx context.Context, limit int) ([]domain.AccessRequest, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.AccessRequest), args.Error(1)
}

// MockMatchdayRepo
type MockMatchdayRepo struct {
	mock.Mock
}

func (m *MockMatchdayRepo) GetActive(ctx context.Context) (*domain.Matchday, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Matchday), args.Error(1)
}
func (m *MockMatchdayRepo) Upsert(ctx context.Context, md *domain.Matchday) error {
	args := m.Called(ctx, md)
	return args.Error(0)
}

// MockReferenceRepo
type MockReferenceRepo struct {
	mock.Mock
}

func (m *MockReferenceRepo) Get(ctx context.Context, kind domain.ReferenceKind, id string) (*domain.Reference, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reference), args.Error(1)
}
func (m *MockReferenceRepo) Upsert(ctx context.Context, kind domain.ReferenceKind, ref *domain.Reference) error {
	args := m.Called(ctx, kind, ref)
	return args.Error(0)
}

// MockDispatchLog
type MockDispatchLog struct {
	mock.Mock
}

func (m *MockDispatchLog) Claim(ctx context.Context, entry *repository.DispatchEntry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}
func (m *MockDispatchLog) Complete(ctx context.Context, eventKey string, outcome domain.Outcome, pdfURL, errMsg string) error {
	args := m.Called(ctx, eventKey, outcome, pdfURL, errMsg)
	return args.Error(0)
}
func (m *MockDispatchLog) GetByEventKey(ctx context.Context, eventKey string) (*repository.DispatchEntry, error) {
	args := m.Called(ctx, eventKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DispatchEntry), args.Error(1)
}
func (m *MockDispatchLog) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockRenderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, in credential.Input) ([]byte, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockArtifactStore
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}
func (m *MockArtifactStore) Exists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}
func (m *MockArtifactStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
func (m *MockArtifactStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockSender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Name() string { return "mock" }
func (m *MockSender) Validate() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockSender) Send(ctx context.Context, msg *email.Message) (*email.Receipt, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*email.Receipt), args.Error(1)
}
