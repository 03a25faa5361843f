package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"accreditation-backend/internal/config"
	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/repository"
	"accreditation-backend/internal/service"
)

type MockAccessRequestRepo struct {
	mock.Mock
	repository.AccessRequestRepository
}

func (m *MockAccessRequestRepo) ListEmailFailures(ctx context.Context, limit int) ([]domain.AccessRequest, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.AccessRequest), args.Error(1)
}

type MockDispatchLog struct {
	mock.Mock
	repository.DispatchLogRepository
}

func (m *MockDispatchLog) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
	service.EmailService
}

func (m *MockEmailService) SendFailureDigest(ctx context.Context, recipients []string, failures []domain.AccessRequest, generatedAt time.Time) error {
	args := m.Called(ctx, recipients, failures, generatedAt)
	return args.Error(0)
}

var jobNow = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

func newRunner(cfg *config.Config, ledger repository.DispatchLogRepository) (*JobRunner, *MockAccessRequestRepo, *MockEmailService) {
	repo := new(MockAccessRequestRepo)
	emails := new(MockEmailService)
	jr := NewJobRunner(repo, ledger, emails, cfg)
	jr.now = func() time.Time { return jobNow }
	return jr, repo, emails
}

func TestSendFailureDigest(t *testing.T) {
	failures := []domain.AccessRequest{{ID: "req-1", EmailError: "401"}}

	t.Run("Sends when failures exist", func(t *testing.T) {
		cfg := &config.Config{Notification: config.NotificationConfig{AdminRecipients: []string{"ops@estadio.test"}}}
		jr, repo, emails := newRunner(cfg, nil)
		repo.On("ListEmailFailures", mock.Anything, digestLimit).Return(failures, nil).Once()
		emails.On("SendFailureDigest", mock.Anything, []string{"ops@estadio.test"}, failures, jobNow).Return(nil).Once()

		jr.SendFailureDigest()
		repo.AssertExpectations(t)
		emails.AssertExpectations(t)
	})

	t.Run("Nothing to report", func(t *testing.T) {
		cfg := &config.Config{Notification: config.NotificationConfig{AdminRecipients: []string{"ops@estadio.test"}}}
		jr, repo, emails := newRunner(cfg, nil)
		repo.On("ListEmailFailures", mock.Anything, digestLimit).Return([]domain.AccessRequest{}, nil).Once()

		jr.SendFailureDigest()
		emails.AssertNotCalled(t, "SendFailureDigest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("No recipients configured", func(t *testing.T) {
		jr, repo, emails := newRunner(&config.Config{}, nil)

		jr.SendFailureDigest()
		repo.AssertNotCalled(t, "ListEmailFailures", mock.Anything, mock.Anything)
		emails.AssertNotCalled(t, "SendFailureDigest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Query failure does not panic", func(t *testing.T) {
		cfg := &config.Config{Notification: config.NotificationConfig{AdminRecipients: []string{"ops@estadio.test"}}}
		jr, repo, emails := newRunner(cfg, nil)
		repo.On("ListEmailFailures", mock.Anything, digestLimit).Return([]domain.AccessRequest(nil), errors.New("unavailable")).Once()

		assert.NotPanics(t, jr.SendFailureDigest)
		emails.AssertNotCalled(t, "SendFailureDigest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPurgeDispatchLog(t *testing.T) {
	t.Run("Deletes past the retention window", func(t *testing.T) {
		ledger := new(MockDispatchLog)
		cfg := &config.Config{Database: config.DatabaseConfig{RetentionDays: 30}}
		jr, _, _ := newRunner(cfg, ledger)
		ledger.On("DeleteOlderThan", mock.Anything, jobNow.Add(-30*24*time.Hour)).Return(int64(4), nil).Once()

		jr.PurgeDispatchLog()
		ledger.AssertExpectations(t)
	})

	t.Run("Defaults to ninety days", func(t *testing.T) {
		ledger := new(MockDispatchLog)
		jr, _, _ := newRunner(&config.Config{}, ledger)
		ledger.On("DeleteOlderThan", mock.Anything, jobNow.Add(-90*24*time.Hour)).Return(int64(0), nil).Once()

		jr.PurgeDispatchLog()
		ledger.AssertExpectations(t)
	})

	t.Run("Disabled ledger", func(t *testing.T) {
		jr, _, _ := newRunner(&config.Config{}, nil)
		assert.False(t, jr.HasDispatchLog())
		assert.NotPanics(t, jr.PurgeDispatchLog)
	})
}

func TestRunWithRecovery(t *testing.T) {
	jr, _, _ := newRunner(&config.Config{}, nil)
	assert.NotPanics(t, func() {
		jr.runWithRecovery("Boom", func() { panic("boom") })
	})
}
