package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/screentime-labs/tracker/backend/internal/common/clock"
	"github.com/screentime-labs/tracker/backend/internal/common/logger"
	"github.com/screentime-labs/tracker/backend/internal/tracker/domain"
	"github.com/screentime-labs/tracker/backend/internal/tracker/repository"
	"github.com/screentime-labs/tracker/backend/internal/tracker/service"
	"github.com/screentime-labs/tracker/backend/internal/tracker/ws"
)

type mockRepository struct {
	listFunc         func(ctx context.Context, accountID domain.AccountID) ([]domain.WebsiteLimit, error)
	createFunc       func(ctx context.Context, limit domain.WebsiteLimit, day string) error
	deleteFunc       func(ctx context.Context, id domain.ID, accountID domain.AccountID) error
	updateUsageFunc  func(ctx context.Context, accountID domain.AccountID, websiteURL string, timeUsed int) (int, error)
	resetStaleFunc   func(ctx context.Context, accountID domain.AccountID, day string) ([]repository.ResetRow, error)
	statusReportFunc func(ctx context.Context) (domain.StatusReport, error)
}

func (m *mockRepository) List(ctx context.Context, accountID domain.AccountID) ([]domain.WebsiteLimit, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, accountID)
	}
	return nil, nil
}

func (m *mockRepository) Create(ctx context.Context, limit domain.WebsiteLimit, day string) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, limit, day)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id domain.ID, accountID domain.AccountID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, accountID)
	}
	return nil
}

func (m *mockRepository) UpdateUsage(ctx context.Context, accountID domain.AccountID, websiteURL string, timeUsed int) (int, error) {
	if m.updateUsageFunc != nil {
		return m.updateUsageFunc(ctx, accountID, websiteURL, timeUsed)
	}
	return 0, nil
}

func (m *mockRepository) ResetStale(ctx context.Context, accountID domain.AccountID, day string) ([]repository.ResetRow, error) {
	if m.resetStaleFunc != nil {
		return m.resetStaleFunc(ctx, accountID, day)
	}
	return nil, nil
}

func (m *mockRepository) StatusReport(ctx context.Context) (domain.StatusReport, error) {
	if m.statusReportFunc != nil {
		return m.statusReportFunc(ctx)
	}
	return domain.StatusReport{}, nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "00000000-0000-4000-8000-000000000001", nil
}

type publishedEvent struct {
	AccountID string
	Event     ws.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(accountID string, event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{AccountID: accountID, Event: event})
}

func (p *recordingPublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func setupTrackerService(t *testing.T) (*service.TrackerService, *mockRepository, *recordingPublisher, *clock.MockClock) {
	t.Helper()

	log, err := logger.New("", "tracker-test", "CRITICAL")
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}

	repo := &mockRepository{}
	events := &recordingPublisher{}
	mockClock := clock.NewMockClock(time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC))

	svc := service.NewTrackerService(service.Deps{
		Repo:        repo,
		IDGenerator: &mockIDGenerator{},
		Clock:       mockClock,
		ResetZone:   time.UTC,
		Events:      events,
		Log:         log,
	})

	return svc, repo, events, mockClock
}
