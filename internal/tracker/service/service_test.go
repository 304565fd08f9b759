package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	commonerrors "github.com/screentime-labs/tracker/backend/internal/common/errors"
	"github.com/screentime-labs/tracker/backend/internal/tracker/domain"
	"github.com/screentime-labs/tracker/backend/internal/tracker/repository"
	"github.com/screentime-labs/tracker/backend/internal/tracker/service"
	"github.com/screentime-labs/tracker/backend/internal/tracker/ws"
)

const accountID = domain.AccountID("11111111-1111-4111-8111-111111111111")

func TestTrackerService_Create_Success(t *testing.T) {
	svc, repo, _, _ := setupTrackerService(t)

	var created domain.WebsiteLimit
	var createdDay string
	repo.createFunc = func(ctx context.Context, limit domain.WebsiteLimit, day string) error {
		created = limit
		createdDay = day
		return nil
	}

	limit, err := svc.Create(context.Background(), service.CreateInput{
		AccountID:  accountID,
		WebsiteURL: "  youtube.com  ",
		TimeLimit:  60,
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if limit.WebsiteURL != "youtube.com" {
		t.Errorf("expected trimmed url, got %q", limit.WebsiteURL)
	}

	if limit.TimeUsed != 0 {
		t.Errorf("expected fresh counter to be zero, got %d", limit.TimeUsed)
	}

	if created.ID == "" {
		t.Error("expected generated id to be passed to the repository")
	}

	if createdDay != "2025-03-10" {
		t.Errorf("expected today's date as the reset day, got %q", createdDay)
	}
}

func TestTrackerService_Create_MissingFields(t *testing.T) {
	svc, repo, _, _ := setupTrackerService(t)

	repoCalled := false
	repo.createFunc = func(ctx context.Context, limit domain.WebsiteLimit, day string) error {
		repoCalled = true
		return nil
	}

	_, err := svc.Create(context.Background(), service.CreateInput{
		AccountID:  accountID,
		WebsiteURL: "   ",
		TimeLimit:  60,
	})

	if !errors.Is(err, service.ErrMissingFields) {
		t.Errorf("expected ErrMissingFields, got %v", err)
	}

	if repoCalled {
		t.Error("expected repository to stay untouched on invalid input")
	}
}

func TestTrackerService_Create_InvalidTimeLimit(t *testing.T) {
	svc, _, _, _ := setupTrackerService(t)

	for _, timeLimit := range []int{0, -30} {
		_, err := svc.Create(context.Background(), service.CreateInput{
			AccountID:  accountID,
			WebsiteURL: "youtube.com",
			TimeLimit:  timeLimit,
		})

		if !errors.Is(err, service.ErrInvalidTimeLimit) {
			t.Errorf("time_limit=%d: expected ErrInvalidTimeLimit, got %v", timeLimit, err)
		}
	}
}

func TestTrackerService_Create_Duplicate(t *testing.T) {
	svc, repo, _, _ := setupTrackerService(t)

	repo.createFunc = func(ctx context.Context, limit domain.WebsiteLimit, day string) error {
		return repository.ErrDuplicateWebsite
	}

	_, err := svc.Create(context.Background(), service.CreateInput{
		AccountID:  accountID,
		WebsiteURL: "youtube.com",
		TimeLimit:  60,
	})

	if !errors.Is(err, service.ErrWebsiteExists) {
		t.Errorf("expected ErrWebsiteExists, got %v", err)
	}
}

func TestTrackerService_Create_AccountAbsent(t *testing.T) {
	svc, repo, _, _ := setupTrackerService(t)

	repo.createFunc = func(ctx context.Context, limit domain.WebsiteLimit, day string) error {
		return repository.ErrAccountAbsent
	}

	_, err := svc.Create(context.Background(), service.CreateInput{
		AccountID:  accountID,
		WebsiteURL: "youtube.com",
		TimeLimit:  60,
	})

	if !errors.Is(err, service.ErrAccountAbsent) {
		t.Errorf("expected ErrAccountAbsent, got %v", err)
	}
}

func TestTrackerService_List_ResetsStaleBeforeReading(t *testing.T) {
	svc, repo, events, _ := setupTrackerService(t)

	var calls []string
	repo.resetStaleFunc = func(ctx context.Context, id domain.AccountID, day string) ([]repository.ResetRow, error) {
		calls = append(calls, "reset:"+day)
		return []repository.ResetRow{{WebsiteURL: "youtube.com", TimeLimit: 60}}, nil
	}
	repo.listFunc = func(ctx context.Context, id domain.AccountID) ([]domain.WebsiteLimit, error) {
		calls = append(calls, "list")
		return []domain.WebsiteLimit{{
			ID:         "w-1",
			AccountID:  id,
			WebsiteURL: "youtube.com",
			TimeLimit:  60,
			TimeUsed:   0,
			LastReset:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		}}, nil
	}

	limits, err := svc.List(context.Background(), accountID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(calls) != 2 || calls[0] != "reset:2025-03-10" || calls[1] != "list" {
		t.Errorf("expected reset to run before the read, got %v", calls)
	}

	if len(limits) != 1 || limits[0].TimeUsed != 0 {
		t.Errorf("expected one zeroed limit, got %+v", limits)
	}

	published := events.Events()
	if len(published) != 1 {
		t.Fatalf("expected one reset event, got %d", len(published))
	}
	if published[0].Event.Type != ws.EventReset || published[0].Event.TimeUsed != 0 {
		t.Errorf("expected zeroed reset event, got %+v", published[0].Event)
	}
}

func TestTrackerService_List_SameDayIsQuiet(t *testing.T) {
	svc, repo, events, _ := setupTrackerService(t)

	repo.resetStaleFunc = func(ctx context.Context, id domain.AccountID, day string) ([]repository.ResetRow, error) {
		return nil, nil
	}
	repo.listFunc = func(ctx context.Context, id domain.AccountID) ([]domain.WebsiteLimit, error) {
		return []domain.WebsiteLimit{}, nil
	}

	if _, err := svc.List(context.Background(), accountID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(events.Events()) != 0 {
		t.Errorf("expected no events when nothing was stale, got %d", len(events.Events()))
	}
}

func TestTrackerService_List_DayRollover(t *testing.T) {
	svc, repo, _, mockClock := setupTrackerService(t)

	var days []string
	repo.resetStaleFunc = func(ctx context.Context, id domain.AccountID, day string) ([]repository.ResetRow, error) {
		days = append(days, day)
		return nil, nil
	}

	if _, err := svc.List(context.Background(), accountID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	mockClock.Advance(24 * time.Hour)

	if _, err := svc.List(context.Background(), accountID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(days) != 2 || days[0] != "2025-03-10" || days[1] != "2025-03-11" {
		t.Errorf("expected the reset day to follow the clock, got %v", days)
	}
}

func TestTrackerService_List_ResetFailure(t *testing.T) {
	svc, repo, _, _ := setupTrackerService(t)

	listCalled := false
	repo.resetStaleFunc = func(ctx context.Context, id domain.AccountID, day string) ([]repository.ResetRow, error) {
		return nil, errors.New("database connection error")
	}
	repo.listFunc = func(ctx context.Context, id domain.AccountID) ([]domain.WebsiteLimit, error) {
		listCalled = true
		return nil, nil
	}

	_, err := svc.List(context.Background(), accountID)
	if err == nil {
		t.Fatal("expected error")
	}

	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "SERVICE_UNAVAILABLE" {
		t.Errorf("expected SERVICE_UNAVAILABLE error, got %v", err)
	}

	if listCalled {
		t.Error("expected the read to be skipped when the reset fails")
	}
}

func TestTrackerService_UpdateUsage_Success(t *testing.T) {
	svc, repo, events, _ := setupTrackerService(t)

	repo.updateUsageFunc = func(ctx context.Context, id domain.AccountID, websiteURL string, timeUsed int) (int, error) {
		if websiteURL != "youtube.com" || timeUsed != 42 {
			t.Errorf("unexpected update args: %s %d", websiteURL, timeUsed)
		}
		return 60, nil
	}

	err := svc.UpdateUsage(context.Background(), service.UpdateUsageInput{
		AccountID:  accountID,
		WebsiteURL: "youtube.com",
		TimeUsed:   42,
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	published := events.Events()
	if len(published) != 1 {
		t.Fatalf("expected one usage event, got %d", len(published))
	}
	ev := published[0].Event
	if ev.Type != ws.EventUsage || ev.TimeUsed != 42 || ev.TimeLimit != 60 {
		t.Errorf("unexpected usage event: %+v", ev)
	}
}

func TestTrackerService_UpdateUsage_NegativeValue(t *testing.T) {
	svc, repo, _, _ := setupTrackerService(t)

	repoCalled := false
	repo.updateUsageFunc = func(ctx context.Context, id domain.AccountID, websiteURL string, timeUsed int) (int, error) {
		repoCalled = true
		return 0, nil
	}

	err := svc.UpdateUsage(context.Background(), service.UpdateUsageInput{
		AccountID:  accountID,
		WebsiteURL: "youtube.com",
		TimeUsed:   -1,
	})

	if !errors.Is(err, service.ErrInvalidTimeUsed) {
		t.Errorf("expected ErrInvalidTimeUsed, got %v", err)
	}

	if repoCalled {
		t.Error("expected the counter to stay untouched on negative input")
	}
}

func TestTrackerService_UpdateUsage_NotFound(t *testing.T) {
	svc, repo, _, _ := setupTrackerService(t)

	repo.updateUsageFunc = func(ctx context.Context, id domain.AccountID, websiteURL string, timeUsed int) (int, error) {
		return 0, repository.ErrWebsiteNotFound
	}

	err := svc.UpdateUsage(context.Background(), service.UpdateUsageInput{
		AccountID:  accountID,
		WebsiteURL: "unknown.com",
		TimeUsed:   5,
	})

	if !errors.Is(err, service.ErrWebsiteNotFound) {
		t.Errorf("expected ErrWebsiteNotFound, got %v", err)
	}
}

func TestTrackerService_Delete_Success(t *testing.T) {
	svc, repo, _, _ := setupTrackerService(t)

	repo.deleteFunc = func(ctx context.Context, id domain.ID, owner domain.AccountID) error {
		if id != "w-1" || owner != accountID {
			t.Errorf("unexpected delete args: %s %s", id, owner)
		}
		return nil
	}

	if err := svc.Delete(context.Background(), "w-1", accountID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestTrackerService_Delete_NotOwned(t *testing.T) {
	svc, repo, _, _ := setupTrackerService(t)

	repo.deleteFunc = func(ctx context.Context, id domain.ID, owner domain.AccountID) error {
		return repository.ErrWebsiteNotFound
	}

	err := svc.Delete(context.Background(), "w-1", accountID)
	if !errors.Is(err, service.ErrWebsiteNotFound) {
		t.Errorf("expected ErrWebsiteNotFound, got %v", err)
	}
}

func TestTrackerService_Export_AppliesReset(t *testing.T) {
	svc, repo, _, _ := setupTrackerService(t)

	resetCalled := false
	repo.resetStaleFunc = func(ctx context.Context, id domain.AccountID, day string) ([]repository.ResetRow, error) {
		resetCalled = true
		return nil, nil
	}
	repo.listFunc = func(ctx context.Context, id domain.AccountID) ([]domain.WebsiteLimit, error) {
		return []domain.WebsiteLimit{
			{WebsiteURL: "youtube.com", TimeLimit: 60, TimeUsed: 30},
		}, nil
	}

	records, err := svc.Export(context.Background(), accountID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !resetCalled {
		t.Error("expected the export to apply the reset policy first")
	}

	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if records[0].URL != "youtube.com" || records[0].TimeUsed != 30 || records[0].TimeLimit != 60 {
		t.Errorf("unexpected export record: %+v", records[0])
	}
}

func TestTrackerService_Status_DatabaseError(t *testing.T) {
	svc, repo, _, _ := setupTrackerService(t)

	repo.statusReportFunc = func(ctx context.Context) (domain.StatusReport, error) {
		return domain.StatusReport{}, errors.New("database connection error")
	}

	_, err := svc.Status(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "SERVICE_UNAVAILABLE" {
		t.Errorf("expected SERVICE_UNAVAILABLE error, got %v", err)
	}
}
