package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/screentime-labs/tracker/backend/internal/common/clock"
	commoncrypto "github.com/screentime-labs/tracker/backend/internal/common/crypto"
	commonerrors "github.com/screentime-labs/tracker/backend/internal/common/errors"
	"github.com/screentime-labs/tracker/backend/internal/common/logger"
	"github.com/screentime-labs/tracker/backend/internal/observability/metrics"
	"github.com/screentime-labs/tracker/backend/internal/tracker/domain"
	"github.com/screentime-labs/tracker/backend/internal/tracker/repository"
	"github.com/screentime-labs/tracker/backend/internal/tracker/ws"
)

// EventPublisher receives live tracker events; the websocket hub implements
// it, tests use a recording stub.
type EventPublisher interface {
	Publish(accountID string, event ws.Event)
}

// TrackerService owns the website-limit lifecycle: CRUD on limits, the
// day-rollover reset policy and the usage update gateway.
type TrackerService struct {
	repo        repository.Repository
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	resetZone   *time.Location
	events      EventPublisher
	log         *logger.Logger
}

type Deps struct {
	Repo        repository.Repository
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	ResetZone   *time.Location
	Events      EventPublisher
	Log         *logger.Logger
}

func NewTrackerService(deps Deps) *TrackerService {
	resetZone := deps.ResetZone
	if resetZone == nil {
		resetZone = time.UTC
	}
	return &TrackerService{
		repo:        deps.Repo,
		idGenerator: deps.IDGenerator,
		clock:       deps.Clock,
		resetZone:   resetZone,
		events:      deps.Events,
		log:         deps.Log,
	}
}

func (s *TrackerService) today() string {
	return domain.Today(s.clock.Now(), s.resetZone)
}

// List returns the account's limits with the reset policy already applied:
// counters whose last reset predates today are zeroed first, in a single
// conditional update, so the caller never observes a stale value.
func (s *TrackerService) List(ctx context.Context, accountID domain.AccountID) ([]domain.WebsiteLimit, error) {
	day := s.today()

	reset, err := s.repo.ResetStale(ctx, accountID, day)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(accountID),
			"action":  "reset_stale_failed",
		}).Errorf("reset stale usage failed: %v", err)
		return nil, commonerrors.ErrServiceUnavailable.WithCause(err)
	}

	if len(reset) > 0 {
		metrics.UsageResetsTotal.Add(float64(len(reset)))
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(accountID),
			"count":   len(reset),
			"day":     day,
			"action":  "usage_reset",
		}).Info("stale usage counters reset")

		if s.events != nil {
			for _, rr := range reset {
				s.events.Publish(string(accountID), ws.Event{
					Type:       ws.EventReset,
					WebsiteURL: rr.WebsiteURL,
					TimeUsed:   0,
					TimeLimit:  rr.TimeLimit,
				})
			}
		}
	}

	limits, err := s.repo.List(ctx, accountID)
	if err != nil {
		return nil, commonerrors.ErrServiceUnavailable.WithCause(err)
	}
	return limits, nil
}

type CreateInput struct {
	AccountID  domain.AccountID
	WebsiteURL string
	TimeLimit  int
}

func (s *TrackerService) Create(ctx context.Context, input CreateInput) (domain.WebsiteLimit, error) {
	if input.AccountID == "" || strings.TrimSpace(input.WebsiteURL) == "" {
		return domain.WebsiteLimit{}, ErrMissingFields
	}
	if input.TimeLimit <= 0 {
		return domain.WebsiteLimit{}, ErrInvalidTimeLimit
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.WebsiteLimit{}, commonerrors.ErrServiceUnavailable.WithCause(err)
	}

	day := s.today()
	limit := domain.WebsiteLimit{
		ID:         domain.ID(id),
		AccountID:  input.AccountID,
		WebsiteURL: strings.TrimSpace(input.WebsiteURL),
		TimeLimit:  input.TimeLimit,
		TimeUsed:   0,
	}

	if err := s.repo.Create(ctx, limit, day); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateWebsite):
			s.log.WithFields(ctx, logger.Fields{
				"user_id": string(input.AccountID),
				"website": limit.WebsiteURL,
				"action":  "create_limit_duplicate",
			}).Warn("create limit failed: duplicate")
			return domain.WebsiteLimit{}, ErrWebsiteExists
		case errors.Is(err, repository.ErrAccountAbsent):
			return domain.WebsiteLimit{}, ErrAccountAbsent
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(input.AccountID),
			"website": limit.WebsiteURL,
			"action":  "create_limit_failed",
		}).Errorf("create limit failed: %v", err)
		return domain.WebsiteLimit{}, commonerrors.ErrServiceUnavailable.WithCause(err)
	}

	metrics.WebsiteLimitsCreated.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id":    string(input.AccountID),
		"website":    limit.WebsiteURL,
		"website_id": id,
		"action":     "create_limit_success",
	}).Info("website limit created")

	return limit, nil
}

func (s *TrackerService) Delete(ctx context.Context, id domain.ID, accountID domain.AccountID) error {
	if id == "" || accountID == "" {
		return ErrMissingFields
	}

	if err := s.repo.Delete(ctx, id, accountID); err != nil {
		if errors.Is(err, repository.ErrWebsiteNotFound) {
			return ErrWebsiteNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id":    string(accountID),
			"website_id": string(id),
			"action":     "delete_limit_failed",
		}).Errorf("delete limit failed: %v", err)
		return commonerrors.ErrServiceUnavailable.WithCause(err)
	}

	metrics.WebsiteLimitsDeleted.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id":    string(accountID),
		"website_id": string(id),
		"action":     "delete_limit_success",
	}).Info("website limit deleted")

	return nil
}

type UpdateUsageInput struct {
	AccountID  domain.AccountID
	WebsiteURL string
	TimeUsed   int
}

// UpdateUsage overwrites the counter with the externally measured total.
// It deliberately leaves last_reset alone: a value written onto a day-stale
// row stands until the next List applies the reset.
func (s *TrackerService) UpdateUsage(ctx context.Context, input UpdateUsageInput) error {
	if input.AccountID == "" || strings.TrimSpace(input.WebsiteURL) == "" {
		return ErrMissingFields
	}
	if input.TimeUsed < 0 {
		return ErrInvalidTimeUsed
	}

	timeLimit, err := s.repo.UpdateUsage(ctx, input.AccountID, input.WebsiteURL, input.TimeUsed)
	if err != nil {
		if errors.Is(err, repository.ErrWebsiteNotFound) {
			return ErrWebsiteNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(input.AccountID),
			"website": input.WebsiteURL,
			"action":  "update_usage_failed",
		}).Errorf("update usage failed: %v", err)
		return commonerrors.ErrServiceUnavailable.WithCause(err)
	}

	metrics.UsageUpdatesTotal.Inc()

	if s.events != nil {
		s.events.Publish(string(input.AccountID), ws.Event{
			Type:       ws.EventUsage,
			WebsiteURL: input.WebsiteURL,
			TimeUsed:   input.TimeUsed,
			TimeLimit:  timeLimit,
		})
	}

	return nil
}

// Export produces the reporting feed consumed by the heatmap tool. It goes
// through List so exported counters are never day-stale.
func (s *TrackerService) Export(ctx context.Context, accountID domain.AccountID) ([]domain.ExportRecord, error) {
	limits, err := s.List(ctx, accountID)
	if err != nil {
		return nil, err
	}

	records := make([]domain.ExportRecord, 0, len(limits))
	for _, l := range limits {
		records = append(records, domain.ExportRecord{
			URL:       l.WebsiteURL,
			TimeUsed:  l.TimeUsed,
			TimeLimit: l.TimeLimit,
		})
	}
	return records, nil
}

func (s *TrackerService) Status(ctx context.Context) (domain.StatusReport, error) {
	report, err := s.repo.StatusReport(ctx)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "status_report_failed",
		}).Errorf("status report failed: %v", err)
		return domain.StatusReport{}, commonerrors.ErrServiceUnavailable.WithCause(err)
	}
	return report, nil
}
