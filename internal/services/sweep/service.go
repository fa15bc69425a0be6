// Package sweep runs the maintenance scans that correct stored game state.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/gamedb-go/internal/content"
	"github.com/mcoot/gamedb-go/internal/dependencies/clock"
	"github.com/mcoot/gamedb-go/internal/model"
	"github.com/mcoot/gamedb-go/internal/storage"
	"github.com/mcoot/gamedb-go/internal/storeconn"
)

// ErrStoreUnavailable is returned by every job when the store is not connected
var ErrStoreUnavailable = storeconn.ErrStoreUnavailable

// Job names a sweep
type Job string

const (
	JobResetPositions       Job = "reset_positions"
	JobDesanitizeContainers Job = "desanitize_containers"
)

// Report summarises one sweep run
type Report struct {
	RunID    string        `json:"run_id"`
	Job      Job           `json:"job"`
	Scanned  int           `json:"scanned"`
	Updated  int           `json:"updated"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Cleared  int           `json:"cleared"`
	Duration time.Duration `json:"duration"`
}

// StoreProvider hands out the store once it is connected
type StoreProvider interface {
	Store() (storage.Storage, error)
}

// Service runs the sweeps. Records are written back one at a time and a
// failed write never stops the scan.
type Service struct {
	stores  StoreProvider
	content content.Content
	policy  Policy
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a sweep Service using the content's denylist
func New(stores StoreProvider, c content.Content, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		stores:  stores,
		content: c,
		policy:  NewPolicy(c.Denylist),
		clock:   clock,
		logger:  logger,
	}
}

func (s *Service) begin(job Job) (storage.Storage, *Report, *slog.Logger, error) {
	st, err := s.stores.Store()
	if err != nil {
		s.logger.Warn("store unavailable", "job", job)
		return nil, nil, nil, ErrStoreUnavailable
	}

	report := &Report{RunID: uuid.NewString(), Job: job}
	logger := s.logger.With("job", job, "run_id", report.RunID)
	logger.Info("sweep started")
	return st, report, logger, nil
}

func (s *Service) finish(report *Report, logger *slog.Logger, started time.Time) {
	report.Duration = s.clock.Since(started)
	logger.Info("sweep finished",
		"scanned", report.Scanned,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"cleared", report.Cleared,
		"duration", report.Duration,
	)
}

// ResetPositions moves every player with quest progress to a spawn point:
// the tutorial spawn until the tutorial is finished, the default spawn after.
// Players without quest progress are left where they are.
func (s *Service) ResetPositions(ctx context.Context) (*Report, error) {
	st, report, logger, err := s.begin(JobResetPositions)
	if err != nil {
		return nil, err
	}
	started := s.clock.Now()
	defer s.finish(report, logger, started)

	tutorialSpawn, err := s.content.TutorialSpawnPosition()
	if err != nil {
		return report, fmt.Errorf("tutorial spawn: %w", err)
	}
	defaultSpawn, err := s.content.DefaultSpawnPosition()
	if err != nil {
		return report, fmt.Errorf("default spawn: %w", err)
	}
	stageCount := s.content.TutorialStageCount()
	questKey := s.content.TutorialQuest.Key

	accounts, err := st.ListAccounts(ctx)
	if err != nil {
		return report, fmt.Errorf("listing accounts: %w", err)
	}

	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		progress, err := st.GetQuestProgress(ctx, account.Username)
		if err != nil {
			if errors.Is(err, model.ErrQuestProgressNotFound) {
				report.Skipped++
				continue
			}
			logger.Error("failed to load quest progress", "username", account.Username, "error", err)
			report.Failed++
			continue
		}

		pos := defaultSpawn
		if stage, ok := progress.Stage(questKey); !ok || stage < stageCount {
			pos = tutorialSpawn
		}

		if err := st.UpsertPosition(ctx, account.Username, pos); err != nil {
			logger.Error("failed to reset position", "username", account.Username, "error", err)
			report.Failed++
			continue
		}
		report.Updated++
	}

	return report, nil
}

// DesanitizeContainers applies the slot policy to every inventory, bank and
// equipment container. Only containers with a cleared slot are written back.
func (s *Service) DesanitizeContainers(ctx context.Context) (*Report, error) {
	st, report, logger, err := s.begin(JobDesanitizeContainers)
	if err != nil {
		return nil, err
	}
	started := s.clock.Now()
	defer s.finish(report, logger, started)

	var errs []error
	for _, kind := range model.ContainerKinds {
		containers, err := st.ListContainers(ctx, kind)
		if err != nil {
			logger.Error("failed to list containers", "kind", kind, "error", err)
			errs = append(errs, fmt.Errorf("listing %s: %w", kind, err))
			continue
		}

		for _, c := range containers {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.Scanned++

			changed := false
			for i := range c.Slots {
				original := c.Slots[i]
				tier := s.policy.Apply(&c.Slots[i])
				if tier == "" {
					continue
				}
				changed = true
				report.Cleared++
				logger.Info("slot cleared",
					"kind", kind,
					"username", c.Username,
					"slot", i,
					"key", original.Key,
					"count", original.Count,
					"tier", tier,
				)
			}

			if !changed {
				continue
			}
			if err := st.SaveContainer(ctx, c); err != nil {
				logger.Error("failed to save container", "kind", kind, "username", c.Username, "error", err)
				report.Failed++
				continue
			}
			report.Updated++
		}
	}

	return report, errors.Join(errs...)
}
