package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/gamedb-go/internal/services/sweep"
)

// Sweeper runs the maintenance jobs
type Sweeper interface {
	ResetPositions(ctx context.Context) (*sweep.Report, error)
	DesanitizeContainers(ctx context.Context) (*sweep.Report, error)
}

// Config holds sweep scheduling settings
type Config struct {
	Enabled  bool          `yaml:"enabled" env:"ENABLED"`
	Interval time.Duration `yaml:"interval" env:"INTERVAL"`
}

// SweepWorker runs both sweeps on a fixed interval
type SweepWorker struct {
	sweeper Sweeper
	config  Config
	logger  *slog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewSweepWorker creates a new sweep worker
func NewSweepWorker(sweeper Sweeper, cfg Config, logger *slog.Logger) *SweepWorker {
	return &SweepWorker{
		sweeper: sweeper,
		config:  cfg,
		logger:  logger,
	}
}

// Start begins the background sweep loop
func (w *SweepWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	w.stopCh, w.doneCh = stopCh, doneCh
	w.mu.Unlock()

	w.logger.Info("sweep worker started", "interval", w.config.Interval)

	go w.run(ctx, stopCh, doneCh)
	return nil
}

// Stop stops the background sweep loop and waits for an in-flight run
func (w *SweepWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)
	<-doneCh

	w.logger.Info("sweep worker stopped")
	return nil
}

// run is the main worker loop
func (w *SweepWorker) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		// A newer Start owns the flag once the channels are replaced
		w.mu.Lock()
		if w.doneCh == doneCh {
			w.running = false
		}
		w.mu.Unlock()
	}()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// IsRunning returns whether the worker loop is active
func (w *SweepWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunOnce runs both sweeps. A failing job is logged and does not stop the other.
func (w *SweepWorker) RunOnce(ctx context.Context) []*sweep.Report {
	jobs := []struct {
		job sweep.Job
		run func(context.Context) (*sweep.Report, error)
	}{
		{sweep.JobResetPositions, w.sweeper.ResetPositions},
		{sweep.JobDesanitizeContainers, w.sweeper.DesanitizeContainers},
	}

	var reports []*sweep.Report
	for _, j := range jobs {
		report, err := j.run(ctx)
		if err != nil {
			w.logger.Error("sweep failed", "job", j.job, "error", err)
		}
		if report != nil {
			reports = append(reports, report)
		}
	}
	return reports
}
