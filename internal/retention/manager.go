// Package retention reclaims space in the download directory. Entries expire a
// fixed time after their last modification or access; a sweeper removes expired
// entries on a fixed cadence and evicts finished task records along the way.
package retention

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
	"github.com/veranemoloko/media-downloader/internal/metrics"
)

const (
	DefaultTTL      = 4 * time.Hour
	DefaultInterval = 10 * time.Minute
)

// Store is the retention root as seen by the manager.
type Store interface {
	List() ([]domain.RetentionEntry, error)
	Remove(name string) error
	Touch(name string) error
}

// TaskEvictor drops finished task records older than a cutoff.
type TaskEvictor interface {
	EvictFinished(olderThan time.Time) int
}

// Options configures a Manager. Zero durations fall back to the defaults;
// a zero TaskRetention disables record eviction.
type Options struct {
	TTL           time.Duration
	Interval      time.Duration
	TaskRetention time.Duration
}

// Manager runs the expiry sweep and serves the retention view of the root.
// It takes no locks against readers or explicit deletes: whichever removal
// lands first wins and the other sees a missing path, which counts as success.
type Manager struct {
	store         Store
	evictor       TaskEvictor
	ttl           time.Duration
	interval      time.Duration
	taskRetention time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// SweepReport summarises one sweep.
type SweepReport struct {
	Scanned int
	Deleted int
	Failed  int
	Evicted int
}

func NewManager(store Store, evictor TaskEvictor, opts Options, logger *slog.Logger) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Manager{
		store:         store,
		evictor:       evictor,
		ttl:           opts.TTL,
		interval:      opts.Interval,
		taskRetention: opts.TaskRetention,
		logger:        logger,
		now:           time.Now,
	}
}

// TTL returns the configured time-to-live of an untouched entry.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Run sweeps immediately and then every interval until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Info("retention sweeper started", "ttl", m.ttl.String(), "interval", m.interval.String())

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.Sweep()

		select {
		case <-ctx.Done():
			m.logger.Info("retention sweeper stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Sweep deletes every entry older than the TTL. Expiry is evaluated from the
// current listing on every call. A failing entry is logged and skipped.
func (m *Manager) Sweep() SweepReport {
	var report SweepReport
	now := m.now()

	entries, err := m.store.List()
	if err != nil {
		m.logger.Error("retention sweep failed to list entries", "error", err)
		metrics.RetentionErrors.Inc()
		return report
	}

	for _, entry := range entries {
		report.Scanned++
		if entry.Age(now) <= m.ttl {
			continue
		}

		if err := m.store.Remove(entry.Name); err != nil {
			report.Failed++
			metrics.RetentionErrors.Inc()
			m.logger.Error("failed to remove expired entry", "name", entry.Name, "error", err)
			continue
		}

		report.Deleted++
		metrics.RetentionDeleted.Inc()
		m.logger.Info("expired entry removed", "name", entry.Name, "kind", entry.Kind, "age", entry.Age(now).Round(time.Second).String())
	}

	if m.evictor != nil && m.taskRetention > 0 {
		report.Evicted = m.evictor.EvictFinished(now.Add(-m.taskRetention))
		metrics.TasksEvicted.Add(float64(report.Evicted))
	}

	m.logger.Debug("retention sweep finished",
		"scanned", report.Scanned,
		"deleted", report.Deleted,
		"failed", report.Failed,
		"evicted", report.Evicted,
	)
	return report
}

// History lists the retained entries, newest first, with their expiry.
func (m *Manager) History() ([]domain.HistoryItem, error) {
	entries, err := m.store.List()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ModifiedAt.After(entries[j].ModifiedAt)
	})

	now := m.now()
	items := make([]domain.HistoryItem, 0, len(entries))
	for _, e := range entries {
		remaining := m.ttl - e.Age(now)
		if remaining < 0 {
			remaining = 0
		}
		items = append(items, domain.HistoryItem{
			Name:             e.Name,
			Type:             e.Kind,
			Size:             e.SizeBytes,
			Date:             e.ModifiedAt.Format(domain.HistoryDateLayout),
			RemainingSeconds: int64(remaining / time.Second),
			ExpiresAt:        e.ModifiedAt.Add(m.ttl).Unix(),
		})
	}
	return items, nil
}

// Touch restarts the retention countdown of an entry that is being read.
func (m *Manager) Touch(name string) error {
	err := m.store.Touch(name)
	if err != nil && !errors.Is(err, errpkg.ErrFileNotFound) {
		m.logger.Warn("failed to touch entry", "name", name, "error", err)
	}
	return err
}

// Delete removes an entry immediately, regardless of its age.
func (m *Manager) Delete(name string) error {
	if err := m.store.Remove(name); err != nil {
		metrics.RetentionErrors.Inc()
		m.logger.Error("failed to delete entry", "name", name, "error", err)
		return err
	}
	m.logger.Info("entry deleted", "name", name)
	return nil
}
