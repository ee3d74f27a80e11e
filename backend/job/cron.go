package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AnTengye/contractdesk/backend/config"
	"github.com/AnTengye/contractdesk/backend/model"
	"github.com/AnTengye/contractdesk/backend/pipeline"
	"github.com/AnTengye/contractdesk/backend/service"
)

// Digest counts the records of one ledger per status bucket
type Digest struct {
	Ledger              string
	Total               int
	Upcoming            int
	Expired             int
	OverdueByEndDate    int
	OverdueBySubmission int
	Disabled            int
}

// BuildDigest buckets records as of today
func BuildDigest(ledger string, records []model.Contract, today model.Date) Digest {
	d := Digest{Ledger: ledger, Total: len(records)}
	for i := range records {
		c := &records[i]
		if c.Disabled {
			d.Disabled++
		}
		if pipeline.Upcoming(c, today) {
			d.Upcoming++
		}
		if pipeline.Expired(c, today) {
			d.Expired++
		}
		if pipeline.OverdueByEndDate(c, today) {
			d.OverdueByEndDate++
		}
		if pipeline.OverdueBySubmission45d(c, today) {
			d.OverdueBySubmission++
		}
	}
	return d
}

// Scheduler runs the daily digest and the idle session sweep
type Scheduler struct {
	cron     *cron.Cron
	ledgers  []*service.ContractStore
	sessions *service.TableSessions
	now      func() time.Time
}

// NewScheduler registers the jobs. Specs carry a seconds field.
func NewScheduler(cfg *config.Config, ledgers *service.Ledgers, sessions *service.TableSessions) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		ledgers:  []*service.ContractStore{ledgers.Contracts, ledgers.Lending},
		sessions: sessions,
		now:      time.Now,
	}

	if cfg.Digest.Enabled {
		if _, err := s.cron.AddFunc(cfg.Digest.Spec, s.RunDigest); err != nil {
			return nil, fmt.Errorf("invalid digest spec %q: %w", cfg.Digest.Spec, err)
		}
	}
	if _, err := s.cron.AddFunc(cfg.Session.SweepSpec, func() { s.sessions.Sweep() }); err != nil {
		return nil, fmt.Errorf("invalid session sweep spec %q: %w", cfg.Session.SweepSpec, err)
	}
	return s, nil
}

// RunDigest logs one digest line per ledger
func (s *Scheduler) RunDigest() {
	today := model.DateOf(s.now())
	for _, l := range s.ledgers {
		d := BuildDigest(l.Name(), l.Snapshot().Records, today)
		slog.Info("[Cron] contract digest",
			"ledger", d.Ledger,
			"date", today.String(),
			"total", d.Total,
			"upcoming", d.Upcoming,
			"expired", d.Expired,
			"overdue_end_date", d.OverdueByEndDate,
			"overdue_submission", d.OverdueBySubmission,
			"disabled", d.Disabled,
		)
	}
}

// Jobs is the number of registered jobs
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start runs the scheduled jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "jobs", s.Jobs())
}

// Stop halts the scheduler and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out")
	}
}
