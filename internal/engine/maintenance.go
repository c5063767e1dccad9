package engine

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"CoinPilot/internal/portfolio"
	"CoinPilot/internal/recorder"
)

// JournalRetention is how long order and cycle rows are kept.
const JournalRetention = 90 * 24 * time.Hour

// Maintenance runs housekeeping on a cron schedule, independent of the
// trading loop: journal retention and a daily valuation summary.
type Maintenance struct {
	cron      *cron.Cron
	recorder  recorder.Recorder
	portfolio *portfolio.State
}

// NewMaintenance registers the daily job. The cron spec uses seconds-first
// fields; default fires at 03:00 every day.
func NewMaintenance(rec recorder.Recorder, state *portfolio.State, spec string) (*Maintenance, error) {
	if spec == "" {
		spec = "0 0 3 * * *"
	}
	m := &Maintenance{
		cron:      cron.New(cron.WithSeconds()),
		recorder:  rec,
		portfolio: state,
	}
	if _, err := m.cron.AddFunc(spec, m.daily); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Maintenance) daily() {
	cutoff := time.Now().Add(-JournalRetention)
	if err := m.recorder.PurgeBefore(cutoff); err != nil {
		log.Printf("[ERROR] journal retention purge: %v", err)
	} else {
		log.Printf("[INFO] journal purged before %s", cutoff.Format(time.RFC3339))
	}

	snap := m.portfolio.Snapshot()
	log.Printf("[INFO] daily summary: portfolio value %.4f, %d assets, %d history samples",
		snap.TotalValue, len(snap.Balances), len(snap.History))
}

// Start begins the cron scheduler.
func (m *Maintenance) Start() {
	m.cron.Start()
	log.Println("[INFO] maintenance scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (m *Maintenance) Stop() {
	m.cron.Stop()
	log.Println("[INFO] maintenance scheduler stopped")
}
