/*
scheduler.go - Periodic recovery-deadline check

PURPOSE:
  Guard and overtime accruals must be recovered by December 31st of the
  following year. The scheduler periodically lists the accruals whose
  deadline falls inside the window, logs them and updates the expiring
  gauge. It never changes a balance.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - Reads through leave.Service, so it shares the service lock

CONFIGURATION:
  - CheckInterval: How often to check (default: 24 hours)
  - WindowDays:    How far ahead to look (default: 60 days)
  - Enabled:       Whether scheduler is active (default: true)

USAGE:
  scheduler := NewExpiryScheduler(svc, metrics)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GetExpiring endpoint (same query on demand)
  - leave/expiry.go: Expiring
*/
package api

import (
	"log"
	"sync"
	"time"

	"github.com/marinalog/ledger/generic"
	"github.com/marinalog/ledger/leave"
)

// ExpiryScheduler reports accruals nearing their recovery deadline.
type ExpiryScheduler struct {
	Service       *leave.Service
	Metrics       *Metrics
	CheckInterval time.Duration
	WindowDays    int
	Enabled       bool

	now    func() time.Time
	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewExpiryScheduler creates a new scheduler. metrics may be nil.
func NewExpiryScheduler(svc *leave.Service, metrics *Metrics) *ExpiryScheduler {
	return &ExpiryScheduler{
		Service:       svc,
		Metrics:       metrics,
		CheckInterval: 24 * time.Hour,
		WindowDays:    DefaultExpiryWindowDays,
		Enabled:       true,
		now:           time.Now,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (es *ExpiryScheduler) Start() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if !es.Enabled {
		log.Println("[Expiry] Disabled, not starting")
		return
	}
	if es.ticker != nil {
		return
	}

	es.ticker = time.NewTicker(es.CheckInterval)
	es.stop = make(chan bool)
	es.wg.Add(1)

	go es.run()

	log.Printf("[Expiry] Started with check interval: %v, window: %d days, next run at %s",
		es.CheckInterval, es.WindowDays, es.GetNextRunTime().Format(time.RFC3339))
}

// Stop stops the scheduler.
func (es *ExpiryScheduler) Stop() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.ticker != nil {
		es.ticker.Stop()
		close(es.stop)
		es.wg.Wait()
		es.ticker = nil
		log.Println("[Expiry] Stopped")
	}
}

func (es *ExpiryScheduler) run() {
	defer es.wg.Done()

	// Run immediately on start
	es.check()

	for {
		select {
		case <-es.ticker.C:
			es.check()
		case <-es.stop:
			return
		}
	}
}

func (es *ExpiryScheduler) check() []leave.ExpiringEntry {
	asOf := generic.DateOf(es.now())
	entries := es.Service.Expiring(asOf, es.WindowDays)

	for _, e := range entries {
		log.Printf("[Expiry] %s %s (%s) must be recovered by %s: %d days left",
			e.Entry.Type, e.Entry.ID, e.Entry.Quantity, e.Deadline, e.DaysLeft)
	}
	if len(entries) > 0 {
		log.Printf("[Expiry] %d accruals expire within %d days of %s", len(entries), es.WindowDays, asOf)
	}
	if es.Metrics != nil {
		es.Metrics.Expiring.Set(float64(len(entries)))
	}
	return entries
}

// RunNow triggers an immediate check and returns what it found.
func (es *ExpiryScheduler) RunNow() []leave.ExpiringEntry {
	return es.check()
}

// GetNextRunTime returns when the next scheduled check will occur.
func (es *ExpiryScheduler) GetNextRunTime() time.Time {
	return es.now().Add(es.CheckInterval)
}
