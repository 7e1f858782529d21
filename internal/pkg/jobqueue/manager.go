package jobqueue

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/verbumapp/verbum/internal/pkg/env"
	metrics "github.com/verbumapp/verbum/internal/pkg/metrics/counter"
)

// PendingEventSource lists recorded webhook events that still need
// processing, so missed or failed activations are retried out-of-band.
type PendingEventSource interface {
	ListUnprocessedIDs(limit int) ([]uint, error)
}

// Manager manages the global job queue and background tasks
type Manager struct {
	queue              *Queue
	retryTicker        *time.Ticker
	counterFlushTicker *time.Ticker
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool

	pending PendingEventSource
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := env.GetEnvInt("JOB_QUEUE_WORKERS", 3)
		globalManager = &Manager{
			queue:  NewQueue(workerCount),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// SetPendingEventSource wires the store scanned by the retry worker.
func (m *Manager) SetPendingEventSource(s PendingEventSource) {
	m.pending = s
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so the manager can be
	// restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info().Msg("job queue manager starting")

	m.queue.Start()

	retryInterval := time.Duration(env.GetEnvInt("WEBHOOK_RETRY_INTERVAL_MINUTES", 2)) * time.Minute
	m.retryTicker = time.NewTicker(retryInterval)
	m.wg.Add(1)
	go m.webhookRetryWorker()

	// Flush view counters (Redis -> DB) every 5 seconds
	m.counterFlushTicker = time.NewTicker(5 * time.Second)
	m.wg.Add(1)
	go m.counterFlushWorker()

	log.Info().Msg("job queue manager started")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info().Msg("job queue manager stopping")

	if m.retryTicker != nil {
		m.retryTicker.Stop()
	}
	if m.counterFlushTicker != nil {
		m.counterFlushTicker.Stop()
	}

	close(m.stopCh)
	m.wg.Wait()
	m.queue.Stop()
	m.running = false

	log.Info().Msg("job queue manager stopped")
}

// webhookRetryWorker re-enqueues recorded webhook events that were never
// applied, including activations that hit a persistence failure.
func (m *Manager) webhookRetryWorker() {
	defer m.wg.Done()

	for {
		select {
		case <-m.stopCh:
			return
		case <-m.retryTicker.C:
			m.retryPendingWebhooks()
		}
	}
}

func (m *Manager) retryPendingWebhooks() {
	if m.pending == nil {
		return
	}

	ids, err := m.pending.ListUnprocessedIDs(50)
	if err != nil {
		log.Error().Err(err).Msg("failed to list unprocessed webhook events")
		return
	}
	for _, id := range ids {
		payload := WebhookProcessJobPayload{EventID: id}
		if _, err := m.queue.EnqueueJob(JobTypeWebhookProcess, payload.ToMap()); err != nil {
			log.Error().Err(err).Uint("event_id", id).Msg("failed to enqueue webhook retry")
		}
	}
	if len(ids) > 0 {
		log.Info().Int("count", len(ids)).Msg("re-enqueued unprocessed webhook events")
	}
}

// counterFlushWorker periodically flushes view counters to the database
func (m *Manager) counterFlushWorker() {
	defer m.wg.Done()

	for {
		select {
		case <-m.stopCh:
			// Final flush on shutdown
			if err := metrics.FlushAll(); err != nil {
				log.Error().Err(err).Msg("final counter flush failed")
			}
			return
		case <-m.counterFlushTicker.C:
			if err := metrics.FlushAll(); err != nil {
				log.Error().Err(err).Msg("counter flush failed")
			}
		}
	}
}

// EnqueueWebhookProcess is a helper to enqueue processing for one recorded
// webhook event.
func EnqueueWebhookProcess(eventID uint) (*Job, error) {
	payload := WebhookProcessJobPayload{EventID: eventID}
	return GetManager().GetQueue().EnqueueJob(JobTypeWebhookProcess, payload.ToMap())
}

// EnqueueActivationMail is a helper to enqueue an activation-failure
// notification.
func EnqueueActivationMail(userID uint, plan, reason string) (*Job, error) {
	payload := ActivationMailJobPayload{UserID: userID, Plan: plan, Reason: reason}
	return GetManager().GetQueue().EnqueueJob(JobTypeActivationMail, payload.ToMap())
}
