package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/verbumapp/verbum/internal/pkg/cache"
)

const (
	// Redis key prefixes
	JobKeyPrefix     = "job:"
	JobQueueKey      = "job_queue"
	JobProcessingKey = "job_processing"
	JobStatsKey      = "job_stats"

	// Job settings
	DefaultMaxRetries = 3
	JobTTL            = 24 * time.Hour // Jobs expire after 24 hours
)

// WebhookProcessor applies a recorded payment webhook event. EventSubject
// resolves the paying user behind an event so a permanently failed job can
// still notify them.
type WebhookProcessor interface {
	Process(ctx context.Context, eventID uint) error
	EventSubject(eventID uint) (userID uint, plan string, err error)
}

// ActivationMailer notifies a user that a confirmed payment could not be
// activated.
type ActivationMailer interface {
	SendActivationFailure(userID uint, plan, reason string) error
}

// Queue manages background jobs using Redis
type Queue struct {
	client     *redis.Client
	workers    int
	workerPool chan struct{}
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool

	webhooks WebhookProcessor
	mailer   ActivationMailer
}

// NewQueue creates a new job queue
func NewQueue(workers int) *Queue {
	if workers <= 0 {
		workers = 3
	}

	return &Queue{
		client:     cache.GetClient(),
		workers:    workers,
		workerPool: make(chan struct{}, workers),
		stopCh:     make(chan struct{}),
	}
}

// SetWebhookProcessor wires the processor applied to webhook_process jobs.
func (q *Queue) SetWebhookProcessor(p WebhookProcessor) {
	q.webhooks = p
}

// SetActivationMailer wires the mailer used by activation_mail jobs.
func (q *Queue) SetActivationMailer(m ActivationMailer) {
	q.mailer = m
}

// Start starts the job queue workers
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}

	q.running = true
	log.Info().Int("workers", q.workers).Msg("job queue starting")

	for i := 0; i < q.workers; i++ {
		q.workerPool <- struct{}{}
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	// Recover jobs stuck in processing after a crash
	q.wg.Add(1)
	go q.stuckSweeper(10*time.Minute, 1*time.Minute)
}

// Stop stops the job queue workers
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}

	log.Info().Msg("job queue stopping workers")
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info().Msg("job queue workers stopped")
}

// stuckSweeper periodically scans the processing list and requeues jobs stuck
// for longer than maxAge
func (q *Queue) stuckSweeper(maxAge time.Duration, interval time.Duration) {
	defer q.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	ctx := context.Background()
	for {
		select {
		case <-q.stopCh:
			return
		case <-ticker.C:
			ids, err := q.client.LRange(ctx, JobProcessingKey, 0, -1).Result()
			if err != nil {
				log.Error().Err(err).Msg("job sweeper failed to read processing list")
				continue
			}
			now := time.Now()
			for _, id := range ids {
				jobKey := JobKeyPrefix + id
				data, err := q.client.Get(ctx, jobKey).Result()
				if err != nil {
					if err != redis.Nil {
						log.Error().Err(err).Str("job_id", id).Msg("job sweeper failed to load job")
					}
					_ = q.client.LRem(ctx, JobProcessingKey, 1, id).Err()
					continue
				}
				var job Job
				if uerr := json.Unmarshal([]byte(data), &job); uerr != nil {
					log.Error().Err(uerr).Str("job_id", id).Msg("job sweeper failed to decode job")
					_ = q.client.LRem(ctx, JobProcessingKey, 1, id).Err()
					continue
				}
				if job.Status != JobStatusProcessing {
					_ = q.client.LRem(ctx, JobProcessingKey, 1, id).Err()
					continue
				}
				started := job.ProcessedAt
				if started == nil || started.IsZero() {
					tmp := job.UpdatedAt
					if tmp.IsZero() {
						tmp = job.CreatedAt
					}
					started = &tmp
				}
				if now.Sub(*started) > maxAge {
					log.Warn().Str("job_id", job.ID).Str("type", string(job.Type)).Dur("age", now.Sub(*started)).Msg("recovering stuck job")
					job.Status = JobStatusPending
					job.ErrorMsg = "recovered by sweeper"
					job.UpdatedAt = now
					q.updateJob(ctx, &job)
					_ = q.client.LRem(ctx, JobProcessingKey, 1, id).Err()
					_ = q.client.RPush(ctx, JobQueueKey, id).Err()
				}
			}
		}
	}
}

// worker processes jobs from the queue
func (q *Queue) worker(id int) {
	defer q.wg.Done()

	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			return
		default:
			<-q.workerPool

			job, err := q.dequeueJob(ctx)
			if err != nil {
				if err != redis.Nil {
					log.Error().Err(err).Int("worker", id).Msg("failed to dequeue job")
				}
				q.workerPool <- struct{}{}
				time.Sleep(time.Second)
				continue
			}

			if job != nil {
				log.Info().Int("worker", id).Str("job_id", job.ID).Str("type", string(job.Type)).Msg("processing job")
				q.processJob(ctx, job)
			}

			q.workerPool <- struct{}{}
		}
	}
}

// EnqueueJob adds a new job to the queue
func (q *Queue) EnqueueJob(jobType JobType, payload map[string]interface{}) (*Job, error) {
	ctx := context.Background()

	job := &Job{
		ID:         uuid.New().String(),
		Type:       jobType,
		Status:     JobStatusPending,
		Payload:    payload,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
	}

	jobData, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	jobKey := JobKeyPrefix + job.ID

	pipe := q.client.Pipeline()
	pipe.Set(ctx, jobKey, jobData, JobTTL)
	pipe.LPush(ctx, JobQueueKey, job.ID)
	pipe.HIncrBy(ctx, JobStatsKey, string(JobStatusPending), 1)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	log.Info().Str("job_id", job.ID).Str("type", string(jobType)).Msg("enqueued job")
	return job, nil
}

// dequeueJob gets the next job from the queue
func (q *Queue) dequeueJob(ctx context.Context) (*Job, error) {
	// Move job from pending queue to processing queue atomically
	result, err := q.client.BRPopLPush(ctx, JobQueueKey, JobProcessingKey, time.Second).Result()
	if err != nil {
		return nil, err
	}

	jobID := result
	jobKey := JobKeyPrefix + jobID

	jobData, err := q.client.Get(ctx, jobKey).Result()
	if err != nil {
		q.client.LRem(ctx, JobProcessingKey, 1, jobID)
		return nil, fmt.Errorf("job data not found for ID %s", jobID)
	}

	var job Job
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		q.client.LRem(ctx, JobProcessingKey, 1, jobID)
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", jobID, err)
	}

	return &job, nil
}

// processJob processes a single job
func (q *Queue) processJob(ctx context.Context, job *Job) {
	job.MarkAsProcessing()
	q.updateJob(ctx, job)

	var err error
	switch job.Type {
	case JobTypeWebhookProcess:
		err = q.processWebhookJob(ctx, job)
	case JobTypeActivationMail:
		err = q.processActivationMailJob(job)
	default:
		err = fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("job failed")
		job.MarkAsFailed(err.Error())

		if job.IsRetryable() {
			log.Info().Str("job_id", job.ID).Int("attempt", job.RetryCount).Int("max", job.MaxRetries).Msg("retrying job")
			job.MarkAsRetrying()
			q.updateJob(ctx, job)

			// Re-enqueue for retry after a delay
			time.AfterFunc(time.Minute*time.Duration(job.RetryCount), func() {
				q.client.LPush(ctx, JobQueueKey, job.ID)
			})
		} else {
			log.Error().Str("job_id", job.ID).Int("retries", job.RetryCount).Msg("job permanently failed")
			q.updateJobStats(ctx, JobStatusFailed, 1)

			if mail := activationMailForFailedJob(job, q.webhooks); mail != nil {
				if _, enqErr := q.EnqueueJob(JobTypeActivationMail, mail.ToMap()); enqErr != nil {
					log.Error().Err(enqErr).Str("job_id", job.ID).Msg("failed to enqueue activation failure mail")
				}
			}
		}
	} else {
		job.MarkAsCompleted()
		q.updateJobStats(ctx, JobStatusCompleted, 1)
		q.removeCompletedJob(ctx, job.ID)
	}

	if job.Status != JobStatusCompleted {
		q.updateJob(ctx, job)
	}
	q.removeFromProcessing(ctx, job.ID)
}

// activationMailForFailedJob builds the user notification for a webhook job
// that exhausted its retries. The provider already confirmed the payment, so
// the user must hear that activation is delayed. Returns nil when the job
// carries no reachable user.
func activationMailForFailedJob(job *Job, webhooks WebhookProcessor) *ActivationMailJobPayload {
	if job.Type != JobTypeWebhookProcess || webhooks == nil {
		return nil
	}
	payload, err := WebhookProcessJobPayloadFromMap(job.Payload)
	if err != nil {
		return nil
	}
	userID, plan, err := webhooks.EventSubject(payload.EventID)
	if err != nil || userID == 0 {
		log.Error().Err(err).Uint("event_id", payload.EventID).Msg("cannot resolve user for failed webhook job")
		return nil
	}
	return &ActivationMailJobPayload{UserID: userID, Plan: plan, Reason: job.ErrorMsg}
}

func (q *Queue) processWebhookJob(ctx context.Context, job *Job) error {
	if q.webhooks == nil {
		return fmt.Errorf("no webhook processor configured")
	}
	payload, err := WebhookProcessJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid webhook job payload: %w", err)
	}
	return q.webhooks.Process(ctx, payload.EventID)
}

func (q *Queue) processActivationMailJob(job *Job) error {
	if q.mailer == nil {
		return fmt.Errorf("no activation mailer configured")
	}
	payload, err := ActivationMailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid activation mail payload: %w", err)
	}
	return q.mailer.SendActivationFailure(payload.UserID, payload.Plan, payload.Reason)
}

// updateJob updates job data in Redis
func (q *Queue) updateJob(ctx context.Context, job *Job) {
	jobData, err := json.Marshal(job)
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("failed to marshal job")
		return
	}

	jobKey := JobKeyPrefix + job.ID
	if err := q.client.Set(ctx, jobKey, jobData, JobTTL).Err(); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("failed to update job")
	}
}

// removeFromProcessing removes a job from the processing queue
func (q *Queue) removeFromProcessing(ctx context.Context, jobID string) {
	if err := q.client.LRem(ctx, JobProcessingKey, 1, jobID).Err(); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("failed to remove job from processing queue")
	}
}

// removeCompletedJob completely removes a completed job from Redis
func (q *Queue) removeCompletedJob(ctx context.Context, jobID string) {
	jobKey := JobKeyPrefix + jobID
	if err := q.client.Del(ctx, jobKey).Err(); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("failed to remove completed job")
	}
}

// updateJobStats updates job statistics
func (q *Queue) updateJobStats(ctx context.Context, status JobStatus, delta int64) {
	if err := q.client.HIncrBy(ctx, JobStatsKey, string(status), delta).Err(); err != nil {
		log.Error().Err(err).Msg("failed to update job stats")
	}
}

// GetJob retrieves a job by ID
func (q *Queue) GetJob(ctx context.Context, jobID string) (*Job, error) {
	jobKey := JobKeyPrefix + jobID
	jobData, err := q.client.Get(ctx, jobKey).Result()
	if err != nil {
		return nil, err
	}

	var job Job
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

// GetJobStats returns statistics about job statuses
func (q *Queue) GetJobStats(ctx context.Context) (map[JobStatus]int64, error) {
	stats, err := q.client.HGetAll(ctx, JobStatsKey).Result()
	if err != nil {
		return nil, err
	}

	result := make(map[JobStatus]int64)
	for status, count := range stats {
		if countInt, err := json.Number(count).Int64(); err == nil {
			result[JobStatus(status)] = countInt
		}
	}

	return result, nil
}

// GetQueueSize returns the number of pending jobs
func (q *Queue) GetQueueSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, JobQueueKey).Result()
}

// GetProcessingSize returns the number of jobs being processed
func (q *Queue) GetProcessingSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, JobProcessingKey).Result()
}
