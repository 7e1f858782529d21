package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookProcessPayloadRoundTrip(t *testing.T) {
	payload := WebhookProcessJobPayload{EventID: 42}

	decoded, err := WebhookProcessJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, uint(42), decoded.EventID)
}

func TestActivationMailPayloadRoundTrip(t *testing.T) {
	payload := ActivationMailJobPayload{UserID: 7, Plan: "premium", Reason: "activation not persisted"}

	decoded, err := ActivationMailJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *decoded)
}

func TestJobStatusTransitions(t *testing.T) {
	job := &Job{
		ID:         "job-1",
		Type:       JobTypeWebhookProcess,
		Status:     JobStatusPending,
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  time.Now(),
	}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "boom", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)
	assert.False(t, job.IsRetryable())

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
	require.NotNil(t, job.CompletedAt)
}

func TestRetriesExhaust(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: 2}

	for i := 0; i < 2; i++ {
		job.MarkAsFailed("transient")
	}
	assert.False(t, job.IsRetryable(), "job must not retry past MaxRetries")
}
