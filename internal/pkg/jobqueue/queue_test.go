package jobqueue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWebhookProcessor struct {
	userID uint
	plan   string
	err    error
}

func (s *stubWebhookProcessor) Process(ctx context.Context, eventID uint) error {
	return nil
}

func (s *stubWebhookProcessor) EventSubject(eventID uint) (uint, string, error) {
	return s.userID, s.plan, s.err
}

func TestFailedWebhookJobProducesActivationMail(t *testing.T) {
	job := &Job{
		Type:       JobTypeWebhookProcess,
		Payload:    WebhookProcessJobPayload{EventID: 42}.ToMap(),
		Status:     JobStatusFailed,
		ErrorMsg:   "activation not persisted for user 7",
		RetryCount: DefaultMaxRetries,
	}
	require.False(t, job.IsRetryable())

	mail := activationMailForFailedJob(job, &stubWebhookProcessor{userID: 7, plan: "premium"})
	require.NotNil(t, mail, "exhausted webhook job must notify the payer")
	assert.Equal(t, uint(7), mail.UserID)
	assert.Equal(t, "premium", mail.Plan)
	assert.Equal(t, "activation not persisted for user 7", mail.Reason)
}

func TestFailedNonWebhookJobProducesNoMail(t *testing.T) {
	job := &Job{
		Type:    JobTypeActivationMail,
		Payload: ActivationMailJobPayload{UserID: 7, Plan: "basic", Reason: "smtp down"}.ToMap(),
	}
	assert.Nil(t, activationMailForFailedJob(job, &stubWebhookProcessor{userID: 7}))
}

func TestFailedWebhookJobWithoutSubjectProducesNoMail(t *testing.T) {
	job := &Job{
		Type:    JobTypeWebhookProcess,
		Payload: WebhookProcessJobPayload{EventID: 42}.ToMap(),
	}

	assert.Nil(t, activationMailForFailedJob(job, &stubWebhookProcessor{err: errors.New("event not found")}))
	assert.Nil(t, activationMailForFailedJob(job, nil))
}
