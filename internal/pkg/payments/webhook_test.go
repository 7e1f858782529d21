package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
	"github.com/verbumapp/verbum/internal/pkg/entitlements"
	"github.com/verbumapp/verbum/internal/pkg/subscription"
)

type memEventRepo struct {
	events map[string]*models.PaymentWebhookEvent
	nextID uint
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[string]*models.PaymentWebhookEvent)}
}

func (r *memEventRepo) CreateIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	key := event.Provider + "/" + event.ProviderEventID
	if existing, ok := r.events[key]; ok {
		cp := *existing
		return false, &cp, nil
	}
	r.nextID++
	event.ID = r.nextID
	cp := *event
	r.events[key] = &cp
	return true, event, nil
}

func (r *memEventRepo) GetByID(id uint) (*models.PaymentWebhookEvent, error) {
	for _, e := range r.events {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memEventRepo) MarkProcessed(id uint, processingError string) error {
	for _, e := range r.events {
		if e.ID == id {
			now := time.Now()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memEventRepo) RecordError(id uint, processingError string) error {
	for _, e := range r.events {
		if e.ID == id {
			e.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memEventRepo) ListUnprocessedIDs(limit int) ([]uint, error) {
	var ids []uint
	for _, e := range r.events {
		if e.ProcessedAt == nil && len(ids) < limit {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

func newWebhookFixture() (*WebhookService, *memEventRepo, *subscription.Store) {
	repo := newMemEventRepo()
	store := subscription.NewStore(newMemSubRepo())
	return NewWebhookService(repo, store), repo, store
}

func TestRecordDeduplicatesByEventID(t *testing.T) {
	svc, _, _ := newWebhookFixture()
	ctx := context.Background()

	in := WebhookEventInput{
		Provider:        "mercadopago",
		ProviderEventID: "evt-1",
		EventType:       "payment",
		PayloadJSON:     `{"user_id":7,"plan":"basic","status":"success"}`,
		SignatureValid:  true,
	}

	created, first, err := svc.Record(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)

	created, second, err := svc.Record(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestRecordHashesMissingEventID(t *testing.T) {
	svc, _, _ := newWebhookFixture()
	ctx := context.Background()

	in := WebhookEventInput{
		Provider:    "mercadopago",
		EventType:   "payment",
		PayloadJSON: `{"user_id":7,"plan":"basic","status":"success"}`,
	}

	_, event, err := svc.Record(ctx, in)
	require.NoError(t, err)
	assert.Contains(t, event.ProviderEventID, "hash:")

	// Same payload, same synthetic id.
	created, _, err := svc.Record(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestProcessActivatesSubscription(t *testing.T) {
	svc, repo, store := newWebhookFixture()
	ctx := context.Background()

	_, event, err := svc.Record(ctx, WebhookEventInput{
		Provider:        "mercadopago",
		ProviderEventID: "evt-1",
		EventType:       "payment",
		PayloadJSON:     `{"user_id":7,"plan":"premium","status":"approved"}`,
		SignatureValid:  true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Process(ctx, event.ID))

	ent, err := store.Reconcile(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ent.Active)
	assert.Equal(t, entitlements.TierPremium, ent.Tier)

	stored, err := repo.GetByID(event.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.ProcessedAt)
	assert.Empty(t, stored.ProcessingError)
}

func TestProcessSkipsUnsignedEvents(t *testing.T) {
	svc, _, store := newWebhookFixture()
	ctx := context.Background()

	_, event, err := svc.Record(ctx, WebhookEventInput{
		Provider:        "mercadopago",
		ProviderEventID: "evt-2",
		PayloadJSON:     `{"user_id":7,"plan":"premium","status":"approved"}`,
		SignatureValid:  false,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Process(ctx, event.ID))

	ent, err := store.Reconcile(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ent.Active, "unsigned events must never grant entitlement")
}

func TestProcessPendingIsNoOp(t *testing.T) {
	svc, repo, store := newWebhookFixture()
	ctx := context.Background()

	_, event, err := svc.Record(ctx, WebhookEventInput{
		Provider:        "mercadopago",
		ProviderEventID: "evt-3",
		PayloadJSON:     `{"user_id":7,"plan":"basic","status":"pending"}`,
		SignatureValid:  true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Process(ctx, event.ID))

	ent, err := store.Reconcile(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ent.Active)

	stored, err := repo.GetByID(event.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.ProcessedAt)
}

func TestProcessIsIdempotent(t *testing.T) {
	svc, _, store := newWebhookFixture()
	ctx := context.Background()

	_, event, err := svc.Record(ctx, WebhookEventInput{
		Provider:        "mercadopago",
		ProviderEventID: "evt-4",
		PayloadJSON:     `{"user_id":7,"plan":"basic","status":"success"}`,
		SignatureValid:  true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Process(ctx, event.ID))
	ent1, err := store.Reconcile(ctx, 7)
	require.NoError(t, err)

	// Second processing is a no-op because the event is marked processed.
	require.NoError(t, svc.Process(ctx, event.ID))
	ent2, err := store.Reconcile(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, ent1.ExpiresAt)
	require.NotNil(t, ent2.ExpiresAt)
	assert.Equal(t, ent1.ExpiresAt.Unix(), ent2.ExpiresAt.Unix(), "expiry must not be extended twice")
}

type failingSubRepo struct{}

func (failingSubRepo) GetByUserID(userID uint) (*models.Subscription, error) {
	return nil, gorm.ErrRecordNotFound
}

func (failingSubRepo) Upsert(sub *models.Subscription) error {
	return errors.New("database down")
}

func TestProcessKeepsEventRetryableOnPersistFailure(t *testing.T) {
	repo := newMemEventRepo()
	store := subscription.NewStore(failingSubRepo{})
	svc := NewWebhookService(repo, store)
	ctx := context.Background()

	_, event, err := svc.Record(ctx, WebhookEventInput{
		Provider:        "mercadopago",
		ProviderEventID: "evt-5",
		PayloadJSON:     `{"user_id":7,"plan":"basic","status":"success"}`,
		SignatureValid:  true,
	})
	require.NoError(t, err)

	err = svc.Process(ctx, event.ID)
	require.Error(t, err)

	stored, err := repo.GetByID(event.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ProcessedAt, "failed activation must stay unprocessed")
	assert.NotEmpty(t, stored.ProcessingError)

	ids, err := repo.ListUnprocessedIDs(10)
	require.NoError(t, err)
	assert.Contains(t, ids, event.ID)
}

func TestEventSubjectResolvesPayer(t *testing.T) {
	svc, _, _ := newWebhookFixture()
	ctx := context.Background()

	_, event, err := svc.Record(ctx, WebhookEventInput{
		Provider:        "mercadopago",
		ProviderEventID: "evt-6",
		PayloadJSON:     `{"user_id":7,"plan":"premium","status":"success"}`,
		SignatureValid:  true,
	})
	require.NoError(t, err)

	userID, plan, err := svc.EventSubject(event.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
	assert.Equal(t, string(entitlements.TierPremium), plan)

	_, _, err = svc.EventSubject(event.ID + 100)
	assert.Error(t, err)
}

func TestEventSubjectRejectsPayloadWithoutUser(t *testing.T) {
	svc, _, _ := newWebhookFixture()
	ctx := context.Background()

	_, event, err := svc.Record(ctx, WebhookEventInput{
		Provider:        "mercadopago",
		ProviderEventID: "evt-7",
		PayloadJSON:     `{"plan":"premium","status":"success"}`,
		SignatureValid:  true,
	})
	require.NoError(t, err)

	_, _, err = svc.EventSubject(event.ID)
	assert.Error(t, err)
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"user_id":7}`)
	mac := hmac.New(sha256.New, []byte("hook-secret"))
	mac.Write(payload)
	sig := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifyWebhookSignature(payload, sig, "hook-secret"))
	assert.False(t, VerifyWebhookSignature(payload, sig, "other-secret"))
	assert.False(t, VerifyWebhookSignature([]byte("tampered"), sig, "hook-secret"))
	assert.False(t, VerifyWebhookSignature(payload, "", "hook-secret"))
	assert.False(t, VerifyWebhookSignature(payload, sig, ""))
	assert.False(t, VerifyWebhookSignature(payload, "not-hex", "hook-secret"))
}
