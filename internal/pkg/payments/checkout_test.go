package payments

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
	"github.com/verbumapp/verbum/internal/pkg/entitlements"
	"github.com/verbumapp/verbum/internal/pkg/subscription"
)

type memSessionStore struct {
	mu    sync.Mutex
	items map[string]Session
	fail  bool
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{items: make(map[string]Session)}
}

func (s *memSessionStore) Put(sess Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("store down")
	}
	s.items[sess.ID] = sess
	return nil
}

func (s *memSessionStore) Take(id string) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return Session{}, false, errors.New("store down")
	}
	sess, ok := s.items[id]
	if ok {
		delete(s.items, id)
	}
	return sess, ok, nil
}

type fakeProvider struct {
	lastSession Session
	err         error
	calls       int
}

func (p *fakeProvider) CreatePreference(ctx context.Context, sess Session) (*Preference, error) {
	p.calls++
	p.lastSession = sess
	if p.err != nil {
		return nil, p.err
	}
	return &Preference{ID: "pref-1", InitPoint: "https://pay.example/start/pref-1"}, nil
}

type memSubRepo struct {
	mu   sync.Mutex
	subs map[uint]*models.Subscription
}

func newMemSubRepo() *memSubRepo {
	return &memSubRepo{subs: make(map[uint]*models.Subscription)}
}

func (r *memSubRepo) GetByUserID(userID uint) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *memSubRepo) Upsert(sub *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *sub
	r.subs[sub.UserID] = &cp
	return nil
}

func newTestHandler() (*Handler, *fakeProvider, *memSessionStore, *subscription.Store) {
	provider := &fakeProvider{}
	sessions := newMemSessionStore()
	store := subscription.NewStore(newMemSubRepo())
	h := NewHandler(provider, sessions, store, "test-secret")
	return h, provider, sessions, store
}

func callbackParams(sess Session, status string) url.Values {
	q := url.Values{}
	q.Set("status", status)
	q.Set("plan", string(sess.Plan))
	q.Set("user", strconv.FormatUint(uint64(sess.UserID), 10))
	q.Set("token", sess.Token)
	return q
}

func TestInitiateRejectsAnonymous(t *testing.T) {
	h, provider, sessions, _ := newTestHandler()

	_, err := h.Initiate(context.Background(), 0, entitlements.TierBasic, "https://app.example/planos")
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Zero(t, provider.calls, "no external call before identity check")
	assert.Empty(t, sessions.items, "no session may be created")
}

func TestInitiateRejectsFreePlan(t *testing.T) {
	h, provider, _, _ := newTestHandler()

	_, err := h.Initiate(context.Background(), 7, entitlements.TierFree, "https://app.example/planos")
	assert.ErrorIs(t, err, ErrInvalidPlan)
	assert.Zero(t, provider.calls)
}

func TestInitiateProducesRedirect(t *testing.T) {
	h, provider, sessions, _ := newTestHandler()

	redirect, err := h.Initiate(context.Background(), 7, entitlements.TierPremium, "https://app.example/planos")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/start/pref-1", redirect)

	require.Len(t, sessions.items, 1)
	assert.Equal(t, uint(7), provider.lastSession.UserID)
	assert.Equal(t, entitlements.TierPremium, provider.lastSession.Plan)
	assert.NotEmpty(t, provider.lastSession.Token)
}

func TestResolveSuccessActivates(t *testing.T) {
	h, provider, _, store := newTestHandler()
	ctx := context.Background()

	_, err := h.Initiate(ctx, 7, entitlements.TierBasic, "https://app.example/planos")
	require.NoError(t, err)

	out := h.Resolve(ctx, callbackParams(provider.lastSession, "success"))
	assert.Equal(t, CallbackActivated, out.State)
	assert.True(t, out.Entitlement.Active)
	assert.Equal(t, entitlements.TierBasic, out.Entitlement.Tier)

	ent, err := store.Reconcile(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ent.Active)
}

func TestResolveSuccessIsConsumedOnce(t *testing.T) {
	h, provider, _, _ := newTestHandler()
	ctx := context.Background()

	_, err := h.Initiate(ctx, 7, entitlements.TierBasic, "https://app.example/planos")
	require.NoError(t, err)

	first := h.Resolve(ctx, callbackParams(provider.lastSession, "success"))
	require.Equal(t, CallbackActivated, first.State)
	firstExpiry := first.Entitlement.ExpiresAt

	// A replayed callback finds no pending session and must not extend expiry.
	second := h.Resolve(ctx, callbackParams(provider.lastSession, "success"))
	assert.Equal(t, CallbackConfirmFailed, second.State)
	assert.Nil(t, second.Entitlement.ExpiresAt)
	_ = firstExpiry
}

func TestResolvePendingLeavesEntitlementUntouched(t *testing.T) {
	h, provider, _, store := newTestHandler()
	ctx := context.Background()

	_, err := h.Initiate(ctx, 7, entitlements.TierPremium, "https://app.example/planos")
	require.NoError(t, err)

	out := h.Resolve(ctx, callbackParams(provider.lastSession, "pending"))
	assert.Equal(t, CallbackPending, out.State)

	ent, err := store.Reconcile(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ent.Active)
	assert.Equal(t, entitlements.TierFree, ent.Tier)
}

func TestResolveFailureDiscardsSession(t *testing.T) {
	h, provider, sessions, store := newTestHandler()
	ctx := context.Background()

	_, err := h.Initiate(ctx, 7, entitlements.TierBasic, "https://app.example/planos")
	require.NoError(t, err)

	out := h.Resolve(ctx, callbackParams(provider.lastSession, "failure"))
	assert.Equal(t, CallbackFailed, out.State)
	assert.Empty(t, sessions.items)

	ent, err := store.Reconcile(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ent.Active)
}

func TestResolveMalformedStatus(t *testing.T) {
	h, provider, _, store := newTestHandler()
	ctx := context.Background()

	_, err := h.Initiate(ctx, 7, entitlements.TierBasic, "https://app.example/planos")
	require.NoError(t, err)

	q := callbackParams(provider.lastSession, "definitely-paid")
	out := h.Resolve(ctx, q)
	assert.Equal(t, CallbackMalformed, out.State)

	ent, err := store.Reconcile(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ent.Active)
}

func TestResolveForgedTokenDoesNotGrant(t *testing.T) {
	h, provider, _, store := newTestHandler()
	ctx := context.Background()

	_, err := h.Initiate(ctx, 7, entitlements.TierBasic, "https://app.example/planos")
	require.NoError(t, err)

	q := callbackParams(provider.lastSession, "success")
	q.Set("token", "forged.token")
	out := h.Resolve(ctx, q)
	assert.Equal(t, CallbackMalformed, out.State)

	// An attacker can also lie about plan or user; the token binds both.
	q = callbackParams(provider.lastSession, "success")
	q.Set("plan", "premium")
	out = h.Resolve(ctx, q)
	assert.Equal(t, CallbackMalformed, out.State)

	ent, err := store.Reconcile(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ent.Active)
}

func TestResolveConfirmBackendDownDoesNotGrant(t *testing.T) {
	h, provider, sessions, store := newTestHandler()
	ctx := context.Background()

	_, err := h.Initiate(ctx, 7, entitlements.TierBasic, "https://app.example/planos")
	require.NoError(t, err)

	sessions.fail = true
	out := h.Resolve(ctx, callbackParams(provider.lastSession, "success"))
	assert.Equal(t, CallbackConfirmFailed, out.State)

	sessions.fail = false
	ent, err := store.Reconcile(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ent.Active, "network failure during confirmation must not grant")
}
