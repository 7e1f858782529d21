package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/verbumapp/verbum/internal/pkg/cache"
	"github.com/verbumapp/verbum/internal/pkg/entitlements"
	"github.com/verbumapp/verbum/internal/pkg/security"
	"github.com/verbumapp/verbum/internal/pkg/subscription"
)

// SessionTTL bounds how long an in-flight checkout stays resumable. A browser
// closed mid-flow loses the session and the flow must be restarted.
const SessionTTL = 2 * time.Hour

var (
	// ErrAuthRequired is returned when an anonymous caller tries to start a
	// checkout. Rejected before any external redirect is produced.
	ErrAuthRequired = errors.New("checkout: authentication required")

	// ErrInvalidPlan is returned for plans outside {basic, premium}.
	ErrInvalidPlan = errors.New("checkout: plan must be basic or premium")
)

// Session is one in-flight external payment attempt. It lives only between
// initiation and callback resolution.
type Session struct {
	ID        string            `json:"id"`
	Plan      entitlements.Tier `json:"plan"`
	UserID    uint              `json:"user_id"`
	ReturnURL string            `json:"return_url"`
	Token     string            `json:"token"`
	CreatedAt time.Time         `json:"created_at"`
}

// SessionStore holds pending checkout sessions. Take consumes: a session can
// be resolved at most once.
type SessionStore interface {
	Put(sess Session, ttl time.Duration) error
	Take(id string) (Session, bool, error)
}

type redisSessionStore struct{}

// NewRedisSessionStore stores pending sessions in the shared cache with a TTL.
func NewRedisSessionStore() SessionStore {
	return &redisSessionStore{}
}

func sessionKey(id string) string {
	return "checkout:session:" + id
}

func (s *redisSessionStore) Put(sess Session, ttl time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return cache.Set(sessionKey(sess.ID), string(payload), ttl)
}

func (s *redisSessionStore) Take(id string) (Session, bool, error) {
	raw, err := cache.Get(sessionKey(id))
	if err != nil {
		if cache.IsMiss(err) {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}
	_ = cache.Delete(sessionKey(id))

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

// Provider creates external checkout preferences.
type Provider interface {
	CreatePreference(ctx context.Context, sess Session) (*Preference, error)
}

// CallbackState classifies the terminal outcome of one callback resolution.
type CallbackState string

const (
	CallbackActivated     CallbackState = "activated"
	CallbackFailed        CallbackState = "failed"
	CallbackPending       CallbackState = "pending"
	CallbackMalformed     CallbackState = "malformed"
	CallbackConfirmFailed CallbackState = "confirm_failed"
)

// Outcome is what one callback resolution produced. PersistWarning is set
// when entitlement was granted but the write-through failed.
type Outcome struct {
	State          CallbackState
	Plan           entitlements.Tier
	UserID         uint
	Entitlement    entitlements.Entitlement
	PersistWarning bool
}

// Handler drives the checkout round-trip: Idle -> Redirecting (Initiate) ->
// Reconciling (Resolve) -> Idle. Resolution always runs to a terminal outcome.
type Handler struct {
	provider Provider
	sessions SessionStore
	store    *subscription.Store
	secret   string
}

func NewHandler(provider Provider, sessions SessionStore, store *subscription.Store, secret string) *Handler {
	return &Handler{
		provider: provider,
		sessions: sessions,
		store:    store,
		secret:   secret,
	}
}

// Initiate validates the caller and plan, registers an ephemeral session and
// asks the provider for a redirect URL. Anonymous callers are rejected before
// any session is created or any external call is made.
func (h *Handler) Initiate(ctx context.Context, userID uint, plan entitlements.Tier, returnURL string) (string, error) {
	if userID == 0 {
		return "", ErrAuthRequired
	}
	if !entitlements.IsPaid(plan) {
		return "", ErrInvalidPlan
	}
	if strings.TrimSpace(returnURL) == "" {
		return "", errors.New("checkout: return_url is required")
	}

	sessionID := uuid.NewString()
	token, err := security.GenerateCheckoutToken(userID, string(plan), sessionID, SessionTTL, h.secret)
	if err != nil {
		return "", err
	}

	sess := Session{
		ID:        sessionID,
		Plan:      plan,
		UserID:    userID,
		ReturnURL: returnURL,
		Token:     token,
		CreatedAt: time.Now(),
	}
	if err := h.sessions.Put(sess, SessionTTL); err != nil {
		return "", err
	}

	pref, err := h.provider.CreatePreference(ctx, sess)
	if err != nil {
		return "", err
	}
	return pref.InitPoint, nil
}

// Resolve processes the provider's return callback exactly once. The query
// parameters are untrusted: a success status only grants entitlement after
// the signed state token checks out and the pending session is consumed.
func (h *Handler) Resolve(ctx context.Context, q url.Values) Outcome {
	status := strings.ToLower(strings.TrimSpace(q.Get("status")))
	plan := entitlements.NormalizeTier(q.Get("plan"))
	userID := parseUserParam(q.Get("user"))

	switch status {
	case "success", "failure", "pending":
	default:
		log.Warn().Str("status", status).Msg("discarding malformed checkout callback")
		return Outcome{State: CallbackMalformed}
	}

	if status == "failure" {
		// Discard the session if the token still identifies one.
		if claims, err := security.VerifyCheckoutToken(q.Get("token"), h.secret); err == nil {
			_, _, _ = h.sessions.Take(claims.SessionID)
		}
		return Outcome{State: CallbackFailed, Plan: plan, UserID: userID}
	}

	claims, err := security.VerifyCheckoutToken(q.Get("token"), h.secret)
	if err != nil {
		log.Warn().Err(err).Msg("checkout callback carried an invalid state token")
		return Outcome{State: CallbackMalformed}
	}
	if claims.UserID != userID || entitlements.NormalizeTier(claims.Plan) != plan || !entitlements.IsPaid(plan) {
		log.Warn().Uint("user", userID).Str("plan", string(plan)).Msg("checkout callback does not match its state token")
		return Outcome{State: CallbackMalformed}
	}

	sess, ok, err := h.sessions.Take(claims.SessionID)
	if err != nil {
		// Could not confirm: never grant from the redirect alone.
		log.Error().Err(err).Msg("checkout session lookup failed during confirmation")
		return Outcome{State: CallbackConfirmFailed, Plan: plan, UserID: userID}
	}
	if !ok {
		// Already consumed or timed out: reprocessing a stale callback is a no-op.
		log.Warn().Str("session", claims.SessionID).Msg("no pending checkout session for callback")
		return Outcome{State: CallbackConfirmFailed, Plan: plan, UserID: userID}
	}
	if sess.UserID != userID || sess.Plan != plan {
		log.Warn().Str("session", sess.ID).Msg("checkout session does not match callback parameters")
		return Outcome{State: CallbackMalformed}
	}

	if status == "pending" {
		// Non-terminal: entitlement stays untouched. The provider webhook
		// finishes the activation out of band.
		return Outcome{State: CallbackPending, Plan: plan, UserID: userID}
	}

	ent, err := h.store.Subscribe(ctx, userID, plan)
	if err != nil && !errors.Is(err, subscription.ErrPersistUnavailable) {
		return Outcome{State: CallbackConfirmFailed, Plan: plan, UserID: userID}
	}
	return Outcome{
		State:          CallbackActivated,
		Plan:           plan,
		UserID:         userID,
		Entitlement:    ent,
		PersistWarning: errors.Is(err, subscription.ErrPersistUnavailable),
	}
}

func parseUserParam(raw string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
