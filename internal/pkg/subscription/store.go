package subscription

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
	"github.com/verbumapp/verbum/internal/pkg/entitlements"
)

// Term is how long a paid subscription stays valid after activation.
const Term = 30 * 24 * time.Hour

var (
	// ErrInvalidTier is returned when a caller tries to subscribe to anything
	// other than a paid tier.
	ErrInvalidTier = errors.New("subscription: tier must be basic or premium")

	// ErrPersistUnavailable signals that the mutation was applied in memory
	// but could not be written through. The session state stays valid; callers
	// surface this as a warning, not a failure.
	ErrPersistUnavailable = errors.New("subscription: persistence unavailable")
)

// Store is the single source of truth for user entitlements. Mutations are
// serialized behind one mutex so a cancel can never interleave with a
// subscribe. The in-memory map stays authoritative for the session when the
// write-through fails.
type Store struct {
	mu   sync.Mutex
	repo Repository
	ents map[uint]entitlements.Entitlement
	now  func() time.Time
}

// NewStore creates a subscription store from an injected repository.
func NewStore(repo Repository) *Store {
	return &Store{
		repo: repo,
		ents: make(map[uint]entitlements.Entitlement),
		now:  time.Now,
	}
}

// NewStoreFromDB creates a subscription store from a GORM DB handle.
func NewStoreFromDB(db *gorm.DB) *Store {
	return NewStore(NewRepository(db))
}

// Reconcile loads the persisted entitlement for a user and lazily heals
// expired state: an expiry in the past resets the record to free/inactive and
// persists the reset. Reconciliation is purely local-clock based and safe to
// call on every request.
func (s *Store) Reconcile(ctx context.Context, userID uint) (entitlements.Entitlement, error) {
	_ = ctx
	if userID == 0 {
		return entitlements.Free(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.repo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ent := entitlements.Free()
			s.ents[userID] = ent
			return ent, nil
		}
		// Load failure: the session copy, if any, stays authoritative.
		if ent, ok := s.ents[userID]; ok {
			return ent, ErrPersistUnavailable
		}
		return entitlements.Free(), ErrPersistUnavailable
	}

	ent := entitlements.Entitlement{
		Tier:      entitlements.NormalizeTier(sub.Tier),
		Active:    sub.Active,
		ExpiresAt: sub.ExpiresAt,
	}

	if ent.Expired(s.now()) {
		ent = entitlements.Free()
		sub.Tier = string(entitlements.TierFree)
		sub.Active = false
		sub.ExpiresAt = nil
		sub.Status = models.SubscriptionStatusExpired
		if err := s.repo.Upsert(sub); err != nil {
			log.Warn().Err(err).Uint("user_id", userID).Msg("could not persist expiry reset")
			s.ents[userID] = ent
			return ent, ErrPersistUnavailable
		}
	}

	s.ents[userID] = ent
	return ent, nil
}

// Subscribe activates a paid tier for the user with an expiry of now + Term.
// The record is written through before the result is observable by the
// caller; a failed write keeps the in-memory state valid for the session and
// is reported via ErrPersistUnavailable.
func (s *Store) Subscribe(ctx context.Context, userID uint, tier entitlements.Tier) (entitlements.Entitlement, error) {
	_ = ctx
	if !entitlements.IsPaid(tier) {
		return entitlements.Free(), ErrInvalidTier
	}
	if userID == 0 {
		return entitlements.Free(), errors.New("subscription: user_id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(Term)
	ent := entitlements.Entitlement{
		Tier:      entitlements.NormalizeTier(string(tier)),
		Active:    true,
		ExpiresAt: &expiresAt,
	}
	s.ents[userID] = ent

	sub := &models.Subscription{
		UserID:    userID,
		Tier:      string(ent.Tier),
		Active:    true,
		ExpiresAt: &expiresAt,
		Status:    models.SubscriptionStatusActive,
	}
	if err := s.repo.Upsert(sub); err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("could not persist subscription")
		return ent, ErrPersistUnavailable
	}
	return ent, nil
}

// Cancel resets the user's entitlement to free and persists the reset.
func (s *Store) Cancel(ctx context.Context, userID uint) (entitlements.Entitlement, error) {
	_ = ctx
	if userID == 0 {
		return entitlements.Free(), errors.New("subscription: user_id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ent := entitlements.Free()
	s.ents[userID] = ent

	sub := &models.Subscription{
		UserID:    userID,
		Tier:      string(entitlements.TierFree),
		Active:    false,
		ExpiresAt: nil,
		Status:    models.SubscriptionStatusCanceled,
	}
	if err := s.repo.Upsert(sub); err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("could not persist cancellation")
		return ent, ErrPersistUnavailable
	}
	return ent, nil
}
