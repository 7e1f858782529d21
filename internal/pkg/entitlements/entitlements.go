package entitlements

import (
	"strings"
	"time"
)

type Tier string

const (
	TierFree    Tier = "free"
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// Entitlement is the resolved access state derived from a user's subscription.
// Active is only meaningful together with Tier and ExpiresAt: an active
// entitlement always has a paid tier and an expiry that has not passed at the
// time it was last reconciled.
type Entitlement struct {
	Tier      Tier       `json:"tier"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Free returns the default entitlement of a user who never subscribed.
func Free() Entitlement {
	return Entitlement{Tier: TierFree, Active: false, ExpiresAt: nil}
}

// NormalizeTier maps arbitrary input to a known tier, defaulting to free.
func NormalizeTier(tier string) Tier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case string(TierBasic):
		return TierBasic
	case string(TierPremium):
		return TierPremium
	default:
		return TierFree
	}
}

// TierRank orders tiers: free < basic < premium.
func TierRank(tier Tier) int {
	switch NormalizeTier(string(tier)) {
	case TierPremium:
		return 2
	case TierBasic:
		return 1
	default:
		return 0
	}
}

// IsPaid reports whether the tier is purchasable.
func IsPaid(tier Tier) bool {
	return TierRank(tier) > 0
}

// Expired reports whether the entitlement's expiry has passed at the given time.
// Entitlements without an expiry never lapse on their own.
func (e Entitlement) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && e.ExpiresAt.Before(now)
}

// CanAccess answers "may this caller use a feature that requires the given
// tier". Free features are open to everyone. For anything above free the
// caller must be authenticated; a missing identity overrides any cached
// entitlement. Otherwise access follows the tier order with Active required.
func CanAccess(ent Entitlement, required Tier, loggedIn bool) bool {
	if TierRank(required) == 0 {
		return true
	}
	if !loggedIn {
		return false
	}
	return ent.Active && TierRank(ent.Tier) >= TierRank(required)
}
