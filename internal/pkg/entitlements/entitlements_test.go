package entitlements

import (
	"testing"
	"time"
)

func TestNormalizeTier(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
	}{
		{in: "free", want: TierFree},
		{in: "basic", want: TierBasic},
		{in: "premium", want: TierPremium},
		{in: " PREMIUM ", want: TierPremium},
		{in: "gold", want: TierFree},
		{in: "", want: TierFree},
	}

	for _, tt := range tests {
		if got := NormalizeTier(tt.in); got != tt.want {
			t.Fatalf("NormalizeTier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTierRankOrdering(t *testing.T) {
	if TierRank(TierFree) >= TierRank(TierBasic) {
		t.Fatalf("expected basic to outrank free")
	}
	if TierRank(TierBasic) >= TierRank(TierPremium) {
		t.Fatalf("expected premium to outrank basic")
	}
}

func TestCanAccessTierOrder(t *testing.T) {
	tiers := []Tier{TierFree, TierBasic, TierPremium}
	for i, required := range tiers {
		for j, held := range tiers {
			ent := Entitlement{Tier: held, Active: held != TierFree}
			got := CanAccess(ent, required, true)
			want := j >= i || required == TierFree
			if required != TierFree && held == TierFree {
				want = false
			}
			if got != want {
				t.Fatalf("CanAccess(held=%s, required=%s) = %v, want %v", held, required, got, want)
			}
		}
	}
}

func TestCanAccessFreeIsAlwaysOpen(t *testing.T) {
	if !CanAccess(Free(), TierFree, false) {
		t.Fatalf("free features must be open to anonymous callers")
	}
	if !CanAccess(Free(), TierFree, true) {
		t.Fatalf("free features must be open to logged-in free users")
	}
}

func TestCanAccessDeniesAnonymous(t *testing.T) {
	// A stale cached active entitlement must not help an anonymous caller.
	exp := time.Now().Add(24 * time.Hour)
	ent := Entitlement{Tier: TierPremium, Active: true, ExpiresAt: &exp}

	if CanAccess(ent, TierBasic, false) {
		t.Fatalf("anonymous caller must be denied basic features")
	}
	if CanAccess(ent, TierPremium, false) {
		t.Fatalf("anonymous caller must be denied premium features")
	}
}

func TestCanAccessRequiresActive(t *testing.T) {
	ent := Entitlement{Tier: TierPremium, Active: false}
	if CanAccess(ent, TierBasic, true) {
		t.Fatalf("inactive entitlement must not grant paid access")
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if !(Entitlement{Tier: TierBasic, Active: true, ExpiresAt: &past}).Expired(now) {
		t.Fatalf("past expiry must be expired")
	}
	if (Entitlement{Tier: TierBasic, Active: true, ExpiresAt: &future}).Expired(now) {
		t.Fatalf("future expiry must not be expired")
	}
	if Free().Expired(now) {
		t.Fatalf("entitlement without expiry must not expire")
	}
}
