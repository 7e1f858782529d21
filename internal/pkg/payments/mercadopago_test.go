package payments

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verbumapp/verbum/internal/pkg/entitlements"
)

func testSession() Session {
	return Session{
		ID:        "sess-1",
		Plan:      entitlements.TierBasic,
		UserID:    42,
		ReturnURL: "https://app.example/planos",
		Token:     "tok",
	}
}

func TestCreatePreference(t *testing.T) {
	var gotBody preferenceRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/checkout/preferences", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pref-9","init_point":"https://pay.example/go/pref-9"}`))
	}))
	defer srv.Close()

	client := &MercadoPagoClient{
		AccessToken: "token-123",
		BaseURL:     srv.URL,
		HTTPClient:  srv.Client(),
	}

	pref, err := client.CreatePreference(context.Background(), testSession())
	require.NoError(t, err)
	assert.Equal(t, "pref-9", pref.ID)
	assert.Equal(t, "https://pay.example/go/pref-9", pref.InitPoint)

	assert.Equal(t, "Bearer token-123", gotAuth)
	require.Len(t, gotBody.Items, 1)
	assert.Equal(t, 5.0, gotBody.Items[0].UnitPrice)
	assert.Equal(t, "BRL", gotBody.Items[0].CurrencyID)
	assert.Equal(t, "42", gotBody.ExternalReference)
	assert.Equal(t, "basic", gotBody.Metadata["subscription_plan"])

	// Back URLs echo status, plan, user and the state token.
	assert.Contains(t, gotBody.BackURLs.Success, "status=success")
	assert.Contains(t, gotBody.BackURLs.Success, "plan=basic")
	assert.Contains(t, gotBody.BackURLs.Success, "user=42")
	assert.Contains(t, gotBody.BackURLs.Success, "token=tok")
	assert.Contains(t, gotBody.BackURLs.Failure, "status=failure")
	assert.Contains(t, gotBody.BackURLs.Pending, "status=pending")
}

func TestCreatePreferenceRequiresToken(t *testing.T) {
	client := &MercadoPagoClient{BaseURL: "https://unused.example"}

	_, err := client.CreatePreference(context.Background(), testSession())
	assert.Error(t, err)
}

func TestCreatePreferenceProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid_token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := &MercadoPagoClient{AccessToken: "bad", BaseURL: srv.URL, HTTPClient: srv.Client()}

	_, err := client.CreatePreference(context.Background(), testSession())
	assert.ErrorContains(t, err, "status=401")
}

func TestCreatePreferenceMissingInitPoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"pref-9"}`))
	}))
	defer srv.Close()

	client := &MercadoPagoClient{AccessToken: "token", BaseURL: srv.URL, HTTPClient: srv.Client()}

	_, err := client.CreatePreference(context.Background(), testSession())
	assert.ErrorContains(t, err, "init_point")
}

func TestPlanPrice(t *testing.T) {
	basic, _ := PlanPrice(entitlements.TierBasic)
	premium, _ := PlanPrice(entitlements.TierPremium)
	free, _ := PlanPrice(entitlements.TierFree)

	assert.Equal(t, 5.0, basic)
	assert.Equal(t, 15.0, premium)
	assert.Zero(t, free)
}
