package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verbumapp/verbum/internal/pkg/entitlements"
	"github.com/verbumapp/verbum/internal/pkg/env"
)

const defaultMercadoPagoBaseURL = "https://api.mercadopago.com"

// PlanPrice returns the monthly price in BRL for a paid tier.
func PlanPrice(plan entitlements.Tier) (float64, string) {
	switch plan {
	case entitlements.TierPremium:
		return 15, "Assinatura Premium"
	case entitlements.TierBasic:
		return 5, "Assinatura Básica"
	default:
		return 0, ""
	}
}

// MercadoPagoClient talks to the external checkout provider. The provider is
// only trusted for the redirect; entitlement is granted server-side after
// confirmation.
type MercadoPagoClient struct {
	AccessToken string
	BaseURL     string

	HTTPClient *http.Client
}

func NewMercadoPagoClientFromEnv() *MercadoPagoClient {
	return &MercadoPagoClient{
		AccessToken: strings.TrimSpace(env.GetEnv("MERCADO_PAGO_ACCESS_TOKEN", "")),
		BaseURL:     strings.TrimRight(env.GetEnv("MERCADO_PAGO_BASE_URL", defaultMercadoPagoBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type preferenceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type preferenceBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceRequest struct {
	Items             []preferenceItem   `json:"items"`
	BackURLs          preferenceBackURLs `json:"back_urls"`
	AutoReturn        string             `json:"auto_return"`
	ExternalReference string             `json:"external_reference"`
	Metadata          map[string]string  `json:"metadata"`
}

// Preference is the provider's answer to a checkout initiation. InitPoint is
// the URL the browser is redirected to.
type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// CreatePreference registers a checkout preference with the provider and
// returns the redirect target. The back URLs echo status, plan, user and the
// signed state token so the callback can be tied to this session.
func (c *MercadoPagoClient) CreatePreference(ctx context.Context, sess Session) (*Preference, error) {
	if strings.TrimSpace(c.AccessToken) == "" {
		return nil, errors.New("MERCADO_PAGO_ACCESS_TOKEN is not configured")
	}
	price, title := PlanPrice(sess.Plan)
	if price == 0 {
		return nil, fmt.Errorf("plan %q is not purchasable", sess.Plan)
	}

	reqBody := preferenceRequest{
		Items: []preferenceItem{
			{
				ID:         fmt.Sprintf("verbum-%s-subscription", sess.Plan),
				Title:      title,
				Quantity:   1,
				UnitPrice:  price,
				CurrencyID: "BRL",
			},
		},
		BackURLs: preferenceBackURLs{
			Success: backURL(sess, "success"),
			Failure: backURL(sess, "failure"),
			Pending: backURL(sess, "pending"),
		},
		AutoReturn:        "approved",
		ExternalReference: strconv.FormatUint(uint64(sess.UserID), 10),
		Metadata: map[string]string{
			"user_id":           strconv.FormatUint(uint64(sess.UserID), 10),
			"subscription_plan": string(sess.Plan),
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/checkout/preferences", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("preference creation failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out Preference
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.InitPoint) == "" {
		return nil, errors.New("preference response missing init_point")
	}
	return &out, nil
}

func backURL(sess Session, status string) string {
	q := url.Values{}
	q.Set("status", status)
	q.Set("plan", string(sess.Plan))
	q.Set("user", strconv.FormatUint(uint64(sess.UserID), 10))
	q.Set("token", sess.Token)
	return sess.ReturnURL + "?" + q.Encode()
}
