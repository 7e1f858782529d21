package controllers

import (
	"github.com/verbumapp/verbum/internal/pkg/bible"
	"github.com/verbumapp/verbum/internal/pkg/hymnal"
	"github.com/verbumapp/verbum/internal/pkg/payments"
	"github.com/verbumapp/verbum/internal/pkg/subscription"
)

// Shared service instances wired in at startup. Controllers are plain
// functions, so the services they depend on are injected here once.
var (
	bibleService      *bible.Service
	hymnalService     *hymnal.Service
	checkoutHandler   *payments.Handler
	webhookService    *payments.WebhookService
	subscriptionStore *subscription.Store
	webhookSecret     string
)

func SetBibleService(svc *bible.Service) {
	bibleService = svc
}

func SetHymnalService(svc *hymnal.Service) {
	hymnalService = svc
}

func SetCheckoutHandler(h *payments.Handler) {
	checkoutHandler = h
}

func SetWebhookService(svc *payments.WebhookService, secret string) {
	webhookService = svc
	webhookSecret = secret
}

func SetSubscriptionStore(store *subscription.Store) {
	subscriptionStore = store
}
