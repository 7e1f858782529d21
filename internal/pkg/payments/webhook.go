package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verbumapp/verbum/app/models"
	"github.com/verbumapp/verbum/internal/pkg/entitlements"
	"github.com/verbumapp/verbum/internal/pkg/subscription"
)

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// EventRepository provides DB operations for webhook event bookkeeping.
type EventRepository interface {
	CreateIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	GetByID(id uint) (*models.PaymentWebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
	RecordError(id uint, processingError string) error
	ListUnprocessedIDs(limit int) ([]uint, error)
}

type gormEventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &gormEventRepository{db: db}
}

func (r *gormEventRepository) CreateIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}
	created := tx.RowsAffected > 0

	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return created, nil, err
	}
	return created, &stored, nil
}

func (r *gormEventRepository) GetByID(id uint) (*models.PaymentWebhookEvent, error) {
	var event models.PaymentWebhookEvent
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormEventRepository) MarkProcessed(id uint, processingError string) error {
	now := time.Now()
	return r.db.Model(&models.PaymentWebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed_at":     &now,
			"processing_error": processingError,
		}).Error
}

// RecordError stores the failure reason but leaves the event unprocessed so
// the retry worker picks it up again.
func (r *gormEventRepository) RecordError(id uint, processingError string) error {
	return r.db.Model(&models.PaymentWebhookEvent{}).
		Where("id = ?", id).
		Update("processing_error", processingError).Error
}

// ListUnprocessedIDs returns events that never completed processing,
// including activations that failed with a transient error.
func (r *gormEventRepository) ListUnprocessedIDs(limit int) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.PaymentWebhookEvent{}).
		Where("processed_at IS NULL").
		Order("id asc").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// webhookPayload is the provider notification body for subscription events.
type webhookPayload struct {
	UserID uint   `json:"user_id"`
	Plan   string `json:"plan"`
	Status string `json:"status"`
}

// ErrEventNotActionable marks webhook events that were recorded but carry no
// state change for us (pending, failed or unrelated notifications).
var ErrEventNotActionable = errors.New("payments: webhook event not actionable")

// WebhookService persists provider webhook events idempotently and applies
// actionable ones to the subscription store. It is the out-of-band activation
// path for checkouts that returned with a pending status.
type WebhookService struct {
	repo  EventRepository
	store *subscription.Store
}

func NewWebhookService(repo EventRepository, store *subscription.Store) *WebhookService {
	return &WebhookService{repo: repo, store: store}
}

// Record persists the event exactly once per (provider, event id). Events
// without a provider id are deduplicated by payload hash.
func (s *WebhookService) Record(ctx context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateIfNotExists(event)
}

// Process applies a recorded event to the subscription store and marks it
// processed. Only signed success events activate entitlement.
func (s *WebhookService) Process(ctx context.Context, eventID uint) error {
	event, err := s.repo.GetByID(eventID)
	if err != nil {
		return err
	}
	if event.ProcessedAt != nil {
		return nil
	}

	err = s.apply(ctx, event)
	if err != nil && !errors.Is(err, ErrEventNotActionable) {
		// Transient failure: keep the event unprocessed so the retry
		// worker re-enqueues it.
		if recErr := s.repo.RecordError(event.ID, err.Error()); recErr != nil {
			return recErr
		}
		return err
	}
	return s.repo.MarkProcessed(event.ID, "")
}

// EventSubject resolves the user and plan a recorded event refers to. The
// job queue uses it to notify the payer when an event permanently fails to
// process.
func (s *WebhookService) EventSubject(eventID uint) (uint, string, error) {
	event, err := s.repo.GetByID(eventID)
	if err != nil {
		return 0, "", err
	}
	var payload webhookPayload
	if err := json.Unmarshal([]byte(event.PayloadJSON), &payload); err != nil {
		return 0, "", fmt.Errorf("malformed webhook payload: %v", err)
	}
	if payload.UserID == 0 {
		return 0, "", errors.New("webhook payload without user_id")
	}
	return payload.UserID, string(entitlements.NormalizeTier(payload.Plan)), nil
}

func (s *WebhookService) apply(ctx context.Context, event *models.PaymentWebhookEvent) error {
	if !event.SignatureValid {
		return fmt.Errorf("refusing to apply unsigned event %d: %w", event.ID, ErrEventNotActionable)
	}

	var payload webhookPayload
	if err := json.Unmarshal([]byte(event.PayloadJSON), &payload); err != nil {
		return fmt.Errorf("malformed webhook payload: %v: %w", err, ErrEventNotActionable)
	}
	if payload.UserID == 0 {
		return fmt.Errorf("webhook payload without user_id: %w", ErrEventNotActionable)
	}

	switch strings.ToLower(strings.TrimSpace(payload.Status)) {
	case "success", "approved":
		tier := entitlements.NormalizeTier(payload.Plan)
		if !entitlements.IsPaid(tier) {
			return fmt.Errorf("webhook payload with non-paid plan %q: %w", payload.Plan, ErrEventNotActionable)
		}
		_, err := s.store.Subscribe(ctx, payload.UserID, tier)
		if errors.Is(err, subscription.ErrPersistUnavailable) {
			// The grant did not reach durable storage; keep the event
			// unprocessed-with-error so a retry can finish the activation.
			return fmt.Errorf("activation not persisted for user %d", payload.UserID)
		}
		return err
	default:
		return fmt.Errorf("status %q requires no action: %w", payload.Status, ErrEventNotActionable)
	}
}
