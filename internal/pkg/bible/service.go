package bible

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/verbumapp/verbum/internal/pkg/contentsource"
	"github.com/verbumapp/verbum/internal/pkg/entitlements"
)

var (
	ErrUnknownBook        = errors.New("unknown bible book")
	ErrInvalidChapter     = errors.New("chapter out of range")
	ErrUnknownTranslation = errors.New("unknown bible translation")
)

// Verse is one verse of a chapter response.
type Verse struct {
	BookID   string `json:"book_id"`
	BookName string `json:"book_name"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

// Chapter is the canonical chapter payload served to clients and stored in
// every fallback layer.
type Chapter struct {
	Reference       string  `json:"reference"`
	Verses          []Verse `json:"verses"`
	TranslationID   string  `json:"translation_id"`
	TranslationName string  `json:"translation_name"`
	BookID          string  `json:"book_id"`
	BookName        string  `json:"book_name"`
	Chapter         int     `json:"chapter"`
}

// Denial explains why a paid translation was substituted with the free one.
type Denial struct {
	RequestedTranslation string            `json:"requested_translation"`
	RequiredTier         entitlements.Tier `json:"required_tier"`
}

// ChapterResult is a resolved chapter plus where it came from and, when the
// requested translation was gated, the substitution notice.
type ChapterResult struct {
	Chapter Chapter
	Origin  contentsource.Origin
	Denial  *Denial
}

// Service serves Bible chapters through the layered content loader.
type Service struct {
	loader *contentsource.Loader
}

func NewService(loader *contentsource.Loader) *Service {
	return &Service{loader: loader}
}

// RemoteDown reports whether the upstream Bible API has been retired for
// this process.
func (s *Service) RemoteDown() bool {
	return s.loader.RemoteDown()
}

// GetChapter resolves one chapter. The entitlement gate runs before any
// layer is consulted: when the caller cannot access the requested
// translation the free text is resolved instead, so gated content is never
// read from cache or remote on their behalf.
func (s *Service) GetChapter(ctx context.Context, ent entitlements.Entitlement, loggedIn bool, bookID string, chapter int, translationID string) (*ChapterResult, error) {
	book, ok := FindBook(bookID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBook, bookID)
	}
	if chapter < 1 || chapter > book.Chapters {
		return nil, fmt.Errorf("%w: %s has %d chapters", ErrInvalidChapter, book.Name, book.Chapters)
	}
	if translationID == "" {
		translationID = DefaultTranslationID
	}
	translation, ok := FindTranslation(translationID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTranslation, translationID)
	}

	var denial *Denial
	if !entitlements.CanAccess(ent, translation.RequiredTier, loggedIn) {
		denial = &Denial{
			RequestedTranslation: translation.ID,
			RequiredTier:         translation.RequiredTier,
		}
		translation, _ = FindTranslation(DefaultTranslationID)
	}

	result, err := s.loader.Load(ctx, chapterKey(book.ID, chapter, translation.ID))
	if err != nil {
		return nil, err
	}

	var ch Chapter
	if err := json.Unmarshal([]byte(result.Payload), &ch); err != nil {
		return nil, fmt.Errorf("malformed chapter payload for %s %d: %w", book.Name, chapter, err)
	}

	return &ChapterResult{Chapter: ch, Origin: result.Origin, Denial: denial}, nil
}
