package bible

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/verbumapp/verbum/internal/pkg/env"
)

// APIRemote fetches chapters from the public bible-api.com service and
// normalizes the upstream shape into the canonical Chapter payload.
type APIRemote struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewAPIRemoteFromEnv() *APIRemote {
	return &APIRemote{
		BaseURL:    env.GetEnv("BIBLE_API_URL", "https://bible-api.com"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type apiVerse struct {
	BookID   string `json:"book_id"`
	BookName string `json:"book_name"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

type apiChapter struct {
	Reference string     `json:"reference"`
	Verses    []apiVerse `json:"verses"`
}

// Fetch implements contentsource.Remote. The key is bookID/chapter/translation.
func (r *APIRemote) Fetch(ctx context.Context, key string) (string, error) {
	bookID, chapter, translationID, ok := parseChapterKey(key)
	if !ok {
		return "", fmt.Errorf("invalid chapter key %q", key)
	}
	translation, ok := FindTranslation(translationID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTranslation, translationID)
	}

	endpoint := fmt.Sprintf("%s/%s?translation=%s",
		r.BaseURL,
		url.PathEscape(fmt.Sprintf("%s %d", bookID, chapter)),
		url.QueryEscape(translationID),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("bible api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bible api returned status %d", resp.StatusCode)
	}

	var upstream apiChapter
	if err := json.NewDecoder(resp.Body).Decode(&upstream); err != nil {
		return "", fmt.Errorf("failed to decode bible api response: %w", err)
	}
	if len(upstream.Verses) == 0 {
		return "", fmt.Errorf("bible api returned no verses for %s %d", bookID, chapter)
	}

	book, _ := FindBook(bookID)
	bookName := upstream.Verses[0].BookName
	if bookName == "" {
		bookName = book.Name
	}

	ch := Chapter{
		Reference:       upstream.Reference,
		BookID:          bookID,
		BookName:        bookName,
		Chapter:         chapter,
		TranslationID:   translation.ID,
		TranslationName: translation.Name,
	}
	for _, v := range upstream.Verses {
		ch.Verses = append(ch.Verses, Verse{
			BookID:   bookID,
			BookName: v.BookName,
			Chapter:  v.Chapter,
			Verse:    v.Verse,
			Text:     v.Text,
		})
	}

	payload, err := json.Marshal(ch)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
