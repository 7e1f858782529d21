package hymnal

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/verbumapp/verbum/internal/pkg/contentsource"
)

// Hymn is the hymnal entry served to clients.
type Hymn struct {
	ID     uint     `json:"id"`
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Verses []string `json:"verses"`
	Chorus string   `json:"chorus,omitempty"`
	Author string   `json:"author,omitempty"`
}

// collectionKey addresses the whole hymnal in the loader; the collection is
// small enough to resolve as one payload, which keeps the offline snapshot a
// single blob.
const collectionKey = "all"

// Service serves the hymnal through the layered content loader.
type Service struct {
	loader *contentsource.Loader
}

func NewService(loader *contentsource.Loader) *Service {
	return &Service{loader: loader}
}

func (s *Service) RemoteDown() bool {
	return s.loader.RemoteDown()
}

// List returns every hymn in number order.
func (s *Service) List(ctx context.Context) ([]Hymn, contentsource.Origin, error) {
	result, err := s.loader.Load(ctx, collectionKey)
	if err != nil {
		return nil, "", err
	}

	var hymns []Hymn
	if err := json.Unmarshal([]byte(result.Payload), &hymns); err != nil {
		return nil, "", fmt.Errorf("malformed hymnal payload: %w", err)
	}
	return hymns, result.Origin, nil
}

// GetByNumber returns one hymn, or nil when the number is not in the hymnal.
func (s *Service) GetByNumber(ctx context.Context, number int) (*Hymn, contentsource.Origin, error) {
	hymns, origin, err := s.List(ctx)
	if err != nil {
		return nil, "", err
	}
	for i := range hymns {
		if hymns[i].Number == number {
			return &hymns[i], origin, nil
		}
	}
	return nil, origin, nil
}

// Search matches hymns by title substring or by number prefix, the way the
// hymnal's index page filters.
func (s *Service) Search(ctx context.Context, query string) ([]Hymn, contentsource.Origin, error) {
	hymns, origin, err := s.List(ctx)
	if err != nil {
		return nil, "", err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return hymns, origin, nil
	}

	var matches []Hymn
	for _, h := range hymns {
		if strings.Contains(strings.ToLower(h.Title), query) ||
			strings.Contains(strconv.Itoa(h.Number), query) {
			matches = append(matches, h)
		}
	}
	return matches, origin, nil
}
