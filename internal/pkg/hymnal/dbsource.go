package hymnal

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/verbumapp/verbum/app/models"
)

// DBSource serves the hymnal from the database as the loader's source of
// truth, so cache and snapshot layers sit in front of MySQL the same way
// they sit in front of the Bible API.
type DBSource struct {
	db *gorm.DB
}

func NewDBSource(db *gorm.DB) *DBSource {
	return &DBSource{db: db}
}

// Fetch implements contentsource.Remote for the hymnal collection key.
func (s *DBSource) Fetch(ctx context.Context, key string) (string, error) {
	if key != collectionKey {
		return "", fmt.Errorf("unknown hymnal key %q", key)
	}

	var records []models.Hymn
	if err := s.db.WithContext(ctx).Order("number asc").Find(&records).Error; err != nil {
		return "", fmt.Errorf("failed to load hymns: %w", err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("hymnal table is empty")
	}

	hymns := make([]Hymn, 0, len(records))
	for _, r := range records {
		var verses []string
		if err := json.Unmarshal([]byte(r.StanzasJSON), &verses); err != nil {
			return "", fmt.Errorf("hymn %d has malformed stanzas: %w", r.Number, err)
		}
		hymns = append(hymns, Hymn{
			ID:     r.ID,
			Number: r.Number,
			Title:  r.Title,
			Verses: verses,
			Chorus: r.Chorus,
			Author: r.Author,
		})
	}

	payload, err := json.Marshal(hymns)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
