package hymnal

import (
	"encoding/json"
	"fmt"
)

// sampleSize matches the Harpa Cristã hymnal.
const sampleSize = 640

// SampleHymns resolves the collection key to placeholder hymns so the
// hymnal index renders with correct numbering even fully offline.
func SampleHymns(key string) (string, bool) {
	if key != collectionKey {
		return "", false
	}

	hymns := make([]Hymn, sampleSize)
	for i := range hymns {
		n := i + 1
		hymns[i] = Hymn{
			ID:     uint(n),
			Number: n,
			Title:  fmt.Sprintf("Hino %d", n),
			Verses: []string{
				fmt.Sprintf("Exemplo de letra do hino %d.", n),
				fmt.Sprintf("Segunda linha do hino %d.", n),
				fmt.Sprintf("Terceira linha do hino %d.", n),
				fmt.Sprintf("Quarta linha do hino %d.", n),
			},
		}
	}

	payload, err := json.Marshal(hymns)
	if err != nil {
		return "", false
	}
	return string(payload), true
}
