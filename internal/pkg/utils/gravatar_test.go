package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetGravatarURLNormalizesEmail(t *testing.T) {
	url := GetGravatarURL("  Maria@Example.COM ", 200)

	// MD5 of "maria@example.com"
	assert.Equal(t, "https://www.gravatar.com/avatar/0a9131be746da342343feeca7f64738c?s=200&d=mp", url)
	assert.Equal(t, url, GetGravatarURL("maria@example.com", 200))
}

func TestGetGravatarURLDefaultsSize(t *testing.T) {
	assert.Contains(t, GetGravatarURL("maria@example.com", 0), "s=200")
	assert.Contains(t, GetGravatarURL("maria@example.com", -1), "s=200")
	assert.Contains(t, GetGravatarURL("maria@example.com", 80), "s=80")
}
