package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The confirmation-failure flash has two jobs: warn that the charge may
// already have gone through, and point the user at a way to resolve it.
func TestConfirmFailedMessageWarnsAndOffersRetry(t *testing.T) {
	assert.Contains(t, confirmFailedMessage, "pode ter sido aprovado")
	assert.Contains(t, confirmFailedMessage, "Tente novamente")
	assert.Contains(t, confirmFailedMessage, "suporte")
}
