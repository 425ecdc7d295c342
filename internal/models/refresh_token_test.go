package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenUsable(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	token := &RefreshToken{ExpiresAt: now.Add(time.Hour)}

	assert.True(t, token.Usable(now))
	assert.False(t, token.Usable(now.Add(time.Hour)), "expiry instant is already spent")

	token.Revoked = true
	assert.False(t, token.Usable(now))

	var missing *RefreshToken
	assert.False(t, missing.Usable(now))
}

func TestRefreshTokenHidesValue(t *testing.T) {
	raw, err := json.Marshal(RefreshToken{ID: "rt-1", Token: "secret-value"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-value")
}
