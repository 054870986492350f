package gateway

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize_OriginFailureConsumesNoQuota(t *testing.T) {
	g := New(Config{
		Strict:         true,
		AllowedOrigins: []string{"https://example.com"},
		Limit:          1,
		Window:         time.Minute,
	})

	// Hammer the gateway from a forbidden origin.
	for i := 0; i < 10; i++ {
		decision := g.Authorize("https://evil.example", "1.2.3.4")
		assert.False(t, decision.Allowed)
		assert.Equal(t, http.StatusForbidden, decision.Status)
	}

	// The same client's quota is untouched.
	decision := g.Authorize("https://example.com", "1.2.3.4")
	assert.True(t, decision.Allowed)
}

func TestAuthorize_RateLimitAfterOriginPasses(t *testing.T) {
	g := New(Config{Limit: 1, Window: time.Minute})

	first := g.Authorize("", "1.2.3.4")
	assert.True(t, first.Allowed)

	second := g.Authorize("", "1.2.3.4")
	assert.False(t, second.Allowed)
	assert.Equal(t, http.StatusTooManyRequests, second.Status)
	assert.True(t, second.OriginAllowed)
	assert.GreaterOrEqual(t, second.RetryAfterSeconds, 1)
	assert.LessOrEqual(t, second.RetryAfterSeconds, 60)
}

func TestAuthorize_IndependentGatewaysDoNotStarveEachOther(t *testing.T) {
	storyGate := New(Config{Limit: 1, Window: time.Minute})
	audioGate := New(Config{Limit: 2, Window: time.Minute})

	assert.True(t, storyGate.Authorize("", "key").Allowed)
	assert.False(t, storyGate.Authorize("", "key").Allowed)

	// The audio gateway keeps its own ledger for the same client.
	assert.True(t, audioGate.Authorize("", "key").Allowed)
	assert.True(t, audioGate.Authorize("", "key").Allowed)
	assert.False(t, audioGate.Authorize("", "key").Allowed)
}
