package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBackoff(t *testing.T) {
	cfg := DefaultBackoffConfig()

	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 4*time.Second, cfg.CalculateBackoff(2))
	assert.Equal(t, time.Minute, cfg.CalculateBackoff(10), "backoff is capped at Max")
}

func TestMessagePayload(t *testing.T) {
	msg, err := NewMessage("msg-1", TypeUsageRecorded, "user-1", UsageRecordedMessage{
		EventID:     "evt-1",
		UserID:      "user-1",
		Model:       "deepseek/deepseek-r1-0528",
		TokensUsed:  120,
		RequestType: "chat",
	})
	require.NoError(t, err)
	msg.SetMetadata("source", "api-server")

	var decoded UsageRecordedMessage
	require.NoError(t, msg.UnmarshalPayload(&decoded))
	assert.Equal(t, "evt-1", decoded.EventID)
	assert.Equal(t, 120, decoded.TokensUsed)

	assert.Equal(t, "api-server", msg.GetMetadata("source"))
	assert.Empty(t, msg.GetMetadata("missing"))
}

func TestDLQStream(t *testing.T) {
	assert.Equal(t, "dlq:"+string(StreamUsageEvents), StreamUsageEvents.DLQStream())
}
