package mq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectionConfigNamesConnection(t *testing.T) {
	cfg := connectionConfig("portal-worker/forum.query.raised.activity.q")

	assert.Equal(t, "portal-worker/forum.query.raised.activity.q", cfg.Properties["connection_name"])
	assert.Equal(t, 10*time.Second, cfg.Heartbeat)
	assert.Contains(t, cfg.Properties, "product")
}
