package idempotency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratorEventID(t *testing.T) {
	g := NewGenerator()
	assert.Equal(t, "subscription-cancelled-sub_123", g.EventID(ScopeSubscriptionCancelled, "sub_123"))
}

func TestGeneratorKeyIsDeterministic(t *testing.T) {
	g := NewGenerator()

	a := g.GenerateKey(ScopeMeterEvent, map[string]interface{}{"identifier": "msg-1", "timestamp": int64(100)})
	b := g.GenerateKey(ScopeMeterEvent, map[string]interface{}{"timestamp": int64(100), "identifier": "msg-1"})

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, string(ScopeMeterEvent)+"-"))
	assert.NotEqual(t, a, g.GenerateKey(ScopeMeterEvent, map[string]interface{}{"identifier": "msg-2", "timestamp": int64(100)}))
}

func TestMeterEventKey(t *testing.T) {
	g := NewGenerator()

	assert.Equal(t, g.MeterEventKey("msg-1", 100), g.MeterEventKey("msg-1", 100))
	assert.NotEqual(t, g.MeterEventKey("msg-1", 100), g.MeterEventKey("msg-1", 101))
	assert.NotEqual(t, g.MeterEventKey("msg-1", 100), g.MeterEventKey("msg-2", 100))
}
