package vtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentEmptyTracker(t *testing.T) {
	tr := NewTracker()
	_, ok := tr.Current()
	assert.False(t, ok)
}

func TestPingAndExpiry(t *testing.T) {
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	tr := NewTracker()
	tr.now = func() time.Time { return now }

	tr.Ping("Midnight Vale")
	m, ok := tr.Current()
	assert.True(t, ok)
	assert.Equal(t, "Midnight Vale", m.WorldName)
	assert.Equal(t, now, m.LastPing)

	now = now.Add(59 * time.Minute)
	_, ok = tr.Current()
	assert.True(t, ok, "still inside the expiry window")

	now = now.Add(2 * time.Minute)
	_, ok = tr.Current()
	assert.False(t, ok, "pings expire after an hour")

	// A fresh ping revives the marker. Last write wins.
	tr.Ping("Sunken City")
	m, ok = tr.Current()
	assert.True(t, ok)
	assert.Equal(t, "Sunken City", m.WorldName)
}
