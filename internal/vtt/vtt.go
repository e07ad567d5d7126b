// Package vtt keeps the last ping received from a virtual tabletop server.
// It is a low-stakes integration marker: last write wins and entries
// expire after an hour.
package vtt

import (
	"sync"
	"time"
)

const defaultTTL = time.Hour

type Marker struct {
	WorldName string    `json:"world_name"`
	LastPing  time.Time `json:"last_ping"`
}

type Tracker struct {
	mu     sync.Mutex
	marker Marker
	ttl    time.Duration
	now    func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{ttl: defaultTTL, now: time.Now}
}

func (t *Tracker) Ping(worldName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.marker = Marker{WorldName: worldName, LastPing: t.now()}
}

// Current returns the marker, or false when no ping arrived within the
// expiry window.
func (t *Tracker) Current() (Marker, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.marker.LastPing.IsZero() || t.now().Sub(t.marker.LastPing) > t.ttl {
		return Marker{}, false
	}
	return t.marker, true
}
