// Package dedup drops messages seen again within a time window.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type Deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	max  int
	seen map[string]time.Time
	now  func() time.Time
}

// New returns a Deduper remembering at most max keys for ttl each.
// Non-positive values select 10 minutes and 10000 keys.
func New(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if max <= 0 {
		max = 10000
	}
	return &Deduper{ttl: ttl, max: max, seen: make(map[string]time.Time, max), now: time.Now}
}

// ShouldProcess reports whether id has not been seen within the window and
// records it. Empty ids are always processed.
func (d *Deduper) ShouldProcess(id string) bool {
	if id == "" {
		return true
	}
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	if exp, ok := d.seen[id]; ok && now.Before(exp) {
		return false
	}
	d.seen[id] = now.Add(d.ttl)
	if len(d.seen) > d.max {
		d.evict(now)
	}
	return true
}

// ShouldProcessPayload keys on the sha256 of the raw payload.
func (d *Deduper) ShouldProcessPayload(payload []byte) bool {
	return d.ShouldProcess(payloadKey(payload))
}

// Forget drops id so its next delivery is processed again.
func (d *Deduper) Forget(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
}

// ForgetPayload is Forget keyed like ShouldProcessPayload.
func (d *Deduper) ForgetPayload(payload []byte) {
	d.Forget(payloadKey(payload))
}

func payloadKey(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Len is the number of remembered keys, expired ones included.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

func (d *Deduper) evict(now time.Time) {
	for k, exp := range d.seen {
		if !now.Before(exp) {
			delete(d.seen, k)
		}
	}
	// Still full of live keys: drop the ones expiring soonest.
	for len(d.seen) > d.max {
		var oldest string
		var at time.Time
		for k, exp := range d.seen {
			if oldest == "" || exp.Before(at) {
				oldest, at = k, exp
			}
		}
		delete(d.seen, oldest)
	}
}
