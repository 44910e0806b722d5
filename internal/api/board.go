package api

import (
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/warehouse-core/internal/feed"
)

// Snapshot is the latest delivered set of one entity type.
type Snapshot struct {
	Records   any       `json:"records"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Board holds the latest snapshot per entity type.
//
// Only feed deliveries write to it, so a type is absent until its feed has
// delivered once and a failed poll never replaces a snapshot.
//
// Thread Safety: safe for concurrent use.
type Board struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
	onChange  func(entityType string, records any)
	now       func() time.Time
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{
		snapshots: make(map[string]Snapshot),
		now:       time.Now,
	}
}

// OnChange registers fn to run after every Set. It runs on the feed's
// goroutine and must not block.
func (b *Board) OnChange(fn func(entityType string, records any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

// Set replaces the snapshot of entityType.
func (b *Board) Set(entityType string, records any, count int) {
	b.mu.Lock()
	b.snapshots[entityType] = Snapshot{Records: records, Count: count, UpdatedAt: b.now()}
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn(entityType, records)
	}
}

// Get returns the snapshot of entityType and whether one was delivered.
func (b *Board) Get(entityType string) (Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap, ok := b.snapshots[entityType]
	return snap, ok
}

// Counts returns the record count per delivered type.
func (b *Board) Counts() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]int, len(b.snapshots))
	for t, snap := range b.snapshots {
		out[t] = snap.Count
	}
	return out
}

// Receiver returns a feed callback that stores deliveries on b.
func Receiver[T feed.Keyed](b *Board, entityType string) func([]T) {
	return func(records []T) {
		if records == nil {
			records = []T{}
		}
		b.Set(entityType, records, len(records))
	}
}

// Records returns the typed snapshot of entityType.
func Records[T any](b *Board, entityType string) ([]T, bool) {
	snap, ok := b.Get(entityType)
	if !ok {
		return nil, false
	}
	records, ok := snap.Records.([]T)
	return records, ok
}

// ChangedChannel is the WebSocket channel carrying entityType's snapshots.
func ChangedChannel(entityType string) string {
	return strings.ToLower(entityType) + ".changed"
}

// ReadingChannel carries live sensor readings relayed from MQTT.
const ReadingChannel = "sensor.reading"

// AlertRaisedChannel carries each newly raised alert once.
const AlertRaisedChannel = "alert.raised"
