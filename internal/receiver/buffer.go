// ABOUTME: Deadline-ordered playback buffer with session anchors
// ABOUTME: Maps sender timestamps to local play-out deadlines, bounded to 50
package receiver

import (
	"container/heap"
	"sync"

	"github.com/RishiIRL/austream-go/internal/timesync"
)

// bufferCapacity bounds the playback buffer; the earliest entry is evicted
// on overflow.
const bufferCapacity = 50

// entry is one scheduled frame.
type entry struct {
	deadline int64 // local monotonic nanos
	seq      uint32
	pcm      []byte
}

// PlaybackBuffer orders frames by play-out deadline. Deadlines derive from
// the session anchors: the sender timestamp of the first packet and the
// local time it was scheduled plus the pre-roll. Sender-side timestamp
// deltas drive the schedule; the NTP offset never enters the hot path.
type PlaybackBuffer struct {
	mu sync.Mutex

	heap entryHeap

	anchored           bool
	firstServerTS      int64
	playbackStartLocal int64

	bufferNs int64
	evicted  uint64
}

// NewPlaybackBuffer creates a buffer with the given pre-roll in ms.
func NewPlaybackBuffer(bufferMs int) *PlaybackBuffer {
	return &PlaybackBuffer{bufferNs: int64(bufferMs) * 1_000_000}
}

// Insert schedules a frame. The first frame after (re)anchoring fixes the
// session anchors; every later frame lands at a deadline offset by its
// sender-timestamp delta.
func (b *PlaybackBuffer) Insert(serverTS int64, seq uint32, pcm []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.anchored {
		b.anchored = true
		b.firstServerTS = serverTS
		b.playbackStartLocal = timesync.Nanos() + b.bufferNs
	}

	deadline := b.playbackStartLocal + (serverTS - b.firstServerTS)

	heap.Push(&b.heap, entry{deadline: deadline, seq: seq, pcm: pcm})

	if b.heap.Len() > bufferCapacity {
		heap.Pop(&b.heap)
		b.evicted++
	}
}

// Peek returns the earliest deadline without removing the entry.
func (b *PlaybackBuffer) Peek() (deadline int64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.heap.Len() == 0 {
		return 0, false
	}
	return b.heap.items[0].deadline, true
}

// Pop removes and returns the earliest entry.
func (b *PlaybackBuffer) Pop() (entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.heap.Len() == 0 {
		return entry{}, false
	}
	return heap.Pop(&b.heap).(entry), true
}

// Len returns the number of buffered frames.
func (b *PlaybackBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.heap.Len()
}

// Reset clears the anchors and any stale entries. The next Insert
// re-anchors the session.
func (b *PlaybackBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.anchored = false
	b.heap.items = b.heap.items[:0]
}

// Evicted returns how many frames overflowed the bound.
func (b *PlaybackBuffer) Evicted() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.evicted
}

// entryHeap is a min-heap on deadline.
type entryHeap struct {
	items []entry
}

func (h *entryHeap) Len() int { return len(h.items) }

func (h *entryHeap) Less(i, j int) bool {
	return h.items[i].deadline < h.items[j].deadline
}

func (h *entryHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *entryHeap) Push(x interface{}) {
	h.items = append(h.items, x.(entry))
}

func (h *entryHeap) Pop() interface{} {
	n := len(h.items)
	item := h.items[n-1]
	h.items = h.items[:n-1]
	return item
}
