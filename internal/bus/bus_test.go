package bus

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LuizAugustoFH-77/Trivion/internal/protocol"
)

// memorySub mimics a connection: a bounded queue that starts rejecting
// frames when full.
type memorySub struct {
	mu      sync.Mutex
	cap     int
	frames  [][]byte
	dropped []string
	gone    int
}

func newMemorySub(capacity int) *memorySub {
	return &memorySub{cap: capacity}
}

func (s *memorySub) Send(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) >= s.cap {
		return false
	}
	s.frames = append(s.frames, frame)
	return true
}

func (s *memorySub) Dropped(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped = append(s.dropped, reason)
}

func (s *memorySub) RoomGone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gone++
}

func (s *memorySub) tags(t *testing.T) []protocol.Tag {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Tag, 0, len(s.frames))
	for _, data := range s.frames {
		var f protocol.Frame
		require.NoError(t, json.Unmarshal(data, &f))
		out = append(out, f.Tag)
	}
	return out
}

func (s *memorySub) queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func (s *memorySub) dropReasons() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.dropped))
	copy(out, s.dropped)
	return out
}

func (s *memorySub) roomGoneCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gone
}

func newTestBus() *Bus {
	return New(zap.NewNop())
}

func TestBroadcastPreservesOrder(t *testing.T) {
	b := newTestBus()
	ana := newMemorySub(100)
	bia := newMemorySub(100)
	b.Subscribe("SALA01", "ana", ana)
	b.Subscribe("SALA01", "bia", bia)

	var want []protocol.Tag
	for i := 0; i < 10; i++ {
		tag := protocol.Tag(fmt.Sprintf("evento_%d", i))
		want = append(want, tag)
		b.Broadcast("SALA01", protocol.NewFrame(tag, nil, uint64(i+1)))
	}

	assert.Equal(t, want, ana.tags(t))
	assert.Equal(t, want, bia.tags(t))
}

func TestSendToTargetsOneMember(t *testing.T) {
	b := newTestBus()
	ana := newMemorySub(10)
	bia := newMemorySub(10)
	b.Subscribe("SALA01", "ana", ana)
	b.Subscribe("SALA01", "bia", bia)

	b.SendTo("SALA01", "ana", protocol.NewFrame(protocol.TagWelcome, nil, 1))

	assert.Equal(t, 1, ana.queued())
	assert.Zero(t, bia.queued())
}

func TestBroadcastToUnknownRoomIsNoOp(t *testing.T) {
	b := newTestBus()
	b.Broadcast("NOPE99", protocol.NewFrame(protocol.TagState, nil, 1))
	b.SendTo("NOPE99", "ana", protocol.NewFrame(protocol.TagState, nil, 1))
}

func TestOverflowDropsSubscriber(t *testing.T) {
	b := newTestBus()
	slow := newMemorySub(1)
	fast := newMemorySub(10)
	b.Subscribe("SALA01", "slow", slow)
	b.Subscribe("SALA01", "fast", fast)

	b.Broadcast("SALA01", protocol.NewFrame(protocol.TagState, nil, 1))
	b.Broadcast("SALA01", protocol.NewFrame(protocol.TagState, nil, 2))

	require.Equal(t, []string{"fila de envio cheia"}, slow.dropReasons())

	// The dropped subscriber is out; the healthy one keeps receiving.
	b.Broadcast("SALA01", protocol.NewFrame(protocol.TagState, nil, 3))
	assert.Equal(t, 1, slow.queued())
	assert.Equal(t, 3, fast.queued())
}

func TestEvict(t *testing.T) {
	b := newTestBus()
	ana := newMemorySub(10)
	b.Subscribe("SALA01", "ana", ana)

	b.Evict("SALA01", "ana")
	assert.Equal(t, []string{"removido da sala"}, ana.dropReasons())

	b.Broadcast("SALA01", protocol.NewFrame(protocol.TagState, nil, 1))
	assert.Zero(t, ana.queued())

	// Evicting an unknown member must not panic.
	b.Evict("SALA01", "fantasma")
	b.Evict("NOPE99", "ana")
}

func TestDropRoom(t *testing.T) {
	b := newTestBus()
	ana := newMemorySub(10)
	bia := newMemorySub(10)
	b.Subscribe("SALA01", "ana", ana)
	b.Subscribe("SALA01", "bia", bia)

	b.DropRoom("SALA01")

	assert.Equal(t, 1, ana.roomGoneCalls())
	assert.Equal(t, 1, bia.roomGoneCalls())
	assert.Empty(t, ana.dropReasons(), "DropRoom must not close connections")

	b.Broadcast("SALA01", protocol.NewFrame(protocol.TagState, nil, 1))
	assert.Zero(t, ana.queued())
}

func TestUnsubscribeChecksIdentity(t *testing.T) {
	b := newTestBus()
	old := newMemorySub(10)
	fresh := newMemorySub(10)

	b.Subscribe("SALA01", "ana", old)
	// A reconnect swaps a new connection in for the same member.
	b.Subscribe("SALA01", "ana", fresh)

	// The old connection's teardown runs afterwards and must not detach the
	// replacement.
	b.Unsubscribe("SALA01", "ana", old)

	b.Broadcast("SALA01", protocol.NewFrame(protocol.TagState, nil, 1))
	assert.Zero(t, old.queued())
	assert.Equal(t, 1, fresh.queued())

	b.Unsubscribe("SALA01", "ana", fresh)
	b.Broadcast("SALA01", protocol.NewFrame(protocol.TagState, nil, 2))
	assert.Equal(t, 1, fresh.queued())
}

func TestConcurrentBroadcastAndSubscribe(t *testing.T) {
	b := newTestBus()
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			member := fmt.Sprintf("m%d", w)
			sub := newMemorySub(1000)
			b.Subscribe("SALA01", member, sub)
			for i := 0; i < 50; i++ {
				b.Broadcast("SALA01", protocol.NewFrame(protocol.TagState, nil, uint64(i+1)))
			}
			b.Unsubscribe("SALA01", member, sub)
		}(w)
	}
	wg.Wait()

	b.Broadcast("SALA01", protocol.NewFrame(protocol.TagState, nil, 1))
}
