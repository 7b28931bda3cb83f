// Package bus fans room events out to subscribed connections. Frames are
// marshaled once per emission and pushed onto bounded per-subscriber
// queues, so one slow client never stalls a room.
package bus

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/LuizAugustoFH-77/Trivion/internal/protocol"
)

// Subscriber is one connection able to take frames for a member.
type Subscriber interface {
	// Send enqueues a marshaled frame without blocking; false reports a
	// full queue.
	Send(frame []byte) bool
	// Dropped tells the subscriber the bus let go of it, for backpressure
	// or a kick. Implementations flush what is queued, close the
	// connection, and must not block.
	Dropped(reason string)
	// RoomGone tells the subscriber its room was destroyed; the connection
	// stays open for a new join.
	RoomGone()
}

// Bus routes frames to the subscribers of each room. Its lock is a leaf:
// nothing called under it takes a room lock, which keeps emission legal
// inside room critical sections.
type Bus struct {
	log *zap.Logger

	mu    sync.RWMutex
	rooms map[string]map[string]Subscriber

	fabric *Fabric
}

// New creates a bus without a fabric: fan-out stays in-process.
func New(log *zap.Logger) *Bus {
	return &Bus{
		log:   log,
		rooms: make(map[string]map[string]Subscriber),
	}
}

// Subscribe registers a member's connection with a room, replacing any
// previous connection for the same member.
func (b *Bus) Subscribe(room, memberID string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.rooms[room]
	if subs == nil {
		subs = make(map[string]Subscriber)
		b.rooms[room] = subs
	}
	subs[memberID] = sub
}

// Unsubscribe removes a member's registration, but only while sub is still
// the registered connection; a reconnect that already swapped a new one in
// stays untouched.
func (b *Bus) Unsubscribe(room, memberID string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs := b.rooms[room]; subs != nil && subs[memberID] == sub {
		delete(subs, memberID)
		if len(subs) == 0 {
			delete(b.rooms, room)
		}
	}
}

// Broadcast delivers a frame to every subscriber of a room and forwards it
// through the fabric when one is attached.
func (b *Bus) Broadcast(room string, frame protocol.Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		b.log.Error("marshal frame", zap.String("tag", string(frame.Tag)), zap.Error(err))
		return
	}
	b.deliver(room, "", data)
	if b.fabric != nil {
		b.fabric.forward(room, "", data)
	}
}

// SendTo delivers a frame to one member of a room.
func (b *Bus) SendTo(room, memberID string, frame protocol.Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		b.log.Error("marshal frame", zap.String("tag", string(frame.Tag)), zap.Error(err))
		return
	}
	b.deliver(room, memberID, data)
	if b.fabric != nil {
		b.fabric.forward(room, memberID, data)
	}
}

// Evict removes one subscriber and closes it after its queue flushes.
func (b *Bus) Evict(room, memberID string) {
	b.mu.Lock()
	var sub Subscriber
	if subs := b.rooms[room]; subs != nil {
		sub = subs[memberID]
		delete(subs, memberID)
		if len(subs) == 0 {
			delete(b.rooms, room)
		}
	}
	b.mu.Unlock()
	if sub != nil {
		sub.Dropped("removido da sala")
	}
}

// DropRoom detaches every subscriber of a destroyed room.
func (b *Bus) DropRoom(room string) {
	b.mu.Lock()
	subs := b.rooms[room]
	delete(b.rooms, room)
	b.mu.Unlock()
	for _, sub := range subs {
		sub.RoomGone()
	}
}

// deliver pushes a marshaled frame to one member or, with an empty member
// id, to everyone in the room. Subscribers whose queue overflows are
// dropped afterwards.
func (b *Bus) deliver(room, memberID string, data []byte) {
	b.mu.RLock()
	subs := b.rooms[room]
	var overflowed []string
	if memberID != "" {
		if sub := subs[memberID]; sub != nil && !sub.Send(data) {
			overflowed = append(overflowed, memberID)
		}
	} else {
		for id, sub := range subs {
			if !sub.Send(data) {
				overflowed = append(overflowed, id)
			}
		}
	}
	b.mu.RUnlock()

	for _, id := range overflowed {
		b.drop(room, id)
	}
}

// drop removes a subscriber that could not keep up. Closing it surfaces a
// normal disconnect, so the member still gets its reconnection window.
func (b *Bus) drop(room, memberID string) {
	b.mu.Lock()
	var sub Subscriber
	if subs := b.rooms[room]; subs != nil {
		sub = subs[memberID]
		delete(subs, memberID)
		if len(subs) == 0 {
			delete(b.rooms, room)
		}
	}
	b.mu.Unlock()
	if sub != nil {
		b.log.Warn("subscriber dropped, send queue full",
			zap.String("room", room),
			zap.String("member", memberID))
		sub.Dropped("fila de envio cheia")
	}
}
