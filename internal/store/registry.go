// Package store keeps the process-wide room registry. All state is in
// memory and dies with the process.
package store

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/LuizAugustoFH-77/Trivion/internal/game"
)

// CodeLength is the size of a room code.
const CodeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeAttempts bounds the collision retries before giving up.
const codeAttempts = 10

// Registry maps room codes to rooms. Its lock guards only the map; room
// state lives behind each room's own lock, so work in distinct rooms never
// serializes here. The registry lock is never held while a room lock is
// taken.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*game.Room
	log   *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		rooms: make(map[string]*game.Room),
		log:   log,
	}
}

// Create allocates a unique code and builds a lobby-phase room. Ten code
// collisions in a row surface CapacityExhausted.
func (s *Registry) Create(name string, public bool, password string) (*game.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code string
	for i := 0; ; i++ {
		if i == codeAttempts {
			return nil, game.ErrCapacityExhausted
		}
		c, err := generateCode()
		if err != nil {
			return nil, fmt.Errorf("gerar código: %w", err)
		}
		if _, exists := s.rooms[c]; !exists {
			code = c
			break
		}
	}

	room, err := game.NewRoom(code, name, public, password)
	if err != nil {
		return nil, err
	}
	s.rooms[code] = room

	s.log.Info("room created",
		zap.String("room", code),
		zap.String("name", room.Name),
		zap.Bool("public", public),
		zap.Bool("protected", room.HasPassword()))
	return room, nil
}

// Find resolves a room by code, case-insensitively.
func (s *Registry) Find(code string) (*game.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[strings.ToUpper(code)]
	return room, ok
}

// Remove deletes a room from the map. Idempotent.
func (s *Registry) Remove(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, strings.ToUpper(code))
}

// ListPublic returns the publicly listed rooms. The slice is collected
// under the registry lock and summarized afterwards, room by room.
func (s *Registry) ListPublic() []game.RoomSummary {
	s.mu.RLock()
	rooms := make([]*game.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		if r.Public {
			rooms = append(rooms, r)
		}
	}
	s.mu.RUnlock()

	out := make([]game.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	return out
}

// Count returns the number of live rooms.
func (s *Registry) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// generateCode draws a uniform random code from the 36-character alphabet.
// Bytes of 252 and above are rejected so the modulo stays unbiased.
func generateCode() (string, error) {
	const limit = byte(252)
	out := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength)
	for len(out) < CodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, codeAlphabet[b%byte(len(codeAlphabet))])
			if len(out) == CodeLength {
				break
			}
		}
	}
	return string(out), nil
}
