package game

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Phase is the discrete stage of a room's session.
type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhaseCountdown   Phase = "countdown"
	PhaseQuestion    Phase = "question"
	PhaseResults     Phase = "results"
	PhasePodium      Phase = "podium"
	PhaseLeaderboard Phase = "leaderboard"
)

// Room display name bounds.
const (
	MinRoomNameLen = 1
	MaxRoomNameLen = 30
)

// Answer is the record of one member's answer to the current question.
// Choice is -1 when the member timed out. Records are immutable once
// created.
type Answer struct {
	MemberID  string
	Choice    int
	Correct   bool
	Timestamp uint64
	Elapsed   time.Duration
	Points    int
}

// TimeoutChoice marks an answer record stamped at the deadline for a player
// that never answered.
const TimeoutChoice = -1

// Room is one independent quiz session container. It exclusively owns its
// roster, question bank, clock and coordinator state; everything below mu is
// guarded by it. Emissions for the room happen while mu is held, which gives
// subscribers a total per-room event order.
type Room struct {
	Code      string
	Name      string
	Public    bool
	CreatedAt time.Time

	passwordHash []byte

	mu     sync.Mutex
	closed bool

	phase  Phase
	roster *Roster
	bank   *Bank
	clock  Clock

	// Session state. questionIdx is -1 outside a session; answers holds the
	// records for the question currently on screen; timerGen invalidates
	// stale timer callbacks.
	questionIdx   int
	questionStart time.Time
	answers       map[string]*Answer
	timerGen      uint64

	// Podium reveal state, frozen when the podium phase begins.
	podium        []MemberView
	podiumRanking []RankingEntry
}

// NewRoom creates a lobby-phase room. A non-empty password is stored as a
// bcrypt hash.
func NewRoom(code, name string, public bool, password string) (*Room, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < MinRoomNameLen || n > MaxRoomNameLen {
		return nil, ErrRoomNameInvalid
	}

	r := &Room{
		Code:        code,
		Name:        name,
		Public:      public,
		CreatedAt:   time.Now(),
		phase:       PhaseLobby,
		roster:      NewRoster(),
		bank:        NewBank(),
		questionIdx: -1,
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash da senha: %w", err)
		}
		r.passwordHash = hash
	}
	return r, nil
}

// HasPassword reports whether joining requires a password.
func (r *Room) HasPassword() bool {
	return len(r.passwordHash) > 0
}

// CheckPassword verifies a join attempt against the stored hash.
func (r *Room) CheckPassword(password string) error {
	if len(r.passwordHash) == 0 {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(r.passwordHash, []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}

// RoomSummary is the public listing shape of a room.
type RoomSummary struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Public    bool   `json:"public"`
	Protected bool   `json:"protected"`
	Players   int    `json:"players"`
	Phase     Phase  `json:"phase"`
}

// Summary returns the listing shape. It takes the room lock.
func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaryLocked()
}

func (r *Room) summaryLocked() RoomSummary {
	return RoomSummary{
		Code:      r.Code,
		Name:      r.Name,
		Public:    r.Public,
		Protected: r.HasPassword(),
		Players:   len(r.roster.Players()),
		Phase:     r.phase,
	}
}

// State returns a full snapshot of the room. It takes the room lock.
func (r *Room) State() StatePayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Room) stateLocked() StatePayload {
	st := StatePayload{
		Phase:          r.phase,
		Members:        r.roster.Snapshot(),
		QuestionIndex:  r.questionIdx,
		TotalQuestions: r.bank.Count(),
	}
	if r.phase == PhaseQuestion || r.phase == PhaseResults {
		if q, err := r.bank.Get(r.questionIdx); err == nil {
			view := q.View()
			st.Question = &view
		}
	}
	return st
}

// CurrentPhase returns the current phase. It takes the room lock.
func (r *Room) CurrentPhase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Questions returns a copy of the bank. It takes the room lock.
func (r *Room) Questions() []Question {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bank.List()
}

// answeredCount counts the active players with a record for the current
// question.
func (r *Room) answeredCountLocked() int {
	n := 0
	for _, m := range r.roster.ActivePlayers() {
		if _, ok := r.answers[m.ID]; ok {
			n++
		}
	}
	return n
}

// allAnsweredLocked reports whether every active player has a record for
// the current question. Players inside a reconnection window hold their
// slot open until the deadline so they can still come back and answer.
func (r *Room) allAnsweredLocked() bool {
	active := r.roster.ActivePlayers()
	if len(active) == 0 {
		return false
	}
	for _, m := range active {
		if _, ok := r.answers[m.ID]; !ok {
			return false
		}
	}
	return true
}
