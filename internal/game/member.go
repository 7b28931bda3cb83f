package game

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Role distinguishes the member that drives the session from the ones that
// answer questions.
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

// Name length bounds, counted in runes after trimming.
const (
	MinNameLen = 1
	MaxNameLen = 20
)

// Member is one participant of one room. The identifier is server-assigned
// and survives reconnection; the seat records join order and never changes.
// All fields are guarded by the owning room's lock.
type Member struct {
	ID        string
	Name      string
	Role      Role
	Score     int
	LastDelta int
	Waiting   bool
	Connected bool
	Answered  bool
	Seat      int
	JoinedAt  time.Time

	// lastAwardTS is the logical timestamp of the most recent answer that
	// awarded points. Lower values win score ties.
	lastAwardTS uint64
}

// NewMember creates a connected member with a fresh opaque identifier.
func NewMember(name string, role Role, seat int) *Member {
	return &Member{
		ID:        uuid.NewString(),
		Name:      name,
		Role:      role,
		Connected: true,
		Seat:      seat,
		JoinedAt:  time.Now(),
	}
}

// MemberView is the public snapshot of a member sent inside frames.
type MemberView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	Score     int    `json:"score"`
	LastDelta int    `json:"last_points"`
	Answered  bool   `json:"answered"`
	Waiting   bool   `json:"waiting"`
	Connected bool   `json:"connected"`
}

// View returns a value copy safe to emit after the room lock is released.
func (m *Member) View() MemberView {
	return MemberView{
		ID:        m.ID,
		Name:      m.Name,
		Role:      m.Role,
		Score:     m.Score,
		LastDelta: m.LastDelta,
		Answered:  m.Answered,
		Waiting:   m.Waiting,
		Connected: m.Connected,
	}
}

// NormalizeName trims surrounding whitespace from a display name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// ValidateName checks the trimmed display name: 1 to 20 printable runes.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinNameLen || n > MaxNameLen {
		return ErrNameInvalid
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return ErrNameInvalid
		}
	}
	return nil
}
