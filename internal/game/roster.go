package game

import "strings"

// Roster holds the members of one room in join order. It performs no
// locking of its own: every call happens with the owning room's lock held.
type Roster struct {
	members  map[string]*Member
	order    []string
	nextSeat int
}

// NewRoster returns an empty roster.
func NewRoster() *Roster {
	return &Roster{members: make(map[string]*Member)}
}

// Add validates the name, enforces case-insensitive uniqueness and the
// single-administrator rule, and seats the new member at the end.
func (r *Roster) Add(name string, role Role) (*Member, error) {
	name = NormalizeName(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if r.FindByName(name) != nil {
		return nil, ErrNameTaken
	}
	if role == RoleAdmin && r.Admin() != nil {
		return nil, ErrAdminExists
	}

	m := NewMember(name, role, r.nextSeat)
	r.nextSeat++
	r.members[m.ID] = m
	r.order = append(r.order, m.ID)
	return m, nil
}

// Remove deletes a member and returns it, or nil when absent.
func (r *Roster) Remove(id string) *Member {
	m, ok := r.members[id]
	if !ok {
		return nil
	}
	delete(r.members, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return m
}

// Find returns the member with the given id, or nil.
func (r *Roster) Find(id string) *Member {
	return r.members[id]
}

// FindByName matches display names case-insensitively.
func (r *Roster) FindByName(name string) *Member {
	for _, m := range r.members {
		if strings.EqualFold(m.Name, name) {
			return m
		}
	}
	return nil
}

// Admin returns the administrator, or nil when the room has none.
func (r *Roster) Admin() *Member {
	for _, m := range r.members {
		if m.Role == RoleAdmin {
			return m
		}
	}
	return nil
}

// Len returns the number of members.
func (r *Roster) Len() int {
	return len(r.members)
}

// All returns the members in seat order.
func (r *Roster) All() []*Member {
	out := make([]*Member, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.members[id])
	}
	return out
}

// Players returns the members with the player role in seat order.
func (r *Roster) Players() []*Member {
	out := make([]*Member, 0, len(r.order))
	for _, m := range r.All() {
		if m.Role == RolePlayer {
			out = append(out, m)
		}
	}
	return out
}

// ActivePlayers returns the players taking part in the current session,
// waiting members excluded. Disconnected players inside their reconnection
// window still count.
func (r *Roster) ActivePlayers() []*Member {
	out := make([]*Member, 0, len(r.order))
	for _, m := range r.Players() {
		if !m.Waiting {
			out = append(out, m)
		}
	}
	return out
}

// Snapshot returns seat-ordered value copies safe to emit without the lock.
func (r *Roster) Snapshot() []MemberView {
	out := make([]MemberView, 0, len(r.order))
	for _, m := range r.All() {
		out = append(out, m.View())
	}
	return out
}

// SetWaiting flips the waiting flag of one member.
func (r *Roster) SetWaiting(id string, waiting bool) {
	if m := r.members[id]; m != nil {
		m.Waiting = waiting
	}
}

// AddScore applies a question award to one member, remembering the logical
// time of the latest positive award for rank tie-breaks.
func (r *Roster) AddScore(id string, points int, ts uint64) {
	m, ok := r.members[id]
	if !ok {
		return
	}
	m.Score += points
	m.LastDelta = points
	if points > 0 {
		m.lastAwardTS = ts
	}
}

// ResetScores clears scores and per-question state for every member. Called
// on the transitions back into the lobby.
func (r *Roster) ResetScores() {
	for _, m := range r.members {
		m.Score = 0
		m.LastDelta = 0
		m.Answered = false
		m.Waiting = false
		m.lastAwardTS = 0
	}
}
