package game

import (
	"errors"
	"strings"
	"testing"
)

func TestNewRoom(t *testing.T) {
	r, err := NewRoom("ABC123", "  Sala da Ana  ", true, "")
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "Sala da Ana" {
		t.Errorf("name = %q", r.Name)
	}
	if r.CurrentPhase() != PhaseLobby {
		t.Errorf("phase = %s", r.CurrentPhase())
	}
	if r.HasPassword() {
		t.Error("room without password reports protected")
	}
	if r.questionIdx != -1 {
		t.Errorf("questionIdx = %d, want -1", r.questionIdx)
	}
}

func TestNewRoomNameBounds(t *testing.T) {
	if _, err := NewRoom("ABC123", "   ", true, ""); !errors.Is(err, ErrRoomNameInvalid) {
		t.Errorf("blank name err = %v", err)
	}
	if _, err := NewRoom("ABC123", strings.Repeat("x", 31), true, ""); !errors.Is(err, ErrRoomNameInvalid) {
		t.Errorf("long name err = %v", err)
	}
	if _, err := NewRoom("ABC123", strings.Repeat("x", 30), true, ""); err != nil {
		t.Errorf("30-rune name rejected: %v", err)
	}
}

func TestRoomPassword(t *testing.T) {
	r, err := NewRoom("ABC123", "Sala", false, "segredo")
	if err != nil {
		t.Fatal(err)
	}
	if !r.HasPassword() {
		t.Fatal("password not stored")
	}

	if err := r.CheckPassword("segredo"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	err = r.CheckPassword("errada")
	if !errors.Is(err, ErrBadPassword) {
		t.Fatalf("wrong password err = %v", err)
	}
	if !strings.Contains(err.Error(), "senha") {
		t.Errorf("password error must mention senha: %q", err)
	}
	if err := r.CheckPassword(""); !errors.Is(err, ErrBadPassword) {
		t.Errorf("empty password err = %v", err)
	}
}

func TestRoomSummary(t *testing.T) {
	r, _ := NewRoom("XYZ789", "Quiz da Firma", true, "pw")
	r.mu.Lock()
	r.roster.Add("Chefe", RoleAdmin)
	r.roster.Add("Ana", RolePlayer)
	r.roster.Add("Bia", RolePlayer)
	r.mu.Unlock()

	s := r.Summary()
	if s.Code != "XYZ789" || s.Name != "Quiz da Firma" {
		t.Errorf("summary = %+v", s)
	}
	if !s.Protected || !s.Public {
		t.Errorf("flags = %+v", s)
	}
	// The admin does not count as a player.
	if s.Players != 2 {
		t.Errorf("players = %d, want 2", s.Players)
	}
	if s.Phase != PhaseLobby {
		t.Errorf("phase = %s", s.Phase)
	}
}

func TestRoomStateCarriesQuestionDuringPlay(t *testing.T) {
	r, _ := NewRoom("ABC123", "Sala", true, "")
	r.mu.Lock()
	r.roster.Add("Ana", RolePlayer)
	r.bank.Append(validQuestion())
	r.mu.Unlock()

	if st := r.State(); st.Question != nil {
		t.Error("lobby state must not leak the question")
	}

	r.mu.Lock()
	r.phase = PhaseQuestion
	r.questionIdx = 0
	r.mu.Unlock()

	st := r.State()
	if st.Question == nil {
		t.Fatal("question missing from state during question phase")
	}
	if st.Question.Text != validQuestion().Text {
		t.Errorf("question text = %q", st.Question.Text)
	}
	if st.TotalQuestions != 1 || st.QuestionIndex != 0 {
		t.Errorf("state = %+v", st)
	}
}

func TestRoomAllAnswered(t *testing.T) {
	r, _ := NewRoom("ABC123", "Sala", true, "")
	r.mu.Lock()
	defer r.mu.Unlock()

	// No active players: never collapse.
	if r.allAnsweredLocked() {
		t.Error("empty room reports all answered")
	}

	a, _ := r.roster.Add("Ana", RolePlayer)
	b, _ := r.roster.Add("Bia", RolePlayer)
	w, _ := r.roster.Add("Tarde", RolePlayer)
	r.roster.SetWaiting(w.ID, true)
	r.answers = map[string]*Answer{a.ID: {MemberID: a.ID}}

	if r.allAnsweredLocked() {
		t.Error("missing answer reported as complete")
	}
	if got := r.answeredCountLocked(); got != 1 {
		t.Errorf("answeredCount = %d", got)
	}

	// A disconnected player still blocks the collapse: it may reconnect and
	// answer before the deadline.
	b.Connected = false
	if r.allAnsweredLocked() {
		t.Error("disconnected player ignored by allAnswered")
	}

	r.answers[b.ID] = &Answer{MemberID: b.ID}
	if !r.allAnsweredLocked() {
		t.Error("complete set not detected; waiting member should not count")
	}
}
