package game

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LuizAugustoFH-77/Trivion/internal/protocol"
)

// RoomStore resolves and removes rooms. Timer callbacks address rooms
// through it by code instead of holding pointers.
type RoomStore interface {
	Find(code string) (*Room, bool)
	Remove(code string)
}

// Timings groups the coordinator delays. Tests shrink them; production
// values come from configuration and default to the product cadence.
type Timings struct {
	Countdown       time.Duration
	PodiumStep      time.Duration
	PodiumFinal     time.Duration
	ReconnectWindow time.Duration
}

// DefaultTimings returns the product cadence: 3 s countdown, 1 s between
// podium reveals, 2 s before the final ranking, 10 s reconnection window.
func DefaultTimings() Timings {
	return Timings{
		Countdown:       3 * time.Second,
		PodiumStep:      1 * time.Second,
		PodiumFinal:     2 * time.Second,
		ReconnectWindow: 10 * time.Second,
	}
}

// Results rankings carry at most the top five rows; the podium and the
// final leaderboard carry everything.
const maxResultsRanking = 5

// Service is the game coordinator shared by the socket gateway and the
// REST surface. Every room operation runs under that room's lock; slots for
// disconnected members live behind their own small mutex.
type Service struct {
	store   RoomStore
	pub     Publisher
	log     *zap.Logger
	timings Timings

	slotMu sync.Mutex
	slots  map[string]*reconnectSlot
}

// reconnectSlot keeps a disconnected member claimable until the deadline.
type reconnectSlot struct {
	memberID string
	roomCode string
	timer    *time.Timer
}

// NewService builds a coordinator.
func NewService(store RoomStore, pub Publisher, log *zap.Logger, timings Timings) *Service {
	return &Service{
		store:   store,
		pub:     pub,
		log:     log,
		timings: timings,
		slots:   make(map[string]*reconnectSlot),
	}
}

func (s *Service) room(code string) (*Room, error) {
	r, ok := s.store.Find(code)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// emitLocked broadcasts one frame stamped with the room clock. Caller holds
// the room lock.
func (s *Service) emitLocked(r *Room, tag protocol.Tag, payload any) {
	s.pub.Broadcast(r.Code, protocol.NewFrame(tag, payload, r.clock.Tick()))
}

// whisperLocked sends one frame to a single member. Caller holds the room
// lock.
func (s *Service) whisperLocked(r *Room, memberID string, tag protocol.Tag, payload any) {
	s.pub.SendTo(r.Code, memberID, protocol.NewFrame(tag, payload, r.clock.Tick()))
}

// schedule arms a coordinator timer. The callback re-resolves the room by
// code, reacquires its lock and aborts when the generation moved on, so
// cancelled timers are no-ops.
func (s *Service) schedule(code string, gen uint64, d time.Duration, fire func(r *Room)) {
	time.AfterFunc(d, func() {
		r, ok := s.store.Find(code)
		if !ok {
			return
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed || r.timerGen != gen {
			return
		}
		fire(r)
	})
}

func (s *Service) requireAdminLocked(r *Room, actorID string) error {
	if actorID == "" {
		// Trusted path: the REST admin surface carries no member identity.
		return nil
	}
	m := r.roster.Find(actorID)
	if m == nil {
		return ErrNotConnected
	}
	if m.Role != RoleAdmin {
		return ErrNotAuthorized
	}
	return nil
}

// Join adds a member to a room. attach is invoked under the room lock right
// after the roster accepts the member, so the new subscriber sees every
// event from its own welcome onward. Joins outside the lobby enter waiting.
func (s *Service) Join(code, name, password string, asAdmin bool, attach func(memberID string)) (MemberView, error) {
	r, err := s.room(code)
	if err != nil {
		return MemberView{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return MemberView{}, ErrRoomNotFound
	}
	if err := r.CheckPassword(password); err != nil {
		return MemberView{}, err
	}

	role := RolePlayer
	if asAdmin {
		role = RoleAdmin
	}
	m, err := r.roster.Add(name, role)
	if err != nil {
		return MemberView{}, err
	}
	if role == RolePlayer && r.phase != PhaseLobby {
		m.Waiting = true
	}

	if attach != nil {
		attach(m.ID)
	}
	s.whisperLocked(r, m.ID, protocol.TagWelcome, WelcomePayload{
		Member: m.View(),
		Room:   r.summaryLocked(),
		State:  r.stateLocked(),
	})
	s.emitLocked(r, protocol.TagMemberJoined, MemberJoinedPayload{
		Member:  m.View(),
		Members: r.roster.Snapshot(),
	})
	if m.Waiting {
		s.emitLocked(r, protocol.TagWaitingMember, WaitingMemberPayload{Member: m.View()})
	}

	s.log.Info("member joined",
		zap.String("room", r.Code),
		zap.String("member", m.ID),
		zap.String("name", m.Name),
		zap.String("role", string(m.Role)),
		zap.Bool("waiting", m.Waiting))
	return m.View(), nil
}

// Leave removes a member for good. The last member out destroys the room.
func (s *Service) Leave(code, memberID string) error {
	r, err := s.room(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	m := r.roster.Remove(memberID)
	if m == nil {
		r.mu.Unlock()
		return ErrMemberNotFound
	}
	s.emitLocked(r, protocol.TagMemberLeft, MemberLeftPayload{
		Name:    m.Name,
		Members: r.roster.Snapshot(),
	})
	s.afterDepartureLocked(r)
	destroy := r.roster.Len() == 0
	if destroy {
		r.closed = true
	}
	r.mu.Unlock()

	s.dropSlot(memberID)
	if destroy {
		s.teardown(code)
	}
	s.log.Info("member left", zap.String("room", code), zap.String("name", m.Name))
	return nil
}

// Disconnect marks a member's connection as lost and opens its reconnection
// slot. Called by the transport when a bound connection dies.
func (s *Service) Disconnect(code, memberID string) {
	r, err := s.room(code)
	if err != nil {
		return
	}
	r.mu.Lock()
	m := r.roster.Find(memberID)
	if m == nil {
		r.mu.Unlock()
		return
	}
	m.Connected = false
	r.mu.Unlock()

	s.openSlot(code, memberID)
	s.log.Info("member disconnected",
		zap.String("room", code),
		zap.String("member", memberID),
		zap.Duration("window", s.timings.ReconnectWindow))
}

// Reconnect claims a slot and swaps the member's connection handle in.
func (s *Service) Reconnect(memberID string, attach func(roomCode string)) (ReconnectSuccessPayload, error) {
	s.slotMu.Lock()
	slot := s.slots[memberID]
	if slot == nil {
		s.slotMu.Unlock()
		return ReconnectSuccessPayload{}, ErrReconnectExpired
	}
	delete(s.slots, memberID)
	slot.timer.Stop()
	s.slotMu.Unlock()

	r, ok := s.store.Find(slot.roomCode)
	if !ok {
		return ReconnectSuccessPayload{}, ErrReconnectExpired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ReconnectSuccessPayload{}, ErrReconnectExpired
	}
	m := r.roster.Find(memberID)
	if m == nil {
		return ReconnectSuccessPayload{}, ErrReconnectExpired
	}
	m.Connected = true

	if attach != nil {
		attach(r.Code)
	}
	res := ReconnectSuccessPayload{
		MemberID: m.ID,
		Name:     m.Name,
		RoomCode: r.Code,
		Score:    m.Score,
		Waiting:  m.Waiting,
	}
	s.whisperLocked(r, m.ID, protocol.TagReconnectSuccess, res)
	s.whisperLocked(r, m.ID, protocol.TagState, r.stateLocked())
	s.emitLocked(r, protocol.TagMemberJoined, MemberJoinedPayload{
		Member:  m.View(),
		Members: r.roster.Snapshot(),
	})

	s.log.Info("member reconnected", zap.String("room", r.Code), zap.String("member", memberID))
	return res, nil
}

// SubmitAnswer validates and records one answer, scoring it immediately.
// The last missing answer collapses the deadline into results.
func (s *Service) SubmitAnswer(code, memberID string, choice int, clientTS uint64) error {
	r, err := s.room(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseQuestion {
		return ErrPhaseViolation
	}
	m := r.roster.Find(memberID)
	if m == nil {
		return ErrMemberNotFound
	}
	if m.Role == RoleAdmin {
		return ErrAdminAnswer
	}
	if m.Waiting {
		return ErrWaitingNextGame
	}
	if !m.Connected {
		return ErrNotConnected
	}
	if choice < 0 || choice >= OptionCount {
		return ErrOptionOutOfRange
	}
	if _, dup := r.answers[m.ID]; dup {
		return ErrAlreadyAnswered
	}
	q, err := r.bank.Get(r.questionIdx)
	if err != nil {
		return ErrPhaseViolation
	}

	elapsed := time.Since(r.questionStart)
	limit := time.Duration(q.TimeLimit) * time.Second
	correct := choice == q.Correct
	r.answers[m.ID] = &Answer{
		MemberID:  m.ID,
		Choice:    choice,
		Correct:   correct,
		Timestamp: r.clock.Observe(clientTS),
		Elapsed:   elapsed,
		Points:    Points(correct, elapsed, limit),
	}
	m.Answered = true

	s.emitLocked(r, protocol.TagPlayerAnswered, PlayerAnsweredPayload{
		Answered: r.answeredCountLocked(),
		Total:    len(r.roster.ActivePlayers()),
	})
	if r.allAnsweredLocked() {
		s.finishQuestionLocked(r)
	}
	return nil
}

// PushState whispers a fresh snapshot to one member.
func (s *Service) PushState(code, memberID string) error {
	r, err := s.room(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roster.Find(memberID) == nil {
		return ErrMemberNotFound
	}
	s.whisperLocked(r, memberID, protocol.TagState, r.stateLocked())
	return nil
}

// GetState returns a snapshot for the REST surface.
func (s *Service) GetState(code string) (StatePayload, error) {
	r, err := s.room(code)
	if err != nil {
		return StatePayload{}, err
	}
	return r.State(), nil
}

// StartGame moves lobby → countdown. Requires at least one player and one
// question; waiting flags freeze to false for everyone present.
func (s *Service) StartGame(code, actorID string) error {
	r, err := s.room(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := s.requireAdminLocked(r, actorID); err != nil {
		return err
	}
	if r.phase != PhaseLobby {
		return ErrPhaseViolation
	}
	if r.bank.Count() == 0 {
		return ErrNoQuestions
	}
	if len(r.roster.Players()) == 0 {
		return ErrNoPlayers
	}

	for _, m := range r.roster.All() {
		m.Waiting = false
		m.Answered = false
		m.LastDelta = 0
	}
	r.questionIdx = 0
	s.beginCountdownLocked(r)

	s.log.Info("game started",
		zap.String("room", r.Code),
		zap.Int("players", len(r.roster.Players())),
		zap.Int("questions", r.bank.Count()))
	return nil
}

// NextStep moves results → countdown while questions remain, otherwise into
// the podium reveal.
func (s *Service) NextStep(code, actorID string) error {
	r, err := s.room(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := s.requireAdminLocked(r, actorID); err != nil {
		return err
	}
	if r.phase != PhaseResults {
		return ErrPhaseViolation
	}
	if r.questionIdx+1 < r.bank.Count() {
		r.questionIdx++
		s.beginCountdownLocked(r)
	} else {
		s.beginPodiumLocked(r)
	}
	return nil
}

// EndGame aborts the session from any phase: timers die, scores reset,
// members stay.
func (s *Service) EndGame(code, actorID string) error {
	r, err := s.room(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := s.requireAdminLocked(r, actorID); err != nil {
		return err
	}
	s.endToLobbyLocked(r)
	s.log.Info("game ended", zap.String("room", r.Code))
	return nil
}

// BackToLobby closes the leaderboard and opens the next session's lobby.
func (s *Service) BackToLobby(code, actorID string) error {
	r, err := s.room(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := s.requireAdminLocked(r, actorID); err != nil {
		return err
	}
	if r.phase != PhaseLeaderboard {
		return ErrPhaseViolation
	}
	s.endToLobbyLocked(r)
	return nil
}

// RemoveMember kicks a member out of the room.
func (s *Service) RemoveMember(code, actorID, targetID string) error {
	r, err := s.room(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	if err := s.requireAdminLocked(r, actorID); err != nil {
		r.mu.Unlock()
		return err
	}
	m := r.roster.Find(targetID)
	if m == nil {
		r.mu.Unlock()
		return ErrMemberNotFound
	}
	s.whisperLocked(r, targetID, protocol.TagKicked, KickedPayload{Reason: "removido pelo administrador"})
	r.roster.Remove(targetID)
	s.pub.Evict(r.Code, targetID)
	s.emitLocked(r, protocol.TagMemberLeft, MemberLeftPayload{
		Name:    m.Name,
		Members: r.roster.Snapshot(),
	})
	s.afterDepartureLocked(r)
	destroy := r.roster.Len() == 0
	if destroy {
		r.closed = true
	}
	r.mu.Unlock()

	s.dropSlot(targetID)
	if destroy {
		s.teardown(code)
	}
	s.log.Info("member removed", zap.String("room", code), zap.String("member", targetID))
	return nil
}

// CloseRoom destroys a room on admin request, notifying members first.
func (s *Service) CloseRoom(code string) error {
	r, err := s.room(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.timerGen++
	r.closed = true
	s.emitLocked(r, protocol.TagRoomClosed, nil)
	r.mu.Unlock()

	s.teardown(code)
	s.log.Info("room closed", zap.String("room", code))
	return nil
}

// AddQuestion appends to the bank; only legal in the lobby.
func (s *Service) AddQuestion(code string, q Question) error {
	r, err := s.room(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseLobby {
		return ErrPhaseViolation
	}
	return r.bank.Append(q)
}

// Questions lists the bank.
func (s *Service) Questions(code string) ([]Question, error) {
	r, err := s.room(code)
	if err != nil {
		return nil, err
	}
	return r.Questions(), nil
}

// RemoveQuestion deletes one question by index; only legal in the lobby.
func (s *Service) RemoveQuestion(code string, index int) error {
	r, err := s.room(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseLobby {
		return ErrPhaseViolation
	}
	return r.bank.RemoveAt(index)
}

// ClearQuestions empties the bank; only legal in the lobby.
func (s *Service) ClearQuestions(code string) error {
	r, err := s.room(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseLobby {
		return ErrPhaseViolation
	}
	r.bank.Clear()
	return nil
}

// --- internal transitions, all called with the room lock held ---

func (s *Service) beginCountdownLocked(r *Room) {
	r.timerGen++
	gen := r.timerGen
	r.phase = PhaseCountdown
	s.emitLocked(r, protocol.TagCountdown, CountdownPayload{
		Seconds: int(s.timings.Countdown / time.Second),
	})
	s.schedule(r.Code, gen, s.timings.Countdown, s.beginQuestionLocked)
}

func (s *Service) beginQuestionLocked(r *Room) {
	q, err := r.bank.Get(r.questionIdx)
	if err != nil {
		s.endToLobbyLocked(r)
		return
	}
	r.timerGen++
	gen := r.timerGen
	r.phase = PhaseQuestion
	r.answers = make(map[string]*Answer)
	for _, m := range r.roster.All() {
		m.Answered = false
	}
	r.questionStart = time.Now()

	ts := r.clock.Tick()
	s.pub.Broadcast(r.Code, protocol.NewFrame(protocol.TagQuestion, QuestionPayload{
		Question:  q.View(),
		Number:    r.questionIdx + 1,
		Total:     r.bank.Count(),
		Timestamp: ts,
	}, ts))
	s.schedule(r.Code, gen, time.Duration(q.TimeLimit)*time.Second, s.questionDeadlineLocked)

	s.log.Info("question opened",
		zap.String("room", r.Code),
		zap.Int("number", r.questionIdx+1),
		zap.Int("time_limit", q.TimeLimit))
}

func (s *Service) questionDeadlineLocked(r *Room) {
	if r.phase != PhaseQuestion {
		return
	}
	s.finishQuestionLocked(r)
}

// finishQuestionLocked closes the answer window: absentees get timeout
// records, awards apply, results go out.
func (s *Service) finishQuestionLocked(r *Room) {
	r.timerGen++
	r.phase = PhaseResults
	q, err := r.bank.Get(r.questionIdx)
	if err != nil {
		s.endToLobbyLocked(r)
		return
	}
	limit := time.Duration(q.TimeLimit) * time.Second

	for _, m := range r.roster.ActivePlayers() {
		if _, ok := r.answers[m.ID]; !ok {
			r.answers[m.ID] = &Answer{
				MemberID:  m.ID,
				Choice:    TimeoutChoice,
				Timestamp: r.clock.Tick(),
				Elapsed:   limit,
			}
			m.Answered = true
		}
	}

	stats := make([]int, OptionCount)
	for _, m := range r.roster.ActivePlayers() {
		rec := r.answers[m.ID]
		if rec == nil {
			continue
		}
		r.roster.AddScore(m.ID, rec.Points, rec.Timestamp)
		if rec.Choice >= 0 && rec.Choice < OptionCount {
			stats[rec.Choice]++
		}
	}

	ranking := Rank(r.roster.Players())
	if len(ranking) > maxResultsRanking {
		ranking = ranking[:maxResultsRanking]
	}
	s.emitLocked(r, protocol.TagResults, ResultsPayload{
		Ranking: ranking,
		Correct: q.Correct,
		Stats:   stats,
	})

	s.log.Info("question finished",
		zap.String("room", r.Code),
		zap.Int("number", r.questionIdx+1),
		zap.Int("answers", len(r.answers)))
}

// beginPodiumLocked freezes the final ranking and schedules the bottom-up
// reveal of the top three.
func (s *Service) beginPodiumLocked(r *Room) {
	r.timerGen++
	gen := r.timerGen
	r.phase = PhasePodium
	s.emitLocked(r, protocol.TagPodiumStart, nil)

	players := Rank(r.roster.Players())
	r.podiumRanking = players
	r.podium = r.podium[:0]
	for _, entry := range players {
		if m := r.roster.Find(entry.ID); m != nil {
			r.podium = append(r.podium, m.View())
		}
	}

	first := len(r.podium)
	if first > 3 {
		first = 3
	}
	if first == 0 {
		s.schedule(r.Code, gen, s.timings.PodiumFinal, s.completePodiumLocked)
		return
	}
	s.schedule(r.Code, gen, s.timings.PodiumStep, s.podiumStep(gen, first))
}

// podiumStep reveals one position and chains the next timer under the same
// generation, so an admin end cancels the whole sequence.
func (s *Service) podiumStep(gen uint64, position int) func(r *Room) {
	return func(r *Room) {
		if position <= len(r.podium) {
			s.emitLocked(r, protocol.TagPodiumPosition, PodiumPositionPayload{
				Position: position,
				Member:   r.podium[position-1],
			})
		}
		if position > 1 {
			s.schedule(r.Code, gen, s.timings.PodiumStep, s.podiumStep(gen, position-1))
			return
		}
		s.schedule(r.Code, gen, s.timings.PodiumFinal, s.completePodiumLocked)
	}
}

func (s *Service) completePodiumLocked(r *Room) {
	r.phase = PhaseLeaderboard
	s.emitLocked(r, protocol.TagPodiumComplete, PodiumCompletePayload{Ranking: r.podiumRanking})
}

// endToLobbyLocked cancels every pending timer and resets session data,
// keeping the members.
func (s *Service) endToLobbyLocked(r *Room) {
	r.timerGen++
	r.phase = PhaseLobby
	r.questionIdx = -1
	r.questionStart = time.Time{}
	r.answers = nil
	r.podium = nil
	r.podiumRanking = nil
	r.roster.ResetScores()
	s.emitLocked(r, protocol.TagGameEnded, GameEndedPayload{Members: r.roster.Snapshot()})
}

// afterDepartureLocked re-evaluates the session after a member vanishes: a
// now-complete answer set collapses into results, and a session with no
// active players left ends on its own.
func (s *Service) afterDepartureLocked(r *Room) {
	switch r.phase {
	case PhaseLobby:
		return
	case PhaseQuestion:
		if r.allAnsweredLocked() {
			s.finishQuestionLocked(r)
			return
		}
	}
	if len(r.roster.ActivePlayers()) == 0 && r.roster.Len() > 0 {
		s.endToLobbyLocked(r)
	}
}

// --- reconnection slots ---

func (s *Service) openSlot(code, memberID string) {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	if old := s.slots[memberID]; old != nil {
		old.timer.Stop()
	}
	slot := &reconnectSlot{memberID: memberID, roomCode: code}
	slot.timer = time.AfterFunc(s.timings.ReconnectWindow, func() {
		s.expireSlot(memberID)
	})
	s.slots[memberID] = slot
}

func (s *Service) dropSlot(memberID string) {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	if slot := s.slots[memberID]; slot != nil {
		slot.timer.Stop()
		delete(s.slots, memberID)
	}
}

func (s *Service) dropSlotsForRoom(code string) {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	for id, slot := range s.slots {
		if slot.roomCode == code {
			slot.timer.Stop()
			delete(s.slots, id)
		}
	}
}

// expireSlot fires when the grace window closes without a reconnect: the
// member leaves for good.
func (s *Service) expireSlot(memberID string) {
	s.slotMu.Lock()
	slot := s.slots[memberID]
	if slot == nil {
		s.slotMu.Unlock()
		return
	}
	delete(s.slots, memberID)
	s.slotMu.Unlock()

	r, ok := s.store.Find(slot.roomCode)
	if !ok {
		return
	}
	r.mu.Lock()
	m := r.roster.Find(memberID)
	if m == nil || m.Connected {
		r.mu.Unlock()
		return
	}
	r.roster.Remove(memberID)
	s.emitLocked(r, protocol.TagMemberLeft, MemberLeftPayload{
		Name:    m.Name,
		Members: r.roster.Snapshot(),
	})
	s.afterDepartureLocked(r)
	destroy := r.roster.Len() == 0
	if destroy {
		r.closed = true
	}
	r.mu.Unlock()

	if destroy {
		s.teardown(slot.roomCode)
	}
	s.log.Info("reconnection window expired",
		zap.String("room", slot.roomCode),
		zap.String("member", memberID))
}

// teardown finishes destroying a room after its lock is released.
func (s *Service) teardown(code string) {
	s.store.Remove(code)
	s.pub.DropRoom(code)
	s.dropSlotsForRoom(code)
	s.log.Info("room destroyed", zap.String("room", code))
}
