package game

import "github.com/LuizAugustoFH-77/Trivion/internal/protocol"

// Publisher is the capability handed to the Service for delivering frames.
// Both methods are called while the room lock is held and must not block:
// the bus behind them pushes onto bounded per-subscriber queues.
type Publisher interface {
	Broadcast(roomCode string, frame protocol.Frame)
	SendTo(roomCode, memberID string, frame protocol.Frame)
	// Evict removes one subscriber after its queued frames flush and closes
	// its connection.
	Evict(roomCode, memberID string)
	// DropRoom detaches every subscriber of a destroyed room, leaving the
	// connections open for a new join.
	DropRoom(roomCode string)
}

// Outbound payload shapes. Each corresponds to one server tag in the wire
// protocol.

// StatePayload is the full room snapshot pushed on welcome, reconnect and
// get_state. Question is present during the question and results phases.
type StatePayload struct {
	Phase          Phase         `json:"phase"`
	Members        []MemberView  `json:"members"`
	Question       *QuestionView `json:"question,omitempty"`
	QuestionIndex  int           `json:"question_index"`
	TotalQuestions int           `json:"total_questions"`
}

// WelcomePayload answers a successful join on the joining connection.
type WelcomePayload struct {
	Member MemberView   `json:"member"`
	Room   RoomSummary  `json:"room"`
	State  StatePayload `json:"state"`
}

// ReconnectSuccessPayload answers a successful reconnect.
type ReconnectSuccessPayload struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	RoomCode string `json:"room_code"`
	Score    int    `json:"score"`
	Waiting  bool   `json:"waiting"`
}

// MemberJoinedPayload announces a new or returning member to the room.
type MemberJoinedPayload struct {
	Member  MemberView   `json:"member"`
	Members []MemberView `json:"members"`
}

// MemberLeftPayload announces a permanent departure.
type MemberLeftPayload struct {
	Name    string       `json:"name"`
	Members []MemberView `json:"members"`
}

// WaitingMemberPayload flags a member that joined mid-session and sits out
// until the next game.
type WaitingMemberPayload struct {
	Member MemberView `json:"member"`
}

// CountdownPayload opens the pre-question countdown.
type CountdownPayload struct {
	Seconds int `json:"seconds"`
}

// QuestionPayload carries the question now on screen. Number is 1-based;
// Timestamp is the logical time of emission, echoed back by answers.
type QuestionPayload struct {
	Question  QuestionView `json:"question"`
	Number    int          `json:"number"`
	Total     int          `json:"total"`
	Timestamp uint64       `json:"timestamp"`
}

// PlayerAnsweredPayload updates the answered counter during a question.
type PlayerAnsweredPayload struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// ResultsPayload closes a question: option stats, the revealed correct
// index and the current top of the ranking.
type ResultsPayload struct {
	Ranking []RankingEntry `json:"ranking"`
	Correct int            `json:"correct"`
	Stats   []int          `json:"stats"`
}

// PodiumPositionPayload reveals one podium rank, bottom-up.
type PodiumPositionPayload struct {
	Position int        `json:"position"`
	Member   MemberView `json:"member"`
}

// PodiumCompletePayload carries the full final ranking.
type PodiumCompletePayload struct {
	Ranking []RankingEntry `json:"ranking"`
}

// GameEndedPayload resets clients to the lobby with the member list.
type GameEndedPayload struct {
	Members []MemberView `json:"members"`
}

// KickedPayload is sent to a member removed by the administrator.
type KickedPayload struct {
	Reason string `json:"reason"`
}
