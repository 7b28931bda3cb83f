// Package protocol defines the framed JSON wire protocol spoken on the
// persistent channel: a closed set of tags plus typed payloads. Unknown
// inbound tags are rejected by the dispatcher with an error frame.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Tag names one event kind on the wire.
type Tag string

// Client → server tags.
const (
	TagListRooms     Tag = "list_rooms"
	TagCreateRoom    Tag = "create_room"
	TagJoinRoom      Tag = "join_room"
	TagLeaveRoom     Tag = "leave_room"
	TagReconnect     Tag = "reconnect"
	TagAnswer        Tag = "answer"
	TagGetState      Tag = "get_state"
	TagPongHeartbeat Tag = "pong_heartbeat"

	// Administrator commands; the dispatcher checks the sender's role.
	TagStartGame    Tag = "start_game"
	TagNextQuestion Tag = "next_question"
	TagEndGame      Tag = "end_game"
	TagBackToLobby  Tag = "back_to_lobby"
	TagRemoveMember Tag = "remove_member"
)

// Server → client tags.
const (
	TagAvailableRooms   Tag = "available_rooms"
	TagRoomCreated      Tag = "room_created"
	TagWelcome          Tag = "welcome"
	TagReconnectSuccess Tag = "reconnect_success"
	TagReconnectFailed  Tag = "reconnect_failed"
	TagState            Tag = "state"
	TagMemberJoined     Tag = "member_joined"
	TagMemberLeft       Tag = "member_left"
	TagWaitingMember    Tag = "waiting_member"
	TagCountdown        Tag = "countdown"
	TagQuestion         Tag = "question"
	TagPlayerAnswered   Tag = "player_answered"
	TagResults          Tag = "results"
	TagPodiumStart      Tag = "podium_start"
	TagPodiumPosition   Tag = "podium_position"
	TagPodiumComplete   Tag = "podium_complete"
	TagGameEnded        Tag = "game_ended"
	TagRoomClosed       Tag = "room_closed"
	TagKicked           Tag = "kicked"
	TagPingHeartbeat    Tag = "ping_heartbeat"
	TagError            Tag = "error"
)

// Frame is the outbound envelope. TS is the room's logical timestamp at
// emission; room-less frames (listings, errors, heartbeats) leave it zero.
type Frame struct {
	Tag     Tag    `json:"tag"`
	Payload any    `json:"payload,omitempty"`
	TS      uint64 `json:"ts,omitempty"`
}

// NewFrame builds an outbound frame.
func NewFrame(tag Tag, payload any, ts uint64) Frame {
	return Frame{Tag: tag, Payload: payload, TS: ts}
}

// Inbound is the envelope of a client frame; the payload stays raw until
// the tag selects its type.
type Inbound struct {
	Tag     Tag             `json:"tag"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeInbound parses one client frame.
func DecodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("quadro inválido: %w", err)
	}
	if in.Tag == "" {
		return Inbound{}, fmt.Errorf("quadro sem tag")
	}
	return in, nil
}

// Bind decodes the raw payload into the tag's typed struct. A missing
// payload is allowed and leaves the target zero-valued.
func (in Inbound) Bind(v any) error {
	if len(in.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(in.Payload, v); err != nil {
		return fmt.Errorf("payload inválido para %s: %w", in.Tag, err)
	}
	return nil
}

// Inbound payload shapes.

// CreateRoomPayload creates a room. Public defaults to true when omitted.
type CreateRoomPayload struct {
	Name     string `json:"name"`
	Public   *bool  `json:"public"`
	Password string `json:"password"`
}

// IsPublic resolves the optional visibility flag.
func (p CreateRoomPayload) IsPublic() bool {
	return p.Public == nil || *p.Public
}

// JoinRoomPayload enters a room by code.
type JoinRoomPayload struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Password string `json:"password"`
	AsAdmin  bool   `json:"as_admin"`
}

// ReconnectPayload resumes a session within the grace window.
type ReconnectPayload struct {
	MemberID string `json:"member_id"`
}

// AnswerPayload submits one answer. Timestamp echoes the latest logical
// time the client saw.
type AnswerPayload struct {
	Choice    int    `json:"choice"`
	Timestamp uint64 `json:"timestamp"`
}

// RemoveMemberPayload kicks a member (administrator only).
type RemoveMemberPayload struct {
	MemberID string `json:"member_id"`
}

// ErrorPayload carries a user-readable message; also used by
// reconnect_failed.
type ErrorPayload struct {
	Message string `json:"message"`
}
