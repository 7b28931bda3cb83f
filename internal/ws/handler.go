package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/LuizAugustoFH-77/Trivion/internal/bus"
	"github.com/LuizAugustoFH-77/Trivion/internal/game"
	"github.com/LuizAugustoFH-77/Trivion/internal/protocol"
	"github.com/LuizAugustoFH-77/Trivion/internal/store"
)

// Options tune per-connection behavior. Zero values fall back to the
// defaults below.
type Options struct {
	QueueSize     int
	MaxFrameBytes int64
	PingInterval  time.Duration
	PongTimeout   time.Duration
}

// Handler owns the websocket endpoint and routes inbound frames to the
// game coordinator.
type Handler struct {
	svc      *game.Service
	registry *store.Registry
	bus      *bus.Bus
	opts     Options
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler builds the endpoint.
func NewHandler(svc *game.Service, registry *store.Registry, b *bus.Bus, opts Options, log *zap.Logger) *Handler {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.MaxFrameBytes <= 0 {
		opts.MaxFrameBytes = 4096
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 15 * time.Second
	}
	if opts.PongTimeout <= 0 {
		opts.PongTimeout = 30 * time.Second
	}
	return &Handler{
		svc:      svc,
		registry: registry,
		bus:      b,
		opts:     opts,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The player UI may be served from another origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and runs the connection until it dies. An
// optional ?room=CODE preselects the room for a join_room frame that
// omits the code, which is how the QR flow lands.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := newClient(h, conn, h.opts.QueueSize, h.log)
	if room := r.URL.Query().Get("room"); room != "" {
		c.preselect = strings.ToUpper(strings.TrimSpace(room))
	}
	h.log.Debug("connection open", zap.String("remote", r.RemoteAddr))

	go c.writePump(h.opts.PingInterval)
	c.readPump(h.opts.MaxFrameBytes, h.opts.PongTimeout)

	c.closeSend()
	h.teardown(c)
	h.log.Debug("connection closed", zap.String("remote", r.RemoteAddr))
}

// teardown detaches a dead connection and starts the member's grace
// window.
func (h *Handler) teardown(c *Client) {
	roomCode, memberID := c.binding()
	if memberID == "" {
		return
	}
	c.clearBinding()
	h.bus.Unsubscribe(roomCode, memberID, c)
	h.svc.Disconnect(roomCode, memberID)
}

type availableRoomsReply struct {
	Rooms []game.RoomSummary `json:"rooms"`
}

type roomCreatedReply struct {
	Room game.RoomSummary `json:"room"`
	Code string           `json:"code"`
}

func (h *Handler) dispatch(c *Client, data []byte) {
	if !c.limiter.Allow() {
		c.sendError("muitas mensagens, aguarde um instante")
		return
	}
	in, err := protocol.DecodeInbound(data)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	switch in.Tag {
	case protocol.TagPongHeartbeat:
		// Liveness was already refreshed by the read loop.
	case protocol.TagListRooms:
		c.sendFrame(protocol.TagAvailableRooms, availableRoomsReply{Rooms: h.registry.ListPublic()})
	case protocol.TagCreateRoom:
		h.createRoom(c, in)
	case protocol.TagJoinRoom:
		h.joinRoom(c, in)
	case protocol.TagLeaveRoom:
		h.leaveRoom(c)
	case protocol.TagReconnect:
		h.reconnect(c, in)
	case protocol.TagAnswer:
		h.answer(c, in)
	case protocol.TagGetState:
		h.getState(c)
	case protocol.TagStartGame:
		h.adminCommand(c, h.svc.StartGame)
	case protocol.TagNextQuestion:
		h.adminCommand(c, h.svc.NextStep)
	case protocol.TagEndGame:
		h.adminCommand(c, h.svc.EndGame)
	case protocol.TagBackToLobby:
		h.adminCommand(c, h.svc.BackToLobby)
	case protocol.TagRemoveMember:
		h.removeMember(c, in)
	default:
		c.sendError("evento desconhecido: " + string(in.Tag))
	}
}

func (h *Handler) createRoom(c *Client, in protocol.Inbound) {
	var p protocol.CreateRoomPayload
	if err := in.Bind(&p); err != nil {
		c.sendError(err.Error())
		return
	}
	room, err := h.registry.Create(p.Name, p.IsPublic(), p.Password)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendFrame(protocol.TagRoomCreated, roomCreatedReply{Room: room.Summary(), Code: room.Code})
}

func (h *Handler) joinRoom(c *Client, in protocol.Inbound) {
	if _, memberID := c.binding(); memberID != "" {
		c.sendError("saia da sala atual antes de entrar em outra")
		return
	}
	var p protocol.JoinRoomPayload
	if err := in.Bind(&p); err != nil {
		c.sendError(err.Error())
		return
	}
	// The code must match the bus key, which is the canonical upper-case
	// room code.
	code := strings.ToUpper(strings.TrimSpace(p.Code))
	if code == "" {
		code = c.preselect
	}
	view, err := h.svc.Join(code, p.Name, p.Password, p.AsAdmin, func(memberID string) {
		h.bus.Subscribe(code, memberID, c)
	})
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.bind(code, view.ID)
}

func (h *Handler) leaveRoom(c *Client) {
	roomCode, memberID := c.binding()
	if memberID == "" {
		c.sendError(game.ErrNotConnected.Error())
		return
	}
	c.clearBinding()
	h.bus.Unsubscribe(roomCode, memberID, c)
	if err := h.svc.Leave(roomCode, memberID); err != nil {
		c.sendError(err.Error())
	}
}

func (h *Handler) reconnect(c *Client, in protocol.Inbound) {
	if _, memberID := c.binding(); memberID != "" {
		c.sendError("saia da sala atual antes de reconectar")
		return
	}
	var p protocol.ReconnectPayload
	if err := in.Bind(&p); err != nil {
		c.sendError(err.Error())
		return
	}
	res, err := h.svc.Reconnect(p.MemberID, func(roomCode string) {
		h.bus.Subscribe(roomCode, p.MemberID, c)
	})
	if err != nil {
		c.sendFrame(protocol.TagReconnectFailed, protocol.ErrorPayload{Message: err.Error()})
		return
	}
	c.bind(res.RoomCode, res.MemberID)
}

func (h *Handler) answer(c *Client, in protocol.Inbound) {
	roomCode, memberID := c.binding()
	if memberID == "" {
		c.sendError(game.ErrNotConnected.Error())
		return
	}
	var p protocol.AnswerPayload
	if err := in.Bind(&p); err != nil {
		c.sendError(err.Error())
		return
	}
	if err := h.svc.SubmitAnswer(roomCode, memberID, p.Choice, p.Timestamp); err != nil {
		c.sendError(err.Error())
	}
}

func (h *Handler) getState(c *Client) {
	roomCode, memberID := c.binding()
	if memberID == "" {
		c.sendError(game.ErrNotConnected.Error())
		return
	}
	if err := h.svc.PushState(roomCode, memberID); err != nil {
		c.sendError(err.Error())
	}
}

func (h *Handler) adminCommand(c *Client, fn func(code, actorID string) error) {
	roomCode, memberID := c.binding()
	if memberID == "" {
		c.sendError(game.ErrNotConnected.Error())
		return
	}
	if err := fn(roomCode, memberID); err != nil {
		c.sendError(err.Error())
	}
}

func (h *Handler) removeMember(c *Client, in protocol.Inbound) {
	roomCode, memberID := c.binding()
	if memberID == "" {
		c.sendError(game.ErrNotConnected.Error())
		return
	}
	var p protocol.RemoveMemberPayload
	if err := in.Bind(&p); err != nil {
		c.sendError(err.Error())
		return
	}
	if err := h.svc.RemoveMember(roomCode, memberID, p.MemberID); err != nil {
		c.sendError(err.Error())
	}
}
