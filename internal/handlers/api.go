// Package handlers is the REST surface: room inspection, question bank
// management and the trusted admin verbs. Everything room-scoped runs the
// same coordinator operations as the socket commands.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/LuizAugustoFH-77/Trivion/internal/game"
	"github.com/LuizAugustoFH-77/Trivion/internal/store"
)

// API holds the REST handlers' dependencies.
type API struct {
	svc       *game.Service
	registry  *store.Registry
	publicURL string
	log       *zap.Logger
}

// NewAPI builds the REST surface. publicURL, when set, is the externally
// reachable base used in QR join links.
func NewAPI(svc *game.Service, registry *store.Registry, publicURL string, log *zap.Logger) *API {
	return &API{
		svc:       svc,
		registry:  registry,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
	}
}

// Routes mounts every endpoint under the given router.
func (a *API) Routes(r chi.Router) {
	r.Get("/health", a.Health)
	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", a.ListRooms)
		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", a.GetRoom)
			r.Delete("/", a.CloseRoom)
			r.Get("/qr", a.QRCode)

			r.Get("/questions", a.ListQuestions)
			r.Post("/questions", a.AddQuestion)
			r.Delete("/questions", a.ClearQuestions)
			r.Delete("/questions/{index}", a.RemoveQuestion)

			r.Get("/game/state", a.GameState)
			r.Post("/game/start", a.StartGame)
			r.Post("/game/next", a.NextQuestion)
			r.Post("/game/end", a.EndGame)
			r.Post("/game/back-to-lobby", a.BackToLobby)

			r.Delete("/members/{id}", a.RemoveMember)
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeOK wraps the payload in the {status:"ok", …} envelope.
func writeOK(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"status": "ok"}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, game.ErrRoomNotFound) || errors.Is(err, game.ErrMemberNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]any{"status": "error", "message": err.Error()})
}

func roomCode(r *http.Request) string {
	return strings.ToUpper(chi.URLParam(r, "code"))
}

// Health reports liveness and the live room count.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]any{"rooms": a.registry.Count()})
}

// ListRooms returns the public room summaries.
func (a *API) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]any{"rooms": a.registry.ListPublic()})
}

// GetRoom returns one room's summary, public or not.
func (a *API) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, ok := a.registry.Find(roomCode(r))
	if !ok {
		writeError(w, game.ErrRoomNotFound)
		return
	}
	writeOK(w, map[string]any{"room": room.Summary()})
}

// CloseRoom destroys a room, telling its members first.
func (a *API) CloseRoom(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.CloseRoom(roomCode(r)); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, nil)
}

// ListQuestions returns the room's question bank, answers included; this
// surface is for the quiz author, not the players.
func (a *API) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := a.svc.Questions(roomCode(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]any{"questions": questions})
}

// AddQuestion appends one question to the bank.
func (a *API) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var q game.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, errors.New("corpo da requisição inválido"))
		return
	}
	code := roomCode(r)
	if err := a.svc.AddQuestion(code, q); err != nil {
		writeError(w, err)
		return
	}
	questions, err := a.svc.Questions(code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]any{"count": len(questions)})
}

// RemoveQuestion deletes one question by position.
func (a *API) RemoveQuestion(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, errors.New("índice de pergunta inválido"))
		return
	}
	if err := a.svc.RemoveQuestion(roomCode(r), index); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, nil)
}

// ClearQuestions empties the bank.
func (a *API) ClearQuestions(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.ClearQuestions(roomCode(r)); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, nil)
}

// GameState returns the same snapshot the socket's get_state pushes.
func (a *API) GameState(w http.ResponseWriter, r *http.Request) {
	state, err := a.svc.GetState(roomCode(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]any{"state": state})
}

// The game verbs run as the trusted administrator.

func (a *API) StartGame(w http.ResponseWriter, r *http.Request) {
	a.adminVerb(w, r, a.svc.StartGame)
}

func (a *API) NextQuestion(w http.ResponseWriter, r *http.Request) {
	a.adminVerb(w, r, a.svc.NextStep)
}

func (a *API) EndGame(w http.ResponseWriter, r *http.Request) {
	a.adminVerb(w, r, a.svc.EndGame)
}

func (a *API) BackToLobby(w http.ResponseWriter, r *http.Request) {
	a.adminVerb(w, r, a.svc.BackToLobby)
}

func (a *API) adminVerb(w http.ResponseWriter, r *http.Request, fn func(code, actorID string) error) {
	if err := fn(roomCode(r), ""); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, nil)
}

// RemoveMember kicks a member out of the room.
func (a *API) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.RemoveMember(roomCode(r), "", chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, nil)
}
