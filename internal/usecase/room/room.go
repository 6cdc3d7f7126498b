package usecase_room

import (
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/humanbelnik/singalong/core/internal/model"
)

var (
	ErrRoomNotFound        = errors.New("no such room")
	ErrNotMember           = errors.New("not a room member")
	ErrNotHost             = errors.New("only the host can start the game")
	ErrAlreadyPlaying      = errors.New("game already in progress")
	ErrNotReady            = errors.New("every player must be ready with the microphone allowed")
	ErrNotEnoughKeywords   = errors.New("not enough keywords for this game")
	ErrNotEnoughPlayers    = errors.New("no players in the room")
	ErrInvalidRoundsNumber = errors.New("invalid number of rounds")
)

type room struct {
	id           model.RoomID
	order        []model.ParticipantID
	participants map[model.ParticipantID]*model.Participant
	host         model.ParticipantID
	state        model.RoomState

	game      GameID
	seated    map[model.ParticipantID]bool
	round     int
	maxRounds int
	keywords  []model.Keyword
	cursor    int
	scores    map[model.ParticipantID]int
}

// GameID tells games apart across the lifetime of the process. A loop holding an
// id that is no longer the room's current game is stale and its calls are no-ops.
type GameID uint64

// Snapshot is a copy of a room's public state.
type Snapshot struct {
	ID        model.RoomID        `json:"id"`
	State     model.RoomState     `json:"state"`
	Host      model.ParticipantID `json:"host"`
	Round     int                 `json:"round"`
	MaxRounds int                 `json:"maxRounds"`
	Members   []model.Member      `json:"users"`
}

type JoinRequest struct {
	ParticipantID model.ParticipantID
	UserID        string
	Nickname      string
	Avatar        string
}

// Registry owns every room of the process. All room state is mutated under its lock.
type Registry struct {
	mu     sync.Mutex
	rooms  map[model.RoomID]*room
	games  GameID
	logger *slog.Logger
}

func New() *Registry {
	return &Registry{
		rooms:  make(map[model.RoomID]*room),
		logger: slog.Default(),
	}
}

func (r *Registry) CreateOrGet(id model.RoomID) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createOrGetLocked(id).snapshot()
}

func (r *Registry) Remove(id model.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
}

func (r *Registry) Snapshot(id model.RoomID) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return Snapshot{}, ErrRoomNotFound
	}
	return rm.snapshot(), nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Join adds a participant, creating the room if needed. A participant with the same
// user id is treated as a stale connection and replaced. Returns the replaced ids.
func (r *Registry) Join(id model.RoomID, req JoinRequest) []model.ParticipantID {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm := r.createOrGetLocked(id)

	var stale []model.ParticipantID
	for pid, p := range rm.participants {
		if pid != req.ParticipantID && req.UserID != "" && p.UserID == req.UserID {
			stale = append(stale, pid)
		}
	}
	for _, pid := range stale {
		if rm.seated[pid] {
			rm.seated[req.ParticipantID] = true
		}
		rm.drop(pid)
		if rm.host == pid {
			rm.host = req.ParticipantID
		}
	}

	if rm.host == "" {
		rm.host = req.ParticipantID
	}
	if _, ok := rm.participants[req.ParticipantID]; !ok {
		rm.order = append(rm.order, req.ParticipantID)
	}
	rm.participants[req.ParticipantID] = &model.Participant{
		ID:       req.ParticipantID,
		UserID:   req.UserID,
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
		Ready:    req.ParticipantID == rm.host,
	}
	if _, ok := rm.scores[req.ParticipantID]; !ok {
		rm.scores[req.ParticipantID] = 0
	}

	r.logger.Info("participant joined",
		"room_id", id,
		"participant_id", req.ParticipantID,
		"replaced", len(stale))
	return stale
}

// Leave removes a participant. The room is deleted when it becomes empty.
func (r *Registry) Leave(id model.RoomID, pid model.ParticipantID) (removed bool, roomDeleted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return false, false
	}
	if _, ok := rm.participants[pid]; !ok {
		return false, false
	}
	rm.drop(pid)

	if len(rm.participants) == 0 {
		delete(r.rooms, id)
		r.logger.Info("room deleted", "room_id", id)
		return true, true
	}
	if rm.host == pid {
		rm.host = rm.order[0]
	}
	r.logger.Info("participant left", "room_id", id, "participant_id", pid, "host", rm.host)
	return true, false
}

func (r *Registry) ToggleReady(id model.RoomID, pid model.ParticipantID) error {
	return r.withParticipant(id, pid, func(p *model.Participant) {
		p.Ready = !p.Ready
	})
}

func (r *Registry) ArmMic(id model.RoomID, pid model.ParticipantID) error {
	return r.withParticipant(id, pid, func(p *model.Participant) {
		p.MicArmed = true
	})
}

func (r *Registry) Members(id model.RoomID) ([]model.Member, error) {
	snap, err := r.Snapshot(id)
	if err != nil {
		return nil, err
	}
	return snap.Members, nil
}

func (r *Registry) IsMember(id model.RoomID, pid model.ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return false
	}
	_, ok = rm.participants[pid]
	return ok
}

func (r *Registry) Nickname(id model.RoomID, pid model.ParticipantID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return "", false
	}
	p, ok := rm.participants[pid]
	if !ok {
		return "", false
	}
	return p.Nickname, true
}

// CheckStart validates that pid may start a game now and returns the number of players.
func (r *Registry) CheckStart(id model.RoomID, pid model.ParticipantID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return 0, ErrRoomNotFound
	}
	return rm.checkStart(pid)
}

// BeginGame switches the room to playing with a fresh keyword pool and zeroed scores.
// The pool must hold a keyword for every turn of the game. Only the members present
// now take turns; later joiners wait for the next game.
func (r *Registry) BeginGame(id model.RoomID, pid model.ParticipantID, maxRounds int, keywords []model.Keyword) (GameID, error) {
	if maxRounds <= 0 {
		return 0, ErrInvalidRoundsNumber
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return 0, ErrRoomNotFound
	}
	players, err := rm.checkStart(pid)
	if err != nil {
		return 0, err
	}
	if len(keywords) < players*maxRounds {
		return 0, ErrNotEnoughKeywords
	}

	r.games++
	rm.game = r.games
	rm.seated = make(map[model.ParticipantID]bool, len(rm.participants))
	for p := range rm.participants {
		rm.seated[p] = true
	}
	rm.state = model.StatePlaying
	rm.round = 0
	rm.maxRounds = maxRounds
	rm.keywords = slices.Clone(keywords)
	rm.cursor = 0
	rm.scores = make(map[model.ParticipantID]int, len(rm.participants))
	for p := range rm.participants {
		rm.scores[p] = 0
	}

	r.logger.Info("game started", "room_id", id, "game", rm.game, "players", players, "rounds", maxRounds)
	return rm.game, nil
}

// EndGame puts the room back to waiting and returns the final leaderboard.
// It reports false when game is not the room's running game.
func (r *Registry) EndGame(id model.RoomID, game GameID) ([]model.ScoreEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.current(id, game)
	if !ok {
		return nil, false
	}
	rm.state = model.StateWaiting
	rm.seated = nil
	return rm.leaderboard(), true
}

// Playing reports whether game is the room's running game.
func (r *Registry) Playing(id model.RoomID, game GameID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.current(id, game)
	return ok
}

// SetRound reports false when game is no longer running in the room.
func (r *Registry) SetRound(id model.RoomID, game GameID, round int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.current(id, game)
	if !ok {
		return false
	}
	rm.round = round
	return true
}

// TurnOrder returns a copy of the turn order. While a game runs, members who
// joined after it started are left out.
func (r *Registry) TurnOrder(id model.RoomID) []model.ParticipantID {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return nil
	}
	if rm.state != model.StatePlaying {
		return slices.Clone(rm.order)
	}
	out := make([]model.ParticipantID, 0, len(rm.order))
	for _, pid := range rm.order {
		if rm.seated[pid] {
			out = append(out, pid)
		}
	}
	return out
}

// DrawKeyword returns the next unused keyword of the game.
func (r *Registry) DrawKeyword(id model.RoomID, game GameID) (model.Keyword, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.current(id, game)
	if !ok || rm.cursor >= len(rm.keywords) {
		return model.Keyword{}, false
	}
	kw := rm.keywords[rm.cursor]
	rm.cursor++
	return kw, true
}

// AddScore adds a non-negative delta to a current member's total and returns the new total.
func (r *Registry) AddScore(id model.RoomID, game GameID, pid model.ParticipantID, delta int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.current(id, game)
	if !ok {
		return 0, false
	}
	if _, ok := rm.participants[pid]; !ok {
		return 0, false
	}
	if delta > 0 {
		rm.scores[pid] += delta
	}
	return rm.scores[pid], true
}

// Leaderboard lists remaining members in turn order with their totals.
func (r *Registry) Leaderboard(id model.RoomID) []model.ScoreEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return nil
	}
	return rm.leaderboard()
}

func (r *Registry) current(id model.RoomID, game GameID) (*room, bool) {
	rm, ok := r.rooms[id]
	if !ok || rm.state != model.StatePlaying || rm.game != game {
		return nil, false
	}
	return rm, true
}

func (r *Registry) createOrGetLocked(id model.RoomID) *room {
	rm, ok := r.rooms[id]
	if !ok {
		rm = &room{
			id:           id,
			participants: make(map[model.ParticipantID]*model.Participant),
			state:        model.StateWaiting,
			scores:       make(map[model.ParticipantID]int),
		}
		r.rooms[id] = rm
		r.logger.Info("room created", "room_id", id)
	}
	return rm
}

func (r *Registry) withParticipant(id model.RoomID, pid model.ParticipantID, fn func(p *model.Participant)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	p, ok := rm.participants[pid]
	if !ok {
		return ErrNotMember
	}
	fn(p)
	return nil
}

func (rm *room) leaderboard() []model.ScoreEntry {
	out := make([]model.ScoreEntry, 0, len(rm.order))
	for _, pid := range rm.order {
		out = append(out, model.ScoreEntry{
			ParticipantID: pid,
			Nickname:      rm.participants[pid].Nickname,
			Score:         rm.scores[pid],
		})
	}
	return out
}

func (rm *room) drop(pid model.ParticipantID) {
	delete(rm.participants, pid)
	delete(rm.seated, pid)
	rm.order = slices.DeleteFunc(rm.order, func(o model.ParticipantID) bool { return o == pid })
}

func (rm *room) checkStart(pid model.ParticipantID) (int, error) {
	if _, ok := rm.participants[pid]; !ok {
		return 0, ErrNotMember
	}
	if rm.host != pid {
		return 0, ErrNotHost
	}
	if rm.state == model.StatePlaying {
		return 0, ErrAlreadyPlaying
	}
	if len(rm.participants) == 0 {
		return 0, ErrNotEnoughPlayers
	}
	for _, p := range rm.participants {
		if !p.Ready || !p.MicArmed {
			return 0, ErrNotReady
		}
	}
	return len(rm.participants), nil
}

func (rm *room) snapshot() Snapshot {
	members := make([]model.Member, 0, len(rm.order))
	for _, pid := range rm.order {
		p := rm.participants[pid]
		members = append(members, model.Member{
			ID:       p.ID,
			UserID:   p.UserID,
			Nickname: p.Nickname,
			Avatar:   p.Avatar,
			Ready:    p.Ready,
			Mic:      p.MicArmed,
			IsHost:   p.ID == rm.host,
		})
	}
	return Snapshot{
		ID:        rm.id,
		State:     rm.state,
		Host:      rm.host,
		Round:     rm.round,
		MaxRounds: rm.maxRounds,
		Members:   members,
	}
}
