package usecase_round

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/humanbelnik/singalong/core/internal/config"
	"github.com/humanbelnik/singalong/core/internal/model"
	usecase_broker "github.com/humanbelnik/singalong/core/internal/usecase/broker"
	usecase_room "github.com/humanbelnik/singalong/core/internal/usecase/room"
)

var (
	ErrKeywordPool    = errors.New("keyword pool unavailable")
	ErrNoOpenSlot     = errors.New("no open recording slot for this turn")
	ErrEmptyRecording = errors.New("empty recording")
)

const (
	archiveTimeout     = 30 * time.Second
	defaultMaxRounds   = 10
	defaultRoundsCount = 3
)

type Broadcaster interface {
	Broadcast(roomID model.RoomID, event model.Event)
	SendTo(roomID model.RoomID, pid model.ParticipantID, event model.Event)
}

type KeywordSource interface {
	Draw(ctx context.Context, n int) ([]model.Keyword, error)
}

type Recognizer interface {
	Start(ctx context.Context, raw []byte, kw model.Keyword) usecase_broker.Computation
}

type RecognizerFunc func(ctx context.Context, raw []byte, kw model.Keyword) usecase_broker.Computation

func (f RecognizerFunc) Start(ctx context.Context, raw []byte, kw model.Keyword) usecase_broker.Computation {
	return f(ctx, raw, kw)
}

type Archive interface {
	Save(ctx context.Context, slot model.TurnSlot, rec model.Recording) (string, error)
}

type Timings struct {
	IntroPause       time.Duration
	KeywordPreview   time.Duration
	RecordWindow     time.Duration
	RecordGrace      time.Duration
	ListenWindow     time.Duration
	RecognitionGrace time.Duration
	ResultPause      time.Duration

	DefaultRounds int
	MaxRounds     int
}

func TimingsFromConfig(cfg config.Game) Timings {
	return Timings{
		IntroPause:       cfg.IntroPause,
		KeywordPreview:   cfg.KeywordPreview,
		RecordWindow:     cfg.RecordWindow,
		RecordGrace:      cfg.RecordGrace,
		ListenWindow:     cfg.ListenWindow,
		RecognitionGrace: cfg.RecognitionGrace,
		ResultPause:      cfg.ResultPause,
		DefaultRounds:    cfg.DefaultRounds,
		MaxRounds:        cfg.MaxRounds,
	}
}

type runningGame struct {
	id     usecase_room.GameID
	cancel context.CancelFunc
}

type listenGate struct {
	acked  map[model.ParticipantID]struct{}
	done   chan struct{}
	closed bool
}

// Usecase runs one game loop per playing room and routes inbound
// game events to the slot the loop is parked on.
type Usecase struct {
	registry    *usecase_room.Registry
	broker      *usecase_broker.Broker
	broadcaster Broadcaster
	keywords    KeywordSource
	recognizer  Recognizer
	archive     Archive
	timings     Timings

	gatesMu sync.Mutex
	gates   map[model.RoomID]*listenGate

	runningMu sync.Mutex
	running   map[model.RoomID]runningGame

	games  sync.WaitGroup
	logger *slog.Logger
}

func New(
	registry *usecase_room.Registry,
	broker *usecase_broker.Broker,
	broadcaster Broadcaster,
	keywords KeywordSource,
	recognizer Recognizer,
	archive Archive,
	timings Timings,
) *Usecase {
	if timings.MaxRounds <= 0 {
		timings.MaxRounds = defaultMaxRounds
	}
	if timings.DefaultRounds <= 0 {
		timings.DefaultRounds = defaultRoundsCount
	}
	return &Usecase{
		registry:    registry,
		broker:      broker,
		broadcaster: broadcaster,
		keywords:    keywords,
		recognizer:  recognizer,
		archive:     archive,
		timings:     timings,
		gates:       make(map[model.RoomID]*listenGate),
		running:     make(map[model.RoomID]runningGame),
		logger:      slog.Default(),
	}
}

// StartGame validates the room and the keyword pool, then runs the game in the background.
// Validation failures are reported to the requester as start_failed.
func (u *Usecase) StartGame(ctx context.Context, roomID model.RoomID, pid model.ParticipantID, maxRounds int) error {
	if maxRounds <= 0 {
		maxRounds = u.timings.DefaultRounds
	}
	if maxRounds > u.timings.MaxRounds {
		return u.startFailed(roomID, pid, usecase_room.ErrInvalidRoundsNumber)
	}

	players, err := u.registry.CheckStart(roomID, pid)
	if err != nil {
		return u.startFailed(roomID, pid, err)
	}

	keywords, err := u.keywords.Draw(ctx, players*maxRounds)
	if err != nil {
		return u.startFailed(roomID, pid, errors.Join(ErrKeywordPool, err))
	}

	game, err := u.registry.BeginGame(roomID, pid, maxRounds, keywords)
	if err != nil {
		return u.startFailed(roomID, pid, err)
	}

	gameCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	u.runningMu.Lock()
	if stale, ok := u.running[roomID]; ok {
		stale.cancel()
	}
	u.running[roomID] = runningGame{id: game, cancel: cancel}
	u.runningMu.Unlock()

	u.games.Add(1)
	go u.play(gameCtx, roomID, game, maxRounds)
	return nil
}

// stopGame cancels the loop of a deleted room. A game already started in a
// room recreated under the same id is left running.
func (u *Usecase) stopGame(roomID model.RoomID) {
	u.runningMu.Lock()
	defer u.runningMu.Unlock()

	g, ok := u.running[roomID]
	if !ok || u.registry.Playing(roomID, g.id) {
		return
	}
	g.cancel()
	delete(u.running, roomID)
	u.logger.Info("game stopped, room deleted", "room_id", roomID, "game", g.id)
}

func (u *Usecase) forgetGame(roomID model.RoomID, game usecase_room.GameID) {
	u.runningMu.Lock()
	defer u.runningMu.Unlock()

	if g, ok := u.running[roomID]; ok && g.id == game {
		g.cancel()
		delete(u.running, roomID)
	}
}

// Wait blocks until every running game has finished.
func (u *Usecase) Wait() {
	u.games.Wait()
}

// Submit hands a finished recording to the turn waiting for it and starts recognition right away.
func (u *Usecase) Submit(ctx context.Context, roomID model.RoomID, pid model.ParticipantID, turn int, rec model.Recording) error {
	slot := model.TurnSlot{Room: roomID, Participant: pid, Turn: turn, Phase: model.PhaseRecord}

	kw, ok := u.broker.Keyword(slot)
	if !ok {
		return ErrNoOpenSlot
	}
	if len(rec.Audio) == 0 {
		u.broker.ForceCompleteEmpty(slot)
		return ErrEmptyRecording
	}

	computation := u.recognizer.Start(ctx, rec.Audio, kw)
	if !u.broker.Complete(slot, usecase_broker.Submission{Recording: rec, Computation: computation}) {
		computation.Cancel()
		return ErrNoOpenSlot
	}

	u.logger.Info("recording submitted",
		"room_id", roomID,
		"participant_id", pid,
		"turn", turn,
		"bytes", len(rec.Audio))
	return nil
}

// ListenAck records that a member finished playback of the current take.
func (u *Usecase) ListenAck(roomID model.RoomID, pid model.ParticipantID) {
	if !u.registry.IsMember(roomID, pid) {
		return
	}

	u.gatesMu.Lock()
	defer u.gatesMu.Unlock()

	g, ok := u.gates[roomID]
	if !ok {
		return
	}
	g.acked[pid] = struct{}{}
	u.checkQuorumLocked(roomID, g)
}

// Leave removes a participant and wakes whatever the room loop is waiting on for them.
func (u *Usecase) Leave(roomID model.RoomID, pid model.ParticipantID) {
	removed, roomDeleted := u.registry.Leave(roomID, pid)
	if roomDeleted {
		u.stopGame(roomID)
	}
	woken := u.broker.ForceCompleteParticipant(roomID, pid)

	u.gatesMu.Lock()
	if g, ok := u.gates[roomID]; ok {
		u.checkQuorumLocked(roomID, g)
	}
	u.gatesMu.Unlock()

	if woken > 0 {
		u.logger.Info("released waits of departed participant",
			"room_id", roomID,
			"participant_id", pid,
			"slots", woken)
	}
	if removed && !roomDeleted {
		u.PublishMembers(roomID)
	}
}

func (u *Usecase) PublishMembers(roomID model.RoomID) {
	members, err := u.registry.Members(roomID)
	if err != nil {
		return
	}
	u.broadcaster.Broadcast(roomID, model.Event{
		Type:    model.EventRoomUpdate,
		Payload: model.RoomUpdatePayload{Users: members},
	})
}

func (u *Usecase) startFailed(roomID model.RoomID, pid model.ParticipantID, err error) error {
	if errors.Is(err, usecase_room.ErrAlreadyPlaying) || errors.Is(err, usecase_room.ErrNotHost) {
		return err
	}

	u.logger.Warn("game start rejected", "room_id", roomID, "participant_id", pid, "error", err)
	u.broadcaster.SendTo(roomID, pid, model.Event{
		Type:    model.EventStartFailed,
		Payload: model.StartFailedPayload{Reason: reason(err)},
	})
	return err
}

func reason(err error) string {
	for _, sentinel := range []error{
		usecase_room.ErrNotReady,
		usecase_room.ErrNotEnoughKeywords,
		usecase_room.ErrNotEnoughPlayers,
		usecase_room.ErrRoomNotFound,
		usecase_room.ErrNotMember,
		usecase_room.ErrInvalidRoundsNumber,
		ErrKeywordPool,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
