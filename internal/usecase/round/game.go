package usecase_round

import (
	"context"
	"log/slog"
	"time"

	"github.com/humanbelnik/singalong/core/internal/model"
	usecase_broker "github.com/humanbelnik/singalong/core/internal/usecase/broker"
	usecase_room "github.com/humanbelnik/singalong/core/internal/usecase/room"
)

// play drives one game. Every registry call carries the game id, so a loop whose
// room was deleted and recreated under the same id cannot touch the new game.
func (u *Usecase) play(ctx context.Context, roomID model.RoomID, game usecase_room.GameID, maxRounds int) {
	defer u.games.Done()
	defer u.forgetGame(roomID, game)
	defer u.registry.EndGame(roomID, game)

	turn := 0
	for round := 1; round <= maxRounds; round++ {
		if !u.registry.SetRound(roomID, game, round) {
			u.logger.Info("room closed during game", "room_id", roomID, "round", round)
			return
		}

		u.broadcaster.Broadcast(roomID, model.Event{
			Type:    model.EventGameIntro,
			Payload: model.GameIntroPayload{Round: round, MaxRounds: maxRounds},
		})
		if !sleep(ctx, u.timings.IntroPause) {
			return
		}

		for _, pid := range u.registry.TurnOrder(roomID) {
			if ctx.Err() != nil {
				return
			}
			u.playTurn(ctx, roomID, game, pid, round, maxRounds, turn)
			turn++
		}
	}
	if ctx.Err() != nil {
		return
	}

	scores, ok := u.registry.EndGame(roomID, game)
	if !ok {
		u.logger.Info("room closed before game result", "room_id", roomID)
		return
	}
	u.broadcaster.Broadcast(roomID, model.Event{
		Type:    model.EventGameResult,
		Payload: model.GameResultPayload{Scores: scores},
	})
	u.PublishMembers(roomID)
	u.logger.Info("game finished", "room_id", roomID, "turns", turn)
}

func (u *Usecase) playTurn(ctx context.Context, roomID model.RoomID, game usecase_room.GameID, pid model.ParticipantID, round, maxRounds, turn int) {
	log := u.logger.With("room_id", roomID, "participant_id", pid, "turn", turn)

	if !u.registry.IsMember(roomID, pid) {
		log.Info("turn skipped, participant left")
		return
	}
	kw, ok := u.registry.DrawKeyword(roomID, game)
	if !ok {
		log.Info("turn skipped, game no longer running")
		return
	}
	nickname, _ := u.registry.Nickname(roomID, pid)

	kwSlot := model.TurnSlot{Room: roomID, Participant: pid, Turn: turn, Phase: model.PhaseKeyword}
	u.broker.RegisterSlot(kwSlot, kw)
	u.broadcaster.Broadcast(roomID, model.Event{
		Type: model.EventKeywordPhase,
		Payload: model.KeywordPhasePayload{
			PlayerSid:  pid,
			PlayerNick: nickname,
			Keyword:    kw,
			Turn:       turn,
			Round:      round,
			MaxRounds:  maxRounds,
		},
	})
	if _, outcome := u.broker.Await(ctx, kwSlot, u.timings.KeywordPreview); outcome == usecase_broker.ForcedEmpty || ctx.Err() != nil {
		log.Info("turn skipped during keyword preview", "outcome", outcome.String())
		return
	}
	if !u.registry.IsMember(roomID, pid) {
		log.Info("turn skipped, participant left during keyword preview")
		return
	}

	recSlot := model.TurnSlot{Room: roomID, Participant: pid, Turn: turn, Phase: model.PhaseRecord}
	u.broker.RegisterSlot(recSlot, kw)
	u.broadcaster.Broadcast(roomID, model.Event{
		Type:    model.EventRecordBegin,
		Payload: model.RecordBeginPayload{PlayerSid: pid, Turn: turn},
	})
	sub, outcome := u.broker.Await(ctx, recSlot, u.timings.RecordWindow+u.timings.RecordGrace)
	if outcome != usecase_broker.Completed {
		log.Info("turn skipped without recording", "outcome", outcome.String())
		return
	}
	u.archiveRecording(ctx, recSlot, sub.Recording)

	listenStart := time.Now()
	gate := u.openGate(roomID)
	u.broadcaster.Broadcast(roomID, model.Event{
		Type: model.EventListenPhase,
		Payload: model.ListenPhasePayload{
			PlayerSid: pid,
			Audio:     sub.Recording.Audio,
			MIME:      sub.Recording.MIME,
		},
	})
	u.awaitListeners(ctx, gate)
	u.closeGate(roomID, gate)

	verdict := u.collect(ctx, sub.Computation, listenStart.Add(u.timings.ListenWindow+u.timings.RecognitionGrace), log)
	if ctx.Err() != nil {
		return
	}

	total, member := u.registry.AddScore(roomID, game, pid, verdict.Score)
	log.Info("turn scored",
		"matched", verdict.Matched,
		"source", verdict.Source,
		"score", verdict.Score,
		"total", total,
		"member", member)

	u.broadcaster.Broadcast(roomID, model.Event{
		Type: model.EventRoundResult,
		Payload: model.RoundResultPayload{
			Verdict:    verdict,
			PlayerSid:  pid,
			PlayerNick: nickname,
		},
	})
	sleep(ctx, u.timings.ResultPause)
}

// collect waits for recognition until deadline. A late computation is cancelled and scores zero.
func (u *Usecase) collect(ctx context.Context, c usecase_broker.Computation, deadline time.Time, log *slog.Logger) model.Verdict {
	if c == nil {
		return model.UnmatchedVerdict()
	}

	waitCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	verdict, err := c.Wait(waitCtx)
	if err != nil {
		c.Cancel()
		log.Warn("recognition missed its deadline", "error", err)
		return model.UnmatchedVerdict()
	}
	if verdict.Score < 0 {
		verdict.Score = 0
	}
	return verdict
}

func (u *Usecase) archiveRecording(ctx context.Context, slot model.TurnSlot, rec model.Recording) {
	if u.archive == nil {
		return
	}
	go func() {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		defer cancel()

		key, err := u.archive.Save(saveCtx, slot, rec)
		if err != nil {
			u.logger.Warn("recording not archived", "slot", slot.String(), "error", err)
			return
		}
		if key != "" {
			u.logger.Debug("recording archived", "slot", slot.String(), "key", key)
		}
	}()
}

func (u *Usecase) openGate(roomID model.RoomID) *listenGate {
	g := &listenGate{
		acked: make(map[model.ParticipantID]struct{}),
		done:  make(chan struct{}),
	}

	u.gatesMu.Lock()
	defer u.gatesMu.Unlock()
	u.gates[roomID] = g
	return g
}

func (u *Usecase) closeGate(roomID model.RoomID, g *listenGate) {
	u.gatesMu.Lock()
	defer u.gatesMu.Unlock()

	if cur, ok := u.gates[roomID]; ok && cur == g {
		delete(u.gates, roomID)
	}
}

// awaitListeners holds the listen window, ending early once every member acknowledged playback.
func (u *Usecase) awaitListeners(ctx context.Context, g *listenGate) {
	timer := time.NewTimer(u.timings.ListenWindow)
	defer timer.Stop()

	select {
	case <-g.done:
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (u *Usecase) checkQuorumLocked(roomID model.RoomID, g *listenGate) {
	if g.closed {
		return
	}
	members, err := u.registry.Members(roomID)
	if err == nil {
		for _, m := range members {
			if _, ok := g.acked[m.ID]; !ok {
				return
			}
		}
	}
	g.closed = true
	close(g.done)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
