package usecase_room

import (
	"testing"

	"github.com/humanbelnik/singalong/core/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type UsecaseRoomUnitSuite struct {
	suite.Suite
}

func validRoomID() model.RoomID {
	return model.RoomID("room-1")
}

func joinRequest(pid, user string) JoinRequest {
	return JoinRequest{
		ParticipantID: model.ParticipantID(pid),
		UserID:        user,
		Nickname:      "nick-" + pid,
		Avatar:        "avatar.png",
	}
}

func validKeywords(n int) []model.Keyword {
	kws := make([]model.Keyword, n)
	for i := range n {
		kws[i] = model.Keyword{Type: model.KeywordByPerformer, Name: string(rune('a' + i))}
	}
	return kws
}

// readyRoom joins every pid and arms everyone so the first pid can start.
func readyRoom(r *Registry, pids ...string) {
	for _, pid := range pids {
		r.Join(validRoomID(), joinRequest(pid, "user-"+pid))
		_ = r.ArmMic(validRoomID(), model.ParticipantID(pid))
	}
	for _, pid := range pids[1:] {
		_ = r.ToggleReady(validRoomID(), model.ParticipantID(pid))
	}
}

func (s *UsecaseRoomUnitSuite) TestCreateOrGetAndRemove(t provider.T) {
	t.Parallel()

	r := New()
	snap := r.CreateOrGet(validRoomID())
	assert.Equal(t, validRoomID(), snap.ID)
	assert.Equal(t, model.StateWaiting, snap.State)
	assert.Equal(t, 1, r.Len())

	r.CreateOrGet(validRoomID())
	assert.Equal(t, 1, r.Len())

	r.Remove(validRoomID())
	assert.Equal(t, 0, r.Len())
	r.Remove(validRoomID())
}

func (s *UsecaseRoomUnitSuite) TestJoinLeave(t provider.T) {
	t.Parallel()

	t.Run("Should make the first participant a ready host", func(t provider.T) {
		r := New()
		r.Join(validRoomID(), joinRequest("p1", "u1"))
		r.Join(validRoomID(), joinRequest("p2", "u2"))

		members, err := r.Members(validRoomID())
		assert.NoError(t, err)
		assert.Len(t, members, 2)
		assert.True(t, members[0].IsHost)
		assert.True(t, members[0].Ready)
		assert.False(t, members[1].IsHost)
		assert.False(t, members[1].Ready)
	})

	t.Run("Should reassign host and delete empty room", func(t provider.T) {
		r := New()
		r.Join(validRoomID(), joinRequest("p1", "u1"))
		r.Join(validRoomID(), joinRequest("p2", "u2"))

		removed, deleted := r.Leave(validRoomID(), "p1")
		assert.True(t, removed)
		assert.False(t, deleted)

		snap, err := r.Snapshot(validRoomID())
		assert.NoError(t, err)
		assert.Equal(t, model.ParticipantID("p2"), snap.Host)

		removed, deleted = r.Leave(validRoomID(), "p2")
		assert.True(t, removed)
		assert.True(t, deleted)
		assert.Equal(t, 0, r.Len())

		_, err = r.Snapshot(validRoomID())
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("Should replace a stale connection of the same user", func(t provider.T) {
		r := New()
		r.Join(validRoomID(), joinRequest("old", "u1"))
		r.Join(validRoomID(), joinRequest("p2", "u2"))

		stale := r.Join(validRoomID(), joinRequest("new", "u1"))
		assert.Equal(t, []model.ParticipantID{"old"}, stale)
		assert.False(t, r.IsMember(validRoomID(), "old"))

		snap, _ := r.Snapshot(validRoomID())
		assert.Equal(t, model.ParticipantID("new"), snap.Host)
		assert.Equal(t, []model.ParticipantID{"p2", "new"}, r.TurnOrder(validRoomID()))

		removed, _ := r.Leave(validRoomID(), "old")
		assert.False(t, removed, "late disconnect of the stale connection is ignored")
	})
}

func (s *UsecaseRoomUnitSuite) TestBeginGame(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		setup         func(r *Registry)
		starter       model.ParticipantID
		rounds        int
		keywords      int
		expectedError error
	}{
		{
			name:     "Should start when everyone is ready",
			setup:    func(r *Registry) { readyRoom(r, "p1", "p2") },
			starter:  "p1",
			rounds:   2,
			keywords: 4,
		},
		{
			name:          "Should reject a non-host",
			setup:         func(r *Registry) { readyRoom(r, "p1", "p2") },
			starter:       "p2",
			rounds:        1,
			keywords:      2,
			expectedError: ErrNotHost,
		},
		{
			name: "Should reject when a microphone is not armed",
			setup: func(r *Registry) {
				readyRoom(r, "p1")
				r.Join(validRoomID(), joinRequest("p2", "u2"))
				_ = r.ToggleReady(validRoomID(), "p2")
			},
			starter:       "p1",
			rounds:        1,
			keywords:      2,
			expectedError: ErrNotReady,
		},
		{
			name:          "Should reject a starved keyword pool",
			setup:         func(r *Registry) { readyRoom(r, "p1", "p2") },
			starter:       "p1",
			rounds:        2,
			keywords:      3,
			expectedError: ErrNotEnoughKeywords,
		},
		{
			name:          "Should reject zero rounds",
			setup:         func(r *Registry) { readyRoom(r, "p1") },
			starter:       "p1",
			rounds:        0,
			keywords:      1,
			expectedError: ErrInvalidRoundsNumber,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := New()
			tc.setup(r)

			game, err := r.BeginGame(validRoomID(), tc.starter, tc.rounds, validKeywords(tc.keywords))

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.True(t, r.Playing(validRoomID(), game))
			snap, _ := r.Snapshot(validRoomID())
			assert.Equal(t, model.StatePlaying, snap.State)

			_, err = r.BeginGame(validRoomID(), tc.starter, tc.rounds, validKeywords(tc.keywords))
			assert.ErrorIs(t, err, ErrAlreadyPlaying)
		})
	}
}

func (s *UsecaseRoomUnitSuite) TestKeywordDraws(t provider.T) {
	t.Parallel()

	r := New()
	readyRoom(r, "p1")
	game, err := r.BeginGame(validRoomID(), "p1", 2, validKeywords(2))
	assert.NoError(t, err)

	seen := map[string]bool{}
	for range 2 {
		kw, ok := r.DrawKeyword(validRoomID(), game)
		assert.True(t, ok)
		assert.False(t, seen[kw.Name], "keyword drawn twice")
		seen[kw.Name] = true
	}
	_, ok := r.DrawKeyword(validRoomID(), game)
	assert.False(t, ok)
}

func (s *UsecaseRoomUnitSuite) TestScores(t provider.T) {
	t.Parallel()

	r := New()
	readyRoom(r, "p1", "p2")
	game, err := r.BeginGame(validRoomID(), "p1", 1, validKeywords(2))
	assert.NoError(t, err)

	prev := 0
	for _, delta := range []int{10, 0, -5, 70} {
		total, ok := r.AddScore(validRoomID(), game, "p1", delta)
		assert.True(t, ok)
		assert.GreaterOrEqual(t, total, prev, "score never decreases")
		prev = total
	}
	assert.Equal(t, 80, prev)

	r.Leave(validRoomID(), "p2")
	_, ok := r.AddScore(validRoomID(), game, "p2", 50)
	assert.False(t, ok)

	expected := []model.ScoreEntry{{ParticipantID: "p1", Nickname: "nick-p1", Score: 80}}
	assert.Equal(t, expected, r.Leaderboard(validRoomID()))

	board, ok := r.EndGame(validRoomID(), game)
	assert.True(t, ok)
	assert.Equal(t, expected, board)
	snap, _ := r.Snapshot(validRoomID())
	assert.Equal(t, model.StateWaiting, snap.State)

	_, ok = r.EndGame(validRoomID(), game)
	assert.False(t, ok, "a finished game cannot be ended twice")
}

func (s *UsecaseRoomUnitSuite) TestStaleGameIsIgnored(t provider.T) {
	t.Parallel()

	r := New()
	readyRoom(r, "p1")
	stale, err := r.BeginGame(validRoomID(), "p1", 1, validKeywords(1))
	assert.NoError(t, err)

	_, deleted := r.Leave(validRoomID(), "p1")
	assert.True(t, deleted)

	readyRoom(r, "p2")
	game, err := r.BeginGame(validRoomID(), "p2", 1, validKeywords(1))
	assert.NoError(t, err)
	assert.NotEqual(t, stale, game)

	assert.False(t, r.Playing(validRoomID(), stale))
	assert.False(t, r.SetRound(validRoomID(), stale, 1))
	_, ok := r.DrawKeyword(validRoomID(), stale)
	assert.False(t, ok, "a stale game must not consume the new pool")
	_, ok = r.AddScore(validRoomID(), stale, "p2", 50)
	assert.False(t, ok)
	_, ok = r.EndGame(validRoomID(), stale)
	assert.False(t, ok)

	snap, _ := r.Snapshot(validRoomID())
	assert.Equal(t, model.StatePlaying, snap.State, "the new game keeps running")
	_, ok = r.DrawKeyword(validRoomID(), game)
	assert.True(t, ok)
}

func (s *UsecaseRoomUnitSuite) TestLateJoinerWaitsForNextGame(t provider.T) {
	t.Parallel()

	r := New()
	readyRoom(r, "p1", "p2")
	game, err := r.BeginGame(validRoomID(), "p1", 1, validKeywords(2))
	assert.NoError(t, err)

	r.Join(validRoomID(), joinRequest("p3", "user-p3"))
	assert.Equal(t, []model.ParticipantID{"p1", "p2"}, r.TurnOrder(validRoomID()))
	assert.True(t, r.IsMember(validRoomID(), "p3"))

	r.Join(validRoomID(), joinRequest("p2-new", "user-p2"))
	assert.Equal(t, []model.ParticipantID{"p1", "p2-new"}, r.TurnOrder(validRoomID()),
		"a reconnecting player keeps the seat")

	_, ok := r.EndGame(validRoomID(), game)
	assert.True(t, ok)
	assert.Equal(t, []model.ParticipantID{"p1", "p3", "p2-new"}, r.TurnOrder(validRoomID()))
}

func TestUsecaseRoomUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseRoomUnitSuite))
}
