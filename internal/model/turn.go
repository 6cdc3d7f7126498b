package model

import "fmt"

type SlotPhase string

const (
	PhaseKeyword SlotPhase = "kw"
	PhaseRecord  SlotPhase = "rec"
)

// TurnSlot identifies one participant's performance opportunity.
// Turn is a per-game sequence number, so keys never repeat within a game.
type TurnSlot struct {
	Room        RoomID
	Participant ParticipantID
	Turn        int
	Phase       SlotPhase
}

func (s TurnSlot) String() string {
	return fmt.Sprintf("%s:%s:%d:%s", s.Room, s.Participant, s.Turn, s.Phase)
}

type Recording struct {
	Audio []byte
	MIME  string
}
