package model

type RoomID string

type ParticipantID string

type RoomState string

const (
	StateWaiting RoomState = "waiting"
	StatePlaying RoomState = "playing"
)

type Participant struct {
	ID       ParticipantID
	UserID   string
	Nickname string
	Avatar   string
	Ready    bool
	MicArmed bool
}

// Member is the public view of a participant sent with room updates.
type Member struct {
	ID       ParticipantID `json:"sid"`
	UserID   string        `json:"id"`
	Nickname string        `json:"nickname"`
	Avatar   string        `json:"avatar"`
	Ready    bool          `json:"ready"`
	Mic      bool          `json:"mic"`
	IsHost   bool          `json:"isHost"`
}

type ScoreEntry struct {
	ParticipantID ParticipantID `json:"sid"`
	Nickname      string        `json:"nickname"`
	Score         int           `json:"score"`
}
