package model

type EventType string

// Outbound events.
const (
	EventJoined       EventType = "joined"
	EventRoomUpdate   EventType = "room_update"
	EventGameIntro    EventType = "game_intro"
	EventKeywordPhase EventType = "keyword_phase"
	EventRecordBegin  EventType = "record_begin"
	EventListenPhase  EventType = "listen_phase"
	EventRoundResult  EventType = "round_result"
	EventGameResult   EventType = "game_result"
	EventStartFailed  EventType = "start_failed"
	EventRoomChat     EventType = "room_chat"
	EventError        EventType = "error"
)

type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

type JoinedPayload struct {
	PlayerSid ParticipantID `json:"playerSid"`
	RoomID    RoomID        `json:"roomId"`
}

type RoomUpdatePayload struct {
	Users []Member `json:"users"`
}

type GameIntroPayload struct {
	Round     int `json:"round"`
	MaxRounds int `json:"maxRounds"`
}

type KeywordPhasePayload struct {
	PlayerSid  ParticipantID `json:"playerSid"`
	PlayerNick string        `json:"playerNick"`
	Keyword    Keyword       `json:"keyword"`
	Turn       int           `json:"turn"`
	Round      int           `json:"round"`
	MaxRounds  int           `json:"maxRounds"`
}

type RecordBeginPayload struct {
	PlayerSid ParticipantID `json:"playerSid"`
	Turn      int           `json:"turn"`
}

type ListenPhasePayload struct {
	PlayerSid ParticipantID `json:"playerSid"`
	Audio     []byte        `json:"audio"`
	MIME      string        `json:"mime"`
}

type RoundResultPayload struct {
	Verdict
	PlayerSid  ParticipantID `json:"playerSid"`
	PlayerNick string        `json:"playerNick"`
}

type GameResultPayload struct {
	Scores []ScoreEntry `json:"scores"`
}

type StartFailedPayload struct {
	Reason string `json:"reason"`
}

type RoomChatPayload struct {
	PlayerSid ParticipantID `json:"playerSid"`
	Nickname  string        `json:"nickname"`
	Message   string        `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
