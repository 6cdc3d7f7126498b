package ws_room

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/humanbelnik/singalong/core/internal/model"
	usecase_room "github.com/humanbelnik/singalong/core/internal/usecase/room"
	usecase_round "github.com/humanbelnik/singalong/core/internal/usecase/round"
)

type MessageType string

// Inbound messages.
const (
	MessageJoin            MessageType = "join"
	MessageToggleReady     MessageType = "toggle_ready"
	MessageMicReady        MessageType = "mic_ready"
	MessageLeave           MessageType = "leave"
	MessageStartGame       MessageType = "start_game"
	MessageSubmitRecording MessageType = "submit_recording"
	MessageListenFinished  MessageType = "listen_finished"
	MessageRoomChat        MessageType = "room_chat"
)

const maxChatLength = 300

var (
	ErrBadMessage = errors.New("malformed message")
	ErrNotJoined  = errors.New("join the room first")
)

type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinDTO struct {
	UserID   string `json:"userId"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type StartGameDTO struct {
	MaxRounds int `json:"maxRounds"`
}

// SubmitRecordingDTO carries the take as base64 in JSON. The keyword is resolved server-side.
type SubmitRecordingDTO struct {
	Turn    int    `json:"turn"`
	Keyword string `json:"keyword,omitempty"`
	Audio   []byte `json:"audio"`
	MIME    string `json:"mime"`
}

type RoomChatDTO struct {
	Message string `json:"message"`
}

// Dispatcher turns inbound frames of a connection into registry and game calls.
type Dispatcher struct {
	registry *usecase_room.Registry
	game     *usecase_round.Usecase
	hub      *Hub
	logger   *slog.Logger
}

func NewDispatcher(registry *usecase_room.Registry, game *usecase_round.Usecase, hub *Hub) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		game:     game,
		hub:      hub,
		logger:   slog.Default(),
	}
}

func (d *Dispatcher) Handle(client *Client, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		d.reject(client, ErrBadMessage)
		return
	}

	if err := d.dispatch(context.Background(), client, msg); err != nil {
		d.logger.Warn("message rejected",
			"room_id", client.RoomID,
			"participant_id", client.ID,
			"type", msg.Type,
			"error", err)
		d.reject(client, err)
	}
}

// Disconnect treats a closed connection as leaving the room.
func (d *Dispatcher) Disconnect(client *Client) {
	if client.setJoined(false) {
		d.game.Leave(client.RoomID, client.ID)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, client *Client, msg Message) error {
	if msg.Type == MessageJoin {
		return d.join(client, msg.Payload)
	}
	if !d.registry.IsMember(client.RoomID, client.ID) {
		return ErrNotJoined
	}

	switch msg.Type {
	case MessageToggleReady:
		if err := d.registry.ToggleReady(client.RoomID, client.ID); err != nil {
			return err
		}
		d.game.PublishMembers(client.RoomID)

	case MessageMicReady:
		if err := d.registry.ArmMic(client.RoomID, client.ID); err != nil {
			return err
		}
		d.game.PublishMembers(client.RoomID)

	case MessageLeave:
		d.Disconnect(client)

	case MessageStartGame:
		var dto StartGameDTO
		if err := decode(msg.Payload, &dto); err != nil {
			return err
		}
		// start_failed already went to the requester
		_ = d.game.StartGame(ctx, client.RoomID, client.ID, dto.MaxRounds)

	case MessageSubmitRecording:
		var dto SubmitRecordingDTO
		if err := decode(msg.Payload, &dto); err != nil {
			return err
		}
		return d.game.Submit(ctx, client.RoomID, client.ID, dto.Turn, model.Recording{
			Audio: dto.Audio,
			MIME:  dto.MIME,
		})

	case MessageListenFinished:
		d.game.ListenAck(client.RoomID, client.ID)

	case MessageRoomChat:
		var dto RoomChatDTO
		if err := decode(msg.Payload, &dto); err != nil {
			return err
		}
		d.chat(client, dto.Message)

	default:
		return ErrBadMessage
	}
	return nil
}

func (d *Dispatcher) join(client *Client, payload json.RawMessage) error {
	var dto JoinDTO
	if err := decode(payload, &dto); err != nil {
		return err
	}

	nickname := strings.TrimSpace(dto.Nickname)
	if nickname == "" {
		nickname = "player-" + shortID(client.ID)
	}

	stale := d.registry.Join(client.RoomID, usecase_room.JoinRequest{
		ParticipantID: client.ID,
		UserID:        dto.UserID,
		Nickname:      nickname,
		Avatar:        dto.Avatar,
	})
	client.setJoined(true)
	d.hub.SendTo(client.RoomID, client.ID, model.Event{
		Type:    model.EventJoined,
		Payload: model.JoinedPayload{PlayerSid: client.ID, RoomID: client.RoomID},
	})

	for _, pid := range stale {
		d.game.Leave(client.RoomID, pid)
		d.hub.Kick(client.RoomID, pid)
	}
	d.game.PublishMembers(client.RoomID)
	return nil
}

func (d *Dispatcher) chat(client *Client, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if utf8.RuneCountInString(text) > maxChatLength {
		text = string([]rune(text)[:maxChatLength])
	}
	nickname, _ := d.registry.Nickname(client.RoomID, client.ID)

	d.hub.Broadcast(client.RoomID, model.Event{
		Type: model.EventRoomChat,
		Payload: model.RoomChatPayload{
			PlayerSid: client.ID,
			Nickname:  nickname,
			Message:   text,
		},
	})
}

func (d *Dispatcher) reject(client *Client, err error) {
	d.hub.SendTo(client.RoomID, client.ID, model.Event{
		Type:    model.EventError,
		Payload: model.ErrorPayload{Message: err.Error()},
	})
}

func decode(payload json.RawMessage, dst any) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return errors.Join(ErrBadMessage, err)
	}
	return nil
}

func shortID(id model.ParticipantID) string {
	s := string(id)
	if len(s) > 4 {
		return s[:4]
	}
	return s
}
