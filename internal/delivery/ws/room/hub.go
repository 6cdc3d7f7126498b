package ws_room

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/humanbelnik/singalong/core/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 8 << 20
	sendBuffer     = 64
)

type Client struct {
	ID     model.ParticipantID
	RoomID model.RoomID
	Conn   *websocket.Conn
	Send   chan []byte

	mu     sync.Mutex
	joined bool
}

func NewClient(id model.ParticipantID, roomID model.RoomID, conn *websocket.Conn) *Client {
	return &Client{
		ID:     id,
		RoomID: roomID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
	}
}

func (c *Client) setJoined(v bool) (was bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	was, c.joined = c.joined, v
	return was
}

// Hub fans events out to the connections of each room.
type Hub struct {
	mu sync.Mutex

	rooms map[model.RoomID]map[*Client]bool

	logger *slog.Logger
}

func New() *Hub {
	return &Hub{
		rooms:  make(map[model.RoomID]map[*Client]bool),
		logger: slog.Default(),
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[client.RoomID]; !ok {
		h.rooms[client.RoomID] = make(map[*Client]bool)
	}
	h.rooms[client.RoomID][client] = true

	h.logger.Info("client registered", "room_id", client.RoomID, "participant_id", client.ID)
}

func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.removeLocked(client) {
		h.logger.Info("client unregistered", "room_id", client.RoomID, "participant_id", client.ID)
	}
}

// Kick drops the connection of a participant replaced by a newer one.
func (h *Hub) Kick(roomID model.RoomID, pid model.ParticipantID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[roomID] {
		if client.ID == pid {
			client.setJoined(false)
			h.removeLocked(client)
			h.logger.Info("stale client kicked", "room_id", roomID, "participant_id", pid)
		}
	}
}

func (h *Hub) Broadcast(roomID model.RoomID, event model.Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode event", "type", event.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[roomID] {
		h.deliverLocked(client, message)
	}
}

func (h *Hub) SendTo(roomID model.RoomID, pid model.ParticipantID, event model.Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode event", "type", event.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[roomID] {
		if client.ID == pid {
			h.deliverLocked(client, message)
		}
	}
}

func (h *Hub) Len(roomID model.RoomID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}

// deliverLocked drops a client whose buffer is full instead of blocking the room.
func (h *Hub) deliverLocked(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		h.logger.Warn("client too slow, dropping", "room_id", client.RoomID, "participant_id", client.ID)
		h.removeLocked(client)
	}
}

func (h *Hub) removeLocked(client *Client) bool {
	clients, ok := h.rooms[client.RoomID]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.rooms, client.RoomID)
	}
	return true
}

// StartClientReading pumps inbound frames into handle until the connection fails,
// then unregisters the client and calls onClose.
func (h *Hub) StartClientReading(client *Client, handle func(*Client, []byte), onClose func(*Client)) {
	defer func() {
		h.RemoveClient(client)
		client.Conn.Close()
		onClose(client)
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("connection closed unexpectedly", "participant_id", client.ID, "error", err)
			}
			break
		}
		handle(client, message)
	}
}

func (h *Hub) StartClientWriting(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
