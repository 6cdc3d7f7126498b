package http_room

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	http_common "github.com/humanbelnik/singalong/core/internal/delivery/http/common"
	ws_room "github.com/humanbelnik/singalong/core/internal/delivery/ws/room"
	"github.com/humanbelnik/singalong/core/internal/model"
	usecase_room "github.com/humanbelnik/singalong/core/internal/usecase/room"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Controller struct {
	registry   *usecase_room.Registry
	hub        *ws_room.Hub
	dispatcher *ws_room.Dispatcher

	logger *slog.Logger
}

func New(
	registry *usecase_room.Registry,
	hub *ws_room.Hub,
	dispatcher *ws_room.Dispatcher,
) *Controller {
	return &Controller{
		registry:   registry,
		hub:        hub,
		dispatcher: dispatcher,
		logger:     slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms")
	{
		rooms.GET("/:room_id", c.snapshot)
		rooms.GET("/:room_id/ws", c.roomWS)
	}
}

func (c *Controller) snapshot(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))

	snap, err := c.registry.Snapshot(roomID)
	if err != nil {
		if errors.Is(err, usecase_room.ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
			return
		}
		c.logger.Error("failed to get room snapshot", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusOK, snap)
}

// roomWS upgrades the connection. The room itself is created by the first join message.
func (c *Controller) roomWS(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))
	if roomID == "" {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "room id required",
		})
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("failed to upgrade to websocket",
			slog.String("error", err.Error()),
		)
		return
	}

	client := ws_room.NewClient(model.ParticipantID(uuid.NewString()), roomID, conn)
	c.hub.RegisterClient(client)

	go c.hub.StartClientReading(client, c.dispatcher.Handle, c.dispatcher.Disconnect)
	go c.hub.StartClientWriting(client)
}
