package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/kachele/neuralsync-backend/internal/service"
	"github.com/kachele/neuralsync-backend/internal/stream"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams workspace events to the client and receives playback
// position reports from it.
type WSHandler struct {
	workspaceService *service.WorkspaceService
	feed             *stream.Feed
	log              zerolog.Logger
	upgrader         websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(workspaceService *service.WorkspaceService, feed *stream.Feed, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		workspaceService: workspaceService,
		feed:             feed,
		log:              log.With().Str("component", "ws_handler").Logger(),
		upgrader:         buildUpgrader(allowedOrigins),
	}
}

// WorkspaceStream godoc
// WS /ws/v1/workspaces/:id/stream
// Upgrades to WebSocket. Server→client: the workspace event feed.
// Client→server: playback position reports and pings.
func (h *WSHandler) WorkspaceStream(c *gin.Context) {
	ws, err := h.workspaceService.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "workspace not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("workspace_id", ws.ID).Logger()
	wsLog.Info().Msg("Client connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	messages, err := h.feed.Subscribe(ctx, ws.ID)
	if err != nil {
		stream.WriteError(conn, "subscribe failed")
		return
	}

	// Single-writer rule: only this goroutine writes to the connection.
	// Replies from the read loop (pong) go through the feed as well.
	go func() {
		for msg := range messages {
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg.Payload); err != nil {
				msg.Nack()
				cancel()
				return
			}
			msg.Ack()
		}
	}()

	for {
		var msg stream.RequestPayload
		if err := stream.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case stream.ActionPosition:
			ws.Scheduler().SetPosition(msg.PositionSeconds, msg.Playing)
		case stream.ActionPing:
			h.feed.Publish(ws.ID, stream.EventPong, nil)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		}
	}
}
