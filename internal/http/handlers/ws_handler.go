// WebSocket HTTP handler.
//
// This file exposes the live subscription endpoint:
//   - GET /ws    (snapshot, then committed pixels as they land)
//
// Protocol: on attach the server sends one `snapshot` frame carrying the
// full painted grid, then one `pixel` frame per commit, in commit order.
// Optional `x` and `y` query parameters narrow the stream to a single
// cell (the snapshot is narrowed too). Keepalive is ping/pong with write
// deadlines; a connection that stops reading is closed.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/eureka-dev/go-place-backend/internal/config"
	"github.com/eureka-dev/go-place-backend/internal/domain"
	"github.com/eureka-dev/go-place-backend/internal/http/middleware"
	"github.com/eureka-dev/go-place-backend/internal/live"
	"github.com/eureka-dev/go-place-backend/internal/utils"
)

// WSMessage is one frame on the live stream.
//
// Fields:
//   - Type: "snapshot" or "pixel".
//   - Pixels: the painted grid; snapshot frames only.
//   - Pixel: one committed cell; pixel frames only.
type WSMessage struct {
	Type   string         `json:"type"`
	Pixels []domain.Pixel `json:"pixels,omitempty"`
	Pixel  *domain.Pixel  `json:"pixel,omitempty"`
}

// WSHandler serves live canvas subscriptions over gorilla/websocket.
type WSHandler struct {
	hub  *live.Hub
	grid GridService
	cfg  config.WSConfig

	upgrader websocket.Upgrader
}

// NewWS constructs a WSHandler bound to the hub and grid reader.
// checkOrigin decides which Origin headers may upgrade; nil allows all,
// which is only appropriate behind a same-origin proxy.
func NewWS(hub *live.Hub, grid GridService, cfg config.WSConfig, checkOrigin func(r *http.Request) bool) *WSHandler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &WSHandler{
		hub:  hub,
		grid: grid,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Serve godoc
// @ID          subscribeCanvas
// @Summary     Live canvas stream
// @Description Upgrades to WebSocket, sends the current grid as a snapshot frame, then streams committed pixels.
// @Tags        Live
//
// @Param       x  query  int  false "Narrow the stream to one column (requires y)"
// @Param       y  query  int  false "Narrow the stream to one row (requires x)"
//
// @Success     101  {string} string "Switching Protocols"
// @Failure     400  {object} handlers.ErrorResponse "Bad filter coordinates"
// @Router      /ws [get]
func (h *WSHandler) Serve(c *gin.Context) {
	var filter live.Filter
	if c.Query("x") != "" || c.Query("y") != "" {
		x, okX := utils.Atoi(c.Query("x"))
		y, okY := utils.Atoi(c.Query("y"))
		if !okX || !okY {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "filter needs integer x and y")
			return
		}
		filter.Coord = domain.CoordID(x, y)
	}

	// Subscribe before reading the snapshot so no commit can fall in the
	// gap between the two; a commit racing the snapshot read is at worst
	// delivered twice, and replay is idempotent.
	sub := h.hub.Subscribe(filter)

	pixels, err := h.grid.Snapshot(c.Request.Context())
	if err != nil {
		h.hub.Unsubscribe(sub)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if filter.Coord != "" {
		filtered := pixels[:0]
		for _, p := range pixels {
			if p.ID == filter.Coord {
				filtered = append(filtered, p)
			}
		}
		pixels = filtered
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.Unsubscribe(sub)
		lg := middleware.LoggerFrom(c)
		lg.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	go h.writeLoop(conn, sub, pixels)
	go h.readLoop(conn, sub)
}

// writeLoop owns all writes on conn: the initial snapshot, hub updates,
// and keepalive pings. It exits when the subscription channel closes or
// any write fails.
func (h *WSHandler) writeLoop(conn *websocket.Conn, sub *live.Subscription, snapshot []domain.Pixel) {
	ping := time.NewTicker(h.cfg.PingPeriod)
	defer func() {
		ping.Stop()
		h.hub.Unsubscribe(sub)
		conn.Close()
	}()

	conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
	if err := conn.WriteJSON(WSMessage{Type: "snapshot", Pixels: snapshot}); err != nil {
		return
	}

	for {
		select {
		case p, open := <-sub.Updates():
			if !open {
				conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "resync required"))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := conn.WriteJSON(WSMessage{Type: "pixel", Pixel: &p}); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are processed.
// The stream is server-to-client; inbound data frames are discarded.
func (h *WSHandler) readLoop(conn *websocket.Conn, sub *live.Subscription) {
	defer func() {
		h.hub.Unsubscribe(sub)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	deadline := h.cfg.PingPeriod + h.cfg.WriteWait
	conn.SetReadDeadline(time.Now().Add(deadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(deadline))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
