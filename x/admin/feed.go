package admin

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/hmnpros/gateway/x/webhook"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedHandler relays the event pubsub channel to admin websocket clients.
type FeedHandler struct {
	rdb *redis.Client
}

func NewFeedHandler(rdb *redis.Client) *FeedHandler {
	return &FeedHandler{rdb}
}

// Connect upgrades the connection and streams events until the client
// disconnects.
func (h FeedHandler) Connect(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("failed to upgrade websocket", slog.String("error", err.Error()))
		return err
	}
	defer ws.Close()

	ctx := c.Request().Context()
	pubsub := h.rdb.Subscribe(ctx, webhook.EventChannel)
	defer pubsub.Close()

	// Drain the client's reads so close frames are processed.
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				pubsub.Close()
				return
			}
		}
	}()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return nil
		}

		if err := ws.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
			slog.Info("feed client disconnected", slog.String("error", err.Error()))
			return nil
		}
	}
}
