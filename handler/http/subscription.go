package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/websocket"

	"github.com/DRLee98/random-chat-backend-sub000/core"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pubsub"
)

const (
	maxMessageSize = 512
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	writeWait      = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// InviteStatusSubscribe upgrades the request to a websocket and streams every
// InviteStatusChanged addressed to the current user until either side goes
// away.
func InviteStatusSubscribe(
	logger log.Logger,
	subscriber pubsub.Subscriber,
) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		origin := originFromContext(ctx)

		sub, err := subscriber.Subscribe(
			core.TopicInviteStatusChanged,
			func(payload interface{}) bool {
				c, ok := payload.(*core.InviteStatusChanged)

				return ok && c.UserID == origin.UserID
			},
		)
		if err != nil {
			respondError(w, 0, err)
			return
		}
		defer sub.Close()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			_ = logger.Log("err", err, "user_id", origin.UserID)
			return
		}
		defer conn.Close()

		done := make(chan struct{})

		go readPump(conn, done)

		err = writePump(conn, sub, done)
		if err != nil && !websocket.IsCloseError(
			err,
			websocket.CloseGoingAway,
			websocket.CloseNormalClosure,
		) {
			_ = logger.Log("err", err, "user_id", origin.UserID)
		}
	}
}

// readPump drains the connection to process control frames and signals done
// once the peer is gone.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(
	conn *websocket.Conn,
	sub *pubsub.Subscription,
	done <-chan struct{},
) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return nil
		case payload, ok := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				return conn.WriteMessage(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
				)
			}

			if err := conn.WriteJSON(payload); err != nil {
				return err
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}
