package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 4096
)

// Upgrader upgrades an HTTP request to a WebSocket connection. Origins are
// already checked by the CORS layer and the bearer token.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Serve upgrades the request and streams hub messages for masjidID until
// either side closes. It returns once the connection is set up; the pumps
// run in their own goroutines.
func Serve(hub *Hub, w http.ResponseWriter, r *http.Request, masjidID uuid.UUID) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(hub, masjidID)
	if !hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go writePump(conn, client)
	go readPump(conn, client)
}

// writePump delivers hub messages and keeps the connection alive with pings.
func writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump handles client commands and notices when the peer goes away.
func readPump(conn *websocket.Conn, client *Client) {
	defer func() {
		client.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read failed", "error", err)
			}
			return
		}
		reply(client, data)
	}
}

// reply answers a client command through the hub's send channel so writes
// stay on the write pump.
func reply(client *Client, data []byte) {
	var in struct {
		Type MessageType `json:"type"`
	}
	var out Message
	if err := json.Unmarshal(data, &in); err != nil {
		out = NewMessage(TypeError, ErrorPayload{Code: "bad_message", Message: "message is not JSON"})
	} else if in.Type == TypePing {
		out = NewMessage(TypePong, nil)
	} else {
		out = NewMessage(TypeError, ErrorPayload{Code: "unknown_type", Message: "unsupported message type " + string(in.Type)})
	}

	b, err := out.JSON()
	if err != nil {
		return
	}
	client.hub.Direct(client, b)
}
