package websocket

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrHubStopped is returned by Serve once Run has returned.
var ErrHubStopped = errors.New("websocket hub stopped")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Credentials come from the Authorization header, never cookies.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve upgrades the request and subscribes the connection to the club's
// activity. Authorization is the caller's job. On upgrade failure the
// upgrader has already answered the request.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, clubID, userID uuid.UUID) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		clubID: clubID,
		userID: userID,
		logger: h.logger.With().Str("clubID", clubID.String()).Str("userID", userID.String()).Logger(),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return ErrHubStopped
	}

	go client.writePump()
	go client.readPump()
	return nil
}
