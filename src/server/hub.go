package server

import (
	"net/http"

	"pluto-lander/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
//
// The hub goroutine is the single owner of the subscriber set: adds,
// removes and fan-out all happen here, so no locking is needed around the
// client map and publishes are serialized. Per-subscriber ordering follows
// from the per-client send channel feeding a single write pump.
// -----------------------------------------------------------------------------

// runHub is the main hub loop. It should be launched as a goroutine.
func (s *APIServer) runHub() {
	for {
		select {
		case <-s.done:
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.clientCount.Store(int64(len(s.clients)))
			s.Logger.Info("Telemetry client %s connected. Total: %d", client.ID, len(s.clients))

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.clientCount.Store(int64(len(s.clients)))
				s.Logger.Info("Telemetry client %s disconnected. Total: %d", client.ID, len(s.clients))
			}

		case client := <-s.pong:
			// Pong replies enter here so only the hub ever writes to a send
			// channel; a ping from an already-pruned client is a no-op
			// instead of a send on a closed channel.
			if _, ok := s.clients[client]; ok {
				select {
				case client.send <- models.MTelemetryMessage{Type: models.TelemetryPong}:
				default:
				}
			}

		case message := <-s.broadcast:
			// One delivery attempt per subscriber in this pass. A full send
			// buffer means the client stopped draining; mark it dead and
			// prune after the pass so one slow client never blocks the rest.
			var dead []*Client
			for client := range s.clients {
				select {
				case client.send <- message:
					// Message queued for the client's write pump
				default:
					dead = append(dead, client)
				}
			}
			for _, client := range dead {
				delete(s.clients, client)
				close(client.send)
				s.Logger.Info("Telemetry client %s pruned (send buffer full)", client.ID)
			}
			if len(dead) > 0 {
				s.clientCount.Store(int64(len(s.clients)))
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Telemetry publisher interface
// -----------------------------------------------------------------------------

// Broadcast queues a message for fan-out to every connected subscriber.
// Publishing with no subscribers connected is a harmless no-op, as is
// publishing after Stop.
func (s *APIServer) Broadcast(message interface{}) {
	select {
	case s.broadcast <- message:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------

// ClientCount returns the number of currently connected subscribers.
func (s *APIServer) ClientCount() int {
	return int(s.clientCount.Load())
}

// -----------------------------------------------------------------------------
// WebSocket Handler
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleTelemetryWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		ID:   uuid.NewString(),
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the hub loop
		send: make(chan interface{}, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
