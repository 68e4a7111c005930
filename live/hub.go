package live

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"blockpress/models"
)

// Event actions sent to post rooms.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionLiked   = "liked"
)

// Event is one comment change, delivered as JSON to every client watching
// the post.
type Event struct {
	Action  string          `json:"action"`
	PostID  string          `json:"postId"`
	Comment *models.Comment `json:"comment,omitempty"`
	// set for deletions, where the comment no longer exists
	CommentID string `json:"commentId,omitempty"`
	Removed   int    `json:"removed,omitempty"`
}

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
	Room string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

// Hub fans messages out to the clients of a room. Rooms are post IDs.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	quit       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
	logger     arbor.ILogger
}

func NewHub(logger arbor.ILogger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run owns the room table until Stop is called.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = make(map[*Client]bool)
			}
			h.rooms[c.Room][c] = true

		case c := <-h.unregister:
			h.remove(c)

		case m := <-h.broadcast:
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					// slow client
					h.remove(c)
				}
			}

		case <-h.quit:
			for _, conns := range h.rooms {
				for c := range conns {
					close(c.Send)
				}
			}
			h.rooms = make(map[string]map[*Client]bool)
			return
		}
	}
}

func (h *Hub) remove(c *Client) {
	conns := h.rooms[c.Room]
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	close(c.Send)
	if len(conns) == 0 {
		delete(h.rooms, c.Room)
	}
}

// Stop closes every client and waits for Run to return.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
	<-h.done
}

// Register adds a client; false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Publish sends an event to the post's room. It is a no-op after Stop.
func (h *Hub) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error().Err(err).Str("post", ev.PostID).Msg("Failed to encode live event")
		return
	}
	select {
	case h.broadcast <- broadcastMsg{Room: ev.PostID, Data: data}:
	case <-h.quit:
	}
}
