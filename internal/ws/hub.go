package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Event is the envelope pushed to connected clients. One variant per event
// type; unused fields stay omitted on the wire.
type Event struct {
	Type           string    `json:"type"` // new_message, status_changed, typing
	ConversationID uint64    `json:"conversationId,omitempty"`
	MessageID      uint64    `json:"messageId,omitempty"`
	MessageIDs     []uint64  `json:"messageIds,omitempty"`
	SenderUID      string    `json:"senderUid,omitempty"`
	Body           string    `json:"body,omitempty"`
	MessageType    string    `json:"messageType,omitempty"`
	Status         string    `json:"status,omitempty"`
	IsAutoReply    bool      `json:"isAutoReply,omitempty"`
	Typing         bool      `json:"typing,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

const typingTTL = 6 * time.Second

type client struct {
	uid  string
	conn *websocket.Conn
	send chan Event
}

// Hub tracks connected users and relays chat events. It also serves as the
// presence collaborator: online = socket connected, typing = typing event
// received within the last few seconds.
type Hub struct {
	mu      sync.RWMutex
	clients map[string][]*client
	typing  map[uint64]map[string]time.Time // convID -> uid -> last typing signal
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string][]*client),
		typing:  make(map[uint64]map[string]time.Time),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Hub) IsOnline(uid string) bool {
	if h == nil {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[uid]) > 0
}

func (h *Hub) IsTyping(convID uint64, uid string) bool {
	if h == nil {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	last, ok := h.typing[convID][uid]
	return ok && time.Since(last) < typingTTL
}

// Send delivers an event to every connection of uid. Slow consumers are
// skipped rather than blocked on.
func (h *Hub) Send(uid string, ev Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients[uid] {
		select {
		case c.send <- ev:
		default:
			log.Warn().Str("uid", uid).Str("event", ev.Type).Msg("ws send buffer full, dropping event")
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.uid] = append(h.clients[c.uid], c)
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	conns := h.clients[c.uid]
	for i, cc := range conns {
		if cc == c {
			h.clients[c.uid] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.clients[c.uid]) == 0 {
		delete(h.clients, c.uid)
	}
	h.mu.Unlock()
	close(c.send)
}

func (h *Hub) noteTyping(convID uint64, uid string, typing bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !typing {
		delete(h.typing[convID], uid)
		return
	}
	if h.typing[convID] == nil {
		h.typing[convID] = make(map[string]time.Time)
	}
	h.typing[convID][uid] = time.Now()
}

// Handle upgrades the request and pumps events until the peer goes away. The
// uid must already be set by the auth middleware.
func (h *Hub) Handle(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.NoContent(http.StatusUnauthorized)
	}
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	cl := &client{uid: uid, conn: conn, send: make(chan Event, 64)}
	h.register(cl)

	go cl.writePump()
	cl.readPump(h)
	return nil
}

type inboundEvent struct {
	Type           string `json:"type"`
	ConversationID uint64 `json:"conversationId"`
	Typing         bool   `json:"typing"`
}

func (cl *client) readPump(h *Hub) {
	defer func() {
		h.unregister(cl)
		cl.conn.Close()
	}()
	cl.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	cl.conn.SetPongHandler(func(string) error {
		cl.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("uid", cl.uid).Msg("ws read closed")
			}
			return
		}
		var ev inboundEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		if ev.Type == "typing" && ev.ConversationID != 0 {
			h.noteTyping(ev.ConversationID, cl.uid, ev.Typing)
		}
	}
}

func (cl *client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
