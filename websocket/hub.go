package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/HSouheill/enrollment_backend/models"
)

// Define notification types
const (
	NotificationTypeConnected          = "connected"
	NotificationTypeAuthResponse       = "auth_response"
	NotificationTypeEnrollmentVerified = "enrollment_verified"
	NotificationTypeEnrollmentPaid     = "enrollment_paid"
)

const (
	sendBuffer = 8
	writeWait  = 10 * time.Second
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type         string                 `json:"type"`
	Message      string                 `json:"message"`
	Data         *models.EnrollmentView `json:"data,omitempty"`
	EnrollmentID string                 `json:"enrollmentId,omitempty"`
	RequiresAuth bool                   `json:"requiresAuth,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	EnrollmentID string
	Conn         *websocket.Conn
	send         chan Notification
	mu           sync.Mutex
	closed       bool
}

func newClient(conn *websocket.Conn, enrollmentID string) *Client {
	return &Client{EnrollmentID: enrollmentID, Conn: conn, send: make(chan Notification, sendBuffer)}
}

// enqueue hands n to the client's writer without blocking. A full buffer drops n.
func (c *Client) enqueue(n Notification) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- n:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump is the only goroutine writing to Conn.
func (c *Client) writePump() {
	defer c.Conn.Close()
	for n := range c.send {
		_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteJSON(n); err != nil {
			return
		}
	}
	_ = c.Conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

type authRequest struct {
	client       *Client
	enrollmentID string
}

// Hub tracks connected clients by enrollment and pushes status changes to them
type Hub struct {
	clients                map[string]map[*Client]bool
	unauthenticatedClients map[*Client]bool
	register               chan *Client
	unregister             chan *Client
	authenticate           chan authRequest
	done                   chan struct{}
	mu                     sync.RWMutex
	logger                 zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:                make(map[string]map[*Client]bool),
		unauthenticatedClients: make(map[*Client]bool),
		register:               make(chan *Client),
		unregister:             make(chan *Client),
		authenticate:           make(chan authRequest),
		done:                   make(chan struct{}),
		logger:                 logger.With().Str("component", "ws_hub").Logger(),
	}
}

// Run starts the hub's event loop. It closes every client when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					client.close()
				}
			}
			for client := range h.unauthenticatedClients {
				client.close()
			}
			h.clients = make(map[string]map[*Client]bool)
			h.unauthenticatedClients = make(map[*Client]bool)
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.add(client)
			h.mu.Unlock()
		case req := <-h.authenticate:
			h.mu.Lock()
			h.remove(req.client)
			req.client.EnrollmentID = req.enrollmentID
			h.add(req.client)
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			client.close()
		}
	}
}

// Register adds client to the hub. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client and closes its send queue
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.close()
	}
}

// AuthenticateClient moves a client from unauthenticated to watching enrollmentID
func (h *Hub) AuthenticateClient(client *Client, enrollmentID string) bool {
	select {
	case h.authenticate <- authRequest{client: client, enrollmentID: enrollmentID}:
		return true
	case <-h.done:
		return false
	}
}

// remove must be called with mu held
func (h *Hub) remove(client *Client) {
	if set, ok := h.clients[client.EnrollmentID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.clients, client.EnrollmentID)
		}
	}
	delete(h.unauthenticatedClients, client)
}

// add must be called with mu held
func (h *Hub) add(client *Client) {
	if client.EnrollmentID == "" {
		h.unauthenticatedClients[client] = true
		return
	}
	set, ok := h.clients[client.EnrollmentID]
	if !ok {
		set = make(map[*Client]bool)
		h.clients[client.EnrollmentID] = set
	}
	set[client] = true
}

// SendToEnrollment queues a message for every client watching enrollmentID
func (h *Hub) SendToEnrollment(enrollmentID string, notification Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set, ok := h.clients[enrollmentID]
	if !ok || len(set) == 0 {
		return fmt.Errorf("enrollment not connected")
	}
	for client := range set {
		if !client.enqueue(notification) {
			h.logger.Warn().Str("enrollment_id", enrollmentID).Msg("client send buffer full, notification dropped")
		}
	}
	return nil
}

// Connected reports how many clients watch enrollmentID
func (h *Hub) Connected(enrollmentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[enrollmentID])
}

// EnrollmentVerified pushes the verified event to the enrollment's clients
func (h *Hub) EnrollmentVerified(rec *models.EnrollmentRecord) {
	h.notify(rec, NotificationTypeEnrollmentVerified, "Mobile number verified")
}

// EnrollmentPaid pushes the paid event to the enrollment's clients
func (h *Hub) EnrollmentPaid(rec *models.EnrollmentRecord) {
	h.notify(rec, NotificationTypeEnrollmentPaid, "Payment received, enrollment complete")
}

func (h *Hub) notify(rec *models.EnrollmentRecord, kind, message string) {
	view := models.NewEnrollmentView(rec)
	err := h.SendToEnrollment(view.ID, Notification{
		Type:         kind,
		Message:      message,
		Data:         &view,
		EnrollmentID: view.ID,
	})
	if err != nil {
		h.logger.Debug().Str("enrollment_id", view.ID).Str("type", kind).Msg("no listener for status event")
	}
}
