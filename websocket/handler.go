package websocket

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/enrollment_backend/utils"
)

const authPrefix = "AUTH:"

// Handler upgrades status connections and authenticates them with session tokens
type Handler struct {
	hub      *Hub
	sessions *utils.SessionTokens
	upgrader websocket.Upgrader
}

// NewHandler builds a Handler. allowedOrigins empty accepts any origin.
func NewHandler(hub *Hub, sessions *utils.SessionTokens, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &Handler{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// HandleWebSocket handles the WebSocket connection. A ?token= query parameter
// authenticates at once; otherwise the client may send "AUTH:<token>" later.
func (h *Handler) HandleWebSocket(c echo.Context) error {
	var enrollmentID string
	if token := c.QueryParam("token"); token != "" {
		claims, err := h.sessions.Parse(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"error":   "Invalid session token",
			})
		}
		enrollmentID = claims.EnrollmentID
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := newClient(conn, enrollmentID)
	go client.writePump()
	if !h.hub.Register(client) {
		client.close()
		return nil
	}

	// Send a welcome message
	if enrollmentID != "" {
		client.enqueue(Notification{
			Type:         NotificationTypeConnected,
			Message:      "WebSocket connection established",
			EnrollmentID: enrollmentID,
		})
	} else {
		client.enqueue(Notification{
			Type:         NotificationTypeConnected,
			Message:      "WebSocket connection established. Please authenticate to receive notifications.",
			RequiresAuth: true,
		})
	}

	go h.readPump(client)
	return nil
}

// readPump handles AUTH messages and disconnection
func (h *Handler) readPump(client *Client) {
	defer h.hub.Unregister(client)

	for {
		messageType, message, err := client.Conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage || !strings.HasPrefix(string(message), authPrefix) {
			continue
		}

		claims, err := h.sessions.Parse(strings.TrimPrefix(string(message), authPrefix))
		if err != nil {
			client.enqueue(Notification{
				Type:         NotificationTypeAuthResponse,
				Message:      "Invalid session token",
				RequiresAuth: true,
			})
			continue
		}
		if !h.hub.AuthenticateClient(client, claims.EnrollmentID) {
			return
		}
		client.enqueue(Notification{
			Type:         NotificationTypeAuthResponse,
			Message:      "Authenticated",
			EnrollmentID: claims.EnrollmentID,
		})
	}
}
