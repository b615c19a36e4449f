package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/config"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// GlobalHub is the single hub instance for the whole application.
var GlobalHub = NewHub()

// Event is the envelope for everything pushed over a websocket.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// inbound is what clients send: direct or batch-room chat messages.
type inbound struct {
	Type        string `json:"type"`
	RecipientID uint   `json:"recipientId"`
	BatchID     uint   `json:"batchId"`
	Content     string `json:"content"`
	senderID    uint
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

type Hub struct {
	clients    map[uint]*Client
	broadcast  chan inbound
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan inbound),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uint]*Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.userID] = client
			h.mu.Unlock()
			slog.Info("Client registered", "userID", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
			}
			h.mu.Unlock()
			slog.Info("Client unregistered", "userID", client.userID)

		case msg := <-h.broadcast:
			h.handleInbound(msg)
		}
	}
}

// Notify implements services.Notifier: pushes a persisted notification to the
// recipient if they are online. Offline recipients simply read it later.
func (h *Hub) Notify(recipientID uint, n *models.Notification) error {
	return h.sendToUser(recipientID, Event{Type: "notification", Payload: n})
}

func (h *Hub) handleInbound(msg inbound) {
	message := models.Message{
		SenderID: msg.senderID,
		Content:  msg.Content,
	}

	switch msg.Type {
	case "direct_message":
		message.Type = models.MessageDirect
		message.RecipientID = &msg.RecipientID
	case "batch_message":
		message.Type = models.MessageBatch
		message.BatchID = &msg.BatchID
	default:
		slog.Warn("Unknown inbound message type", "type", msg.Type)
		return
	}

	if err := config.DB.Create(&message).Error; err != nil {
		slog.Error("Failed to save chat message", "error", err)
		return
	}
	config.DB.Preload("Sender").First(&message, message.ID)

	if message.Type == models.MessageDirect {
		h.sendToUser(*message.RecipientID, Event{Type: "new_message", Payload: message})
		h.sendToUser(message.SenderID, Event{Type: "new_message", Payload: message})
		return
	}

	// Batch room: every student on the roster plus the assigned faculty.
	var recipients []uint
	config.DB.Model(&models.BatchStudent{}).
		Where("batch_id = ?", *message.BatchID).
		Pluck("student_id", &recipients)
	var batch models.Batch
	if err := config.DB.First(&batch, *message.BatchID).Error; err == nil && batch.FacultyID != nil {
		recipients = append(recipients, *batch.FacultyID)
	}
	for _, id := range recipients {
		h.sendToUser(id, Event{Type: "new_batch_message", Payload: message})
	}
}

func (h *Hub) sendToUser(userID uint, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[userID]
	if !ok {
		return nil
	}
	select {
	case client.send <- data:
	default:
		close(client.send)
		delete(h.clients, userID)
	}
	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("Unexpected websocket close error", "error", err)
			}
			break
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Error("Error unmarshaling message from client", "error", err)
			continue
		}
		msg.senderID = c.userID
		c.hub.broadcast <- msg
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			slog.Error("Failed to write message to websocket", "error", err)
			return
		}
	}
}

// WSEndpoint upgrades an authenticated request to a websocket connection.
func WSEndpoint(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}

	client := &Client{
		hub:    GlobalHub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID.(uint),
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
