package controller

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/imogoapp/whatsapp-webhook/internal/infrastructure/realtime"
)

// ChatSocketController serves the three realtime subscribe targets: per-line
// events, per-line chat-list updates, and the global firehose.
type ChatSocketController struct {
	hub *realtime.Hub
}

func NewChatSocketController(hub *realtime.Hub) *ChatSocketController {
	return &ChatSocketController{hub: hub}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

type connectionAck struct {
	Type          string `json:"type"`
	Status        string `json:"status"`
	PhoneNumberID string `json:"phone_number_id,omitempty"`
}

// HandleLine subscribes the client to events for one phone number.
func (ctl *ChatSocketController) HandleLine() gin.HandlerFunc {
	return func(c *gin.Context) {
		phoneNumberID := c.Param("phoneNumberId")
		if phoneNumberID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phoneNumberId is required"})
			return
		}
		ctl.serve(c, realtime.LineTopic(phoneNumberID), phoneNumberID)
	}
}

// HandleChatList subscribes the client to chat-list updates for one phone number.
func (ctl *ChatSocketController) HandleChatList() gin.HandlerFunc {
	return func(c *gin.Context) {
		phoneNumberID := c.Param("phoneNumberId")
		if phoneNumberID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phoneNumberId is required"})
			return
		}
		ctl.serve(c, realtime.ChatListTopic(phoneNumberID), phoneNumberID)
	}
}

// HandleGlobal subscribes the client to every published event.
func (ctl *ChatSocketController) HandleGlobal() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctl.serve(c, realtime.TopicGlobal, "")
	}
}

// serve upgrades the connection, subscribes it to topic and blocks reading
// until the client goes away. A read error is the disconnect signal; it
// triggers the unsubscribe (reactive cancellation, no token needed).
func (ctl *ChatSocketController) serve(c *gin.Context, topic realtime.Topic, phoneNumberID string) {
	ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the response; just log and return.
		log.Debug().Err(err).Msg("ws: upgrade failed")
		return
	}

	conn := realtime.NewConnection(ws)
	conn.Start()
	ctl.hub.Subscribe(topic, conn)
	defer func() {
		ctl.hub.Unsubscribe(topic, conn)
		conn.Close(websocket.CloseNormalClosure, "session closed")
	}()

	ack := connectionAck{Type: "connection", Status: "connected", PhoneNumberID: phoneNumberID}
	if payload, err := json.Marshal(ack); err == nil {
		_ = conn.Send(payload)
	}

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
		// Inbound frames are ignored: these sockets are push-only.
	}
}
