package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studybuddy-app/backend/internal/models"
	"github.com/studybuddy-app/backend/internal/realtime"
	"github.com/studybuddy-app/backend/internal/services"
	jwtutil "github.com/studybuddy-app/backend/pkg/jwt"
	"github.com/studybuddy-app/backend/pkg/middleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSFrame is the envelope for every client-to-server websocket message.
type WSFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WSHandler owns the websocket endpoint and the direct chat history endpoint.
type WSHandler struct {
	Registry  *realtime.Registry
	Rooms     *realtime.Rooms
	Relay     *realtime.Relay
	Messages  *services.MessageService
	JWTSecret string
}

// NewWSHandler creates a new instance of WSHandler.
func NewWSHandler(registry *realtime.Registry, rooms *realtime.Rooms, relay *realtime.Relay, messages *services.MessageService, jwtSecret string) *WSHandler {
	return &WSHandler{
		Registry:  registry,
		Rooms:     rooms,
		Relay:     relay,
		Messages:  messages,
		JWTSecret: jwtSecret,
	}
}

// ConnectHandler authenticates via the token query parameter, upgrades
// the connection and runs the read loop until the client disconnects.
func (h *WSHandler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		log.WithError(err).Warn("WebSocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	log.WithField("userID", userID).Info("WebSocket connected")
	h.Registry.Register(userID, conn)
	h.Relay.BroadcastOnlineUsers()

	defer func() {
		h.Rooms.LeaveAll(conn)
		h.Registry.Unregister(userID, conn)
		h.Relay.BroadcastOnlineUsers()
		conn.Close()
		log.WithField("userID", userID).Info("WebSocket disconnected")
	}()

	for {
		var frame WSFrame
		if err := conn.ReadJSON(&frame); err != nil {
			break // client disconnected
		}
		h.dispatch(r, conn, userID, &frame)
	}
}

func (h *WSHandler) dispatch(r *http.Request, conn *websocket.Conn, userID string, frame *WSFrame) {
	switch frame.Event {
	case "joinGroupChat":
		var data struct {
			GroupID string `json:"groupId"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.GroupID == "" {
			return
		}
		h.Rooms.Join(conn, "group:"+data.GroupID)

	case "leaveGroupChat":
		var data struct {
			GroupID string `json:"groupId"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.GroupID == "" {
			return
		}
		h.Rooms.Leave(conn, "group:"+data.GroupID)

	case "videoCallEnded":
		var data struct {
			PeerID string `json:"peerId"`
			RoomID string `json:"roomId"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return
		}
		h.Relay.EmitToUser(data.PeerID, "callEnded", map[string]string{
			"roomId": data.RoomID,
			"userId": userID,
		})

	case "studySessionCreated":
		var data struct {
			SessionID    string   `json:"sessionId"`
			Title        string   `json:"title"`
			Participants []string `json:"participants"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return
		}
		for _, participantID := range data.Participants {
			if participantID == userID {
				continue
			}
			h.Relay.EmitToUser(participantID, "studySessionInvite", map[string]string{
				"sessionId": data.SessionID,
				"title":     data.Title,
				"organizer": userID,
			})
		}

	case "directMessage", "text":
		var data struct {
			ReceiverID string `json:"receiverId"`
			Text       string `json:"text"`
			Image      string `json:"image"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return
		}
		senderObjID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return
		}
		receiverObjID, err := primitive.ObjectIDFromHex(data.ReceiverID)
		if err != nil {
			return
		}
		msg := &models.Message{
			SenderID:   senderObjID,
			ReceiverID: receiverObjID,
			Text:       data.Text,
			Image:      data.Image,
			CreatedAt:  time.Now(),
		}
		saved, err := h.Messages.SendMessage(r.Context(), msg)
		if err != nil {
			log.WithError(err).Warn("Failed to persist direct message")
			return
		}
		h.Relay.EmitToUser(data.ReceiverID, "directMessage", saved)
		conn.WriteJSON(realtime.Event{Event: "directMessage", Data: saved})

	default:
		log.WithField("event", frame.Event).Debug("Unknown websocket event")
	}
}

// GetChatHistoryHandler returns the direct message history between the
// caller and a friend.
func (h *WSHandler) GetChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	friendID := mux.Vars(r)["friendId"]

	messages, err := h.Messages.GetChat(r.Context(), claims.UserID, friendID)
	if err != nil {
		log.WithError(err).Error("Failed to get chat history")
		http.Error(w, "Failed to get chat history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}
