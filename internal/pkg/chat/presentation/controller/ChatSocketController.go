package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"crm-chat/internal/infrastructure/realtime"
	"crm-chat/internal/pkg/chat/application/usecase"
	"crm-chat/internal/pkg/chat/presentation/middleware"
	"crm-chat/pkg/apperrors"
)

const defaultReadTimeout = 60 * time.Second

// ChatSocketController handles the websocket endpoint for realtime chat
// traffic. Per connection: upgrade, bind to the authenticated user, attach to
// the router, then process control frames until the client disconnects.
// Disconnecting removes the connection from every joined room.
type ChatSocketController struct {
	router          *realtime.Router
	sendMessageUC   *usecase.SendMessageUseCase
	joinRoomUC      *usecase.JoinConversationUseCase
	sendBuffer      int
	readLimit       int64
	inflightTimeout time.Duration
	log             zerolog.Logger
}

func NewChatSocketController(
	router *realtime.Router,
	sendUC *usecase.SendMessageUseCase,
	joinUC *usecase.JoinConversationUseCase,
	sendBuffer int,
	readLimit int64,
	log zerolog.Logger,
) *ChatSocketController {
	if readLimit <= 0 {
		readLimit = 1 << 20
	}
	return &ChatSocketController{
		router:          router,
		sendMessageUC:   sendUC,
		joinRoomUC:      joinUC,
		sendBuffer:      sendBuffer,
		readLimit:       readLimit,
		inflightTimeout: 5 * time.Second,
		log:             log.With().Str("component", "chat_socket").Logger(),
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin policy is enforced by the front proxy.
		return true
	},
}

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
	Content        string `json:"content,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
	MessageID      int64  `json:"messageId,omitempty"`
}

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects. The auth middleware has already resolved the
// credential; a request reaching this handler carries a verified user id.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "credential required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; nothing more to do.
			return
		}

		conn := realtime.NewConnection(userID, ws, ctl.sendBuffer)
		ctl.router.Attach(conn)
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(ctl.readLimit)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		ctl.log.Debug().Str("user_id", userID).Str("session_id", conn.ID).Msg("connection attached")

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.log.Debug().Err(err).Str("user_id", userID).Msg("read loop ended")
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "INVALID_INPUT", "invalid payload")
				continue
			}

			switch frame.Type {
			case "join":
				ctl.handleJoin(c, conn, frame)
			case "leave":
				ctl.handleLeave(conn, frame)
			case "message":
				ctl.handleMessage(c, conn, userID, frame)
			default:
				ctl.replyError(conn, "INVALID_INPUT", "unknown frame type")
			}
		}
	}
}

func (ctl *ChatSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "INVALID_INPUT", "conversationId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	err := ctl.joinRoomUC.Execute(ctx, usecase.JoinConversationInput{
		ConversationID: frame.ConversationID,
		UserID:         conn.UserID,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}

	ctl.router.Join(frame.ConversationID, conn)

	if payload, err := json.Marshal(ackFrame{Type: "joined", ConversationID: frame.ConversationID}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "INVALID_INPUT", "conversationId is required")
		return
	}
	ctl.router.Leave(frame.ConversationID, conn)

	if payload, err := json.Marshal(ackFrame{Type: "left", ConversationID: frame.ConversationID}); err == nil {
		_ = conn.Send(payload)
	}
}

// handleMessage runs the same usecase as the HTTP send endpoint; the room
// broadcast inside it reaches the sender's own joined connection too, so no
// separate echo of the event is sent here. The sender does get a "sent" ack
// carrying the persisted message id, which also covers senders who have not
// joined the room.
func (ctl *ChatSocketController) handleMessage(c *gin.Context, conn *realtime.Connection, userID string, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "INVALID_INPUT", "conversationId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	msg, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID: frame.ConversationID,
		SenderID:       userID,
		Content:        frame.Content,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}

	if payload, err := json.Marshal(ackFrame{Type: "sent", ConversationID: frame.ConversationID, MessageID: msg.ID}); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) replyUseCaseError(conn *realtime.Connection, err error) {
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeUnknown {
		code = apperrors.CodeInternal
	}
	ctl.replyError(conn, string(code), err.Error())
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code string, message string) {
	if payload, err := json.Marshal(errorFrame{Type: "error", Code: code, Error: message}); err == nil {
		_ = conn.Send(payload)
	}
}
