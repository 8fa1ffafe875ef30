package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	qport "crm-chat/internal/infrastructure/queue/port"
	"crm-chat/internal/infrastructure/realtime"
	"crm-chat/internal/pkg/chat/application/task"
	"crm-chat/internal/pkg/chat/application/usecase"
	repoAdapter "crm-chat/internal/pkg/chat/persistence/repository/adapter"
	"crm-chat/internal/pkg/chat/presentation/controller"
)

// Deps bundles everything the chat routes need. The realtime router is an
// explicitly constructed instance handed down from main; nothing here reaches
// for process-global state.
type Deps struct {
	Pool       *pgxpool.Pool
	Queue      qport.Client
	Router     *realtime.Router
	SendBuffer int
	ReadLimit  int64
	Log        zerolog.Logger
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes.
func RegisterRoutes(g *gin.RouterGroup, deps Deps) {
	store := repoAdapter.NewPgConversationStore(deps.Pool)
	messageLog := repoAdapter.NewPgMessageLog(deps.Pool)

	sendUC := usecase.NewSendMessageUseCase(store, messageLog, deps.Router)
	joinUC := usecase.NewJoinConversationUseCase(store)

	directCtl := controller.NewOpenDirectChatController(usecase.NewOpenDirectChatUseCase(store))
	groupCtl := controller.NewOpenGroupChatController(usecase.NewOpenGroupChatUseCase(store))
	sendMsgCtl := controller.NewSendMessageController(sendUC)
	historyCtl := controller.NewGetHistoryController(usecase.NewGetHistoryUseCase(store, messageLog))
	listCtl := controller.NewListConversationsController(usecase.NewListConversationsUseCase(store))
	deleteCtl := controller.NewDeleteConversationController(
		usecase.NewDeleteConversationUseCase(store, task.NewDeleteEnqueuer(deps.Queue)))
	socketCtl := controller.NewChatSocketController(
		deps.Router, sendUC, joinUC, deps.SendBuffer, deps.ReadLimit, deps.Log)

	// POST /api/v1/chat/direct -> open (or find) a direct conversation
	g.POST("/chat/direct", directCtl.Handle())

	// POST /api/v1/chat/group -> create a group conversation
	g.POST("/chat/group", groupCtl.Handle())

	// GET /api/v1/chats -> conversation list with previews
	g.GET("/chats", listCtl.Handle())

	// POST /api/v1/chat/:chatId/messages -> send a message into a conversation
	g.POST("/chat/:chatId/messages", sendMsgCtl.Handle())

	// GET /api/v1/chat/:chatId/messages -> fetch message history
	g.GET("/chat/:chatId/messages", historyCtl.Handle())

	// DELETE /api/v1/chat/:chatId -> schedule the deletion cascade
	g.DELETE("/chat/:chatId", deleteCtl.Handle())

	// GET /api/v1/chat/ws -> websocket endpoint for realtime chat
	g.GET("/chat/ws", socketCtl.Handle())
}
