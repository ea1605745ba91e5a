package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/sheetchat-be/middleware"
	"github.com/tieubaoca/sheetchat-be/service"
	"github.com/tieubaoca/sheetchat-be/types"
)

type SessionHandler struct {
	chatService *service.ChatService
	fileService *service.FileService
}

func NewSessionHandler(chatService *service.ChatService, fileService *service.FileService) *SessionHandler {
	return &SessionHandler{
		chatService: chatService,
		fileService: fileService,
	}
}

// HistoryHandler returns the session's conversation so far.
func (h *SessionHandler) HistoryHandler(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	messages := h.chatService.History(sessionID)
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.HistoryResponse{
			Messages: messages,
		},
	})
}

// ClearChatHandler resets the conversation but keeps indexed documents, so
// the next question starts from an empty history against the same data.
func (h *SessionHandler) ClearChatHandler(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	h.chatService.ClearConversation(sessionID)
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  true,
		Message: "Conversation cleared",
	})
}

// EndSessionHandler drops the conversation, the session's cached engines
// and its uploaded files.
func (h *SessionHandler) EndSessionHandler(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	h.chatService.EndSession(sessionID)
	h.fileService.RemoveSession(sessionID)
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  true,
		Message: "Session ended",
	})
}
