package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/sheetchat-be/middleware"
	"github.com/tieubaoca/sheetchat-be/service"
	"github.com/tieubaoca/sheetchat-be/types"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// HandleChat answers a question about the session's active document,
// streaming answer fragments as server-sent events. A final "done" event
// carries the complete answer.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	var chatRequest types.ChatRequest
	if err := c.ShouldBindJSON(&chatRequest); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}
	if chatRequest.Message == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Empty message",
		})
		return
	}

	// Headers are only committed once the first fragment arrives, so errors
	// raised before any output can still be reported as plain JSON.
	streaming := false
	answer, err := h.chatService.Ask(c.Request.Context(), sessionID, chatRequest.Message, func(fragment string) {
		if !streaming {
			streaming = true
			c.Writer.Header().Set("Content-Type", "text/event-stream")
			c.Writer.Header().Set("Cache-Control", "no-cache")
			c.Writer.Header().Set("Connection", "keep-alive")
		}
		c.SSEvent("message", fragment)
		c.Writer.Flush()
	})
	if err != nil {
		if streaming {
			c.SSEvent("error", err.Error())
			c.Writer.Flush()
			return
		}
		c.JSON(statusForError(err), types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}
	if !streaming {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
	}
	c.SSEvent("done", answer)
	c.Writer.Flush()
}

// statusForError maps service errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrEngineNotReady):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrConversion), errors.Is(err, types.ErrChunking):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrGenerationTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
