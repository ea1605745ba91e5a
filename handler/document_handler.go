package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/sheetchat-be/middleware"
	"github.com/tieubaoca/sheetchat-be/service"
	"github.com/tieubaoca/sheetchat-be/types"
)

type DocumentHandler struct {
	fileService *service.FileService
	chatService *service.ChatService
}

func NewDocumentHandler(fileService *service.FileService, chatService *service.ChatService) *DocumentHandler {
	return &DocumentHandler{
		fileService: fileService,
		chatService: chatService,
	}
}

// PreviewHandler returns the markdown rendering of an uploaded document.
// The file query parameter selects which of the session's documents to show;
// without it the session's active document is used.
func (h *DocumentHandler) PreviewHandler(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	key := h.chatService.ActiveDocument(sessionID)
	if filename := c.Query("file"); filename != "" {
		key = types.DocumentKey(sessionID, filename)
	}
	if key == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "No document uploaded yet",
		})
		return
	}

	doc, ok := h.fileService.Document(key)
	if !ok {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  false,
			Message: "Document not found",
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.PreviewResponse{
			OriginalName: doc.Filename,
			Markdown:     doc.Markdown,
		},
	})
}
