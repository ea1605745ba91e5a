package handler

import (
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/sheetchat-be/middleware"
	services "github.com/tieubaoca/sheetchat-be/service"
	"github.com/tieubaoca/sheetchat-be/types"
)

const previewLimit = 2048

type UploadHandler struct {
	fileService *services.FileService
	chatService *services.ChatService
}

func NewUploadHandler(fileService *services.FileService, chatService *services.ChatService) *UploadHandler {
	return &UploadHandler{
		fileService: fileService,
		chatService: chatService,
	}
}

// UploadDocumentHandler ingests a spreadsheet for the caller's session and
// makes it the active document for subsequent chat requests.
func (h *UploadHandler) UploadDocumentHandler(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	const maxSize = 10 << 20
	if header.Size > maxSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "File too large",
		})
		return
	}

	result, err := h.fileService.Upload(c.Request.Context(), sessionID, header.Filename, file)
	if err != nil {
		c.JSON(statusForError(err), types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	h.chatService.SetActiveDocument(sessionID, result.Document.Key)

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.UploadResponse{
			OriginalName: result.Document.Filename,
			DocumentKey:  result.Document.Key,
			Chunks:       result.Chunks,
			Preview:      previewExcerpt(result.Document.Markdown),
		},
	})
}

// previewExcerpt caps the markdown preview, backing off to a rune boundary
// so a multi-byte character is never cut mid-sequence.
func previewExcerpt(markdown string) string {
	if len(markdown) <= previewLimit {
		return markdown
	}
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(markdown[cut]) {
		cut--
	}
	return markdown[:cut]
}
