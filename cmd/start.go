/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/sheetchat-be/config"
	"github.com/tieubaoca/sheetchat-be/database"
	"github.com/tieubaoca/sheetchat-be/handler"
	"github.com/tieubaoca/sheetchat-be/middleware"
	"github.com/tieubaoca/sheetchat-be/service"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the spreadsheet chat server",
	Long:  `Starts a server that ingests spreadsheets and answers questions about them`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		aiService, err := newAIService(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize AI service: %v", err)
		}
		embedder := service.NewOpenAIEmbedder(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		builder, err := newIndexBuilder(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize vector store: %v", err)
		}

		engineCache := service.NewEngineCache()
		chatService := service.NewChatService(engineCache, cfg.RequestTimeout)
		fileService := service.NewFileService(
			cfg.UploadDir,
			service.NewSpreadsheetConverter(),
			service.NewMarkdownChunker(),
			embedder,
			aiService,
			builder,
			engineCache,
			cfg.TopK,
		)
		wsService := service.NewWebSocketService(chatService)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		uploadHandler := handler.NewUploadHandler(fileService, chatService)
		chatHandler := handler.NewChatHandler(chatService)
		sessionHandler := handler.NewSessionHandler(chatService, fileService)
		documentHandler := handler.NewDocumentHandler(fileService, chatService)

		// Setup Gin router
		router := gin.Default()

		// Apply global middleware
		router.Use(corsHandler.CorsMiddleware)
		router.Use(middleware.Session())

		router.GET("/health", gin.WrapH(wsService.Health()))

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/upload", uploadHandler.UploadDocumentHandler)
			apiV1.POST("/chat", chatHandler.HandleChat)
			apiV1.GET("/history", sessionHandler.HistoryHandler)
			apiV1.POST("/chat/clear", sessionHandler.ClearChatHandler)
			apiV1.DELETE("/session", sessionHandler.EndSessionHandler)
			apiV1.GET("/preview", documentHandler.PreviewHandler)
			apiV1.GET("/ws", func(c *gin.Context) {
				wsService.HandleChat(middleware.SessionID(c), c.Writer, c.Request)
			})
		}

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

// newAIService picks the generation backend from config. The openai provider
// also covers any OpenAI-compatible local server such as Ollama or LM Studio.
func newAIService(cfg *config.Config) (service.AIService, error) {
	switch cfg.Provider {
	case "gemini":
		return service.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.Model)
	default:
		return service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model), nil
	}
}

func newIndexBuilder(cfg *config.Config) (database.IndexBuilder, error) {
	switch cfg.VectorStore.Type {
	case "weaviate":
		return database.NewWeaviateStore(cfg.VectorStore)
	default:
		return database.NewMemoryIndexBuilder(), nil
	}
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
