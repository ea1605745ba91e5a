/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/sheetchat-be/config"
	"github.com/tieubaoca/sheetchat-be/service"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a one-shot question about a spreadsheet",
	Long: `Ingests a spreadsheet and answers a single question about it,
streaming the answer to stdout. For example:

  sheetchat-be ask -f sales.xlsx -q "What was total revenue in March?"`,
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		question, _ := cmd.Flags().GetString("question")
		if filePath == "" || question == "" {
			log.Fatal("Both --file and --question are required")
		}

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

		ctx := context.Background()
		sessionID := uuid.NewString()

		result, err := fileService.IngestPath(ctx, sessionID, filePath)
		if err != nil {
			log.Fatalf("Failed to ingest %s: %v", filePath, err)
		}
		log.Printf("Indexed %s (%d chunks)", result.Document.Filename, result.Chunks)

		chatService.SetActiveDocument(sessionID, result.Document.Key)
		_, err = chatService.Ask(ctx, sessionID, question, func(fragment string) {
			fmt.Print(fragment)
		})
		if err != nil {
			log.Fatalf("Failed to answer: %v", err)
		}
		fmt.Println()

		chatService.EndSession(sessionID)
		fileService.RemoveSession(sessionID)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringP("file", "f", "", "Path to the spreadsheet to ask about")
	askCmd.Flags().StringP("question", "q", "", "Question to ask")
}
