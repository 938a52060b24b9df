package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/daniellegy/softia/internal/api"
	"github.com/daniellegy/softia/internal/config"
	"github.com/daniellegy/softia/internal/core"
	"github.com/daniellegy/softia/internal/ingest"
	"github.com/daniellegy/softia/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Command line flag for corpus ingestion
	addCorpusFlag := flag.String("add-corpus", "", "Add a plain-text file to the corpus and exit")
	flag.Parse()

	// Initialize stores
	userStore, err := store.NewUserStore(config.AppConfig.UsersDir)
	if err != nil {
		log.Fatalf("Failed to initialize user store: %v", err)
	}
	corpusStore := store.NewCorpusStore(config.AppConfig.CorpusDir)

	// Handle corpus ingestion if flag is set
	if *addCorpusFlag != "" {
		data, err := os.ReadFile(*addCorpusFlag)
		if err != nil {
			log.Fatalf("Failed to read corpus file: %v", err)
		}
		if err := corpusStore.Add(filepath.Base(*addCorpusFlag), string(data)); err != nil {
			log.Fatalf("Failed to add corpus document: %v", err)
		}
		log.Printf("Added %s to the corpus. Exiting.", *addCorpusFlag)
		os.Exit(0)
	}

	// Initialize ingestion pipeline and model gateway
	ingester := ingest.NewIngester(ingest.NewTesseractRecognizer(config.AppConfig.OCRLanguage))
	gateway := core.NewGateway()

	// Initialize Chat service
	chatService := core.NewChatService(userStore, corpusStore, ingester, gateway)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(chatService)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // Completion calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
