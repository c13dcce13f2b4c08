// Package main provides the MCP server entry point for the course tutor.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"coursetutor/internal/bootstrap"
	"coursetutor/internal/config"
	mcpserver "coursetutor/internal/mcp"
)

func main() {
	// Load .env file if present (local development), ignore if missing.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg := config.FromEnv()
	port := getEnv("PORT", "8080")

	app, err := bootstrap.New(cfg, slog.Default())
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer app.Close()

	server := app.MCPServer()

	mux := http.NewServeMux()

	// Qdrant connectivity is the only checkable dependency; the in-memory
	// backend passes nil and /health reports catalog readiness only.
	var checker mcpserver.HealthChecker
	if app.Store != nil {
		checker = app.Store
	}
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(len(app.Catalog.Units()), checker))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	serverMode := getEnv("SERVER_MODE", "false") == "true"

	if serverMode {
		// HTTP mode: serve MCP over HTTP for remote clients.
		addr := "0.0.0.0:" + port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP over stdin/stdout for local clients, with the
		// health endpoint in the background for local testing.
		go func() {
			addr := "0.0.0.0:" + port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting course tutor MCP server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
