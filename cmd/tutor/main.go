// Package main provides the course tutor CLI.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"coursetutor/internal/bootstrap"
	"coursetutor/internal/config"
	"coursetutor/internal/llm"
	"coursetutor/internal/session"
	"coursetutor/internal/source"
)

var rootCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Document-grounded course tutor",
	Long: `Conversational assistant grounded in course unit documents.

Each answer is generated from the passages of the selected unit's document
most relevant to the question, not from the model's own knowledge.

Environment variables:
  OPENAI_API_KEY   OpenAI API key (required)
  TUTOR_CATALOG    Unit catalog TOML file (default: units.toml)
  TUTOR_MODEL      Generation model (default: gpt-4o)
  TUTOR_USE_QDRANT Persist indexes in Qdrant instead of memory`,
}

var askUnit string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question about a unit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive tutoring session",
	RunE:  runChat,
}

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List configured course units",
	RunE:  runUnits,
}

var indexCmd = &cobra.Command{
	Use:   "index [unit...]",
	Short: "Pre-build persistent unit indexes in Qdrant",
	RunE:  runIndex,
}

func init() {
	askCmd.Flags().StringVarP(&askUnit, "unit", "u", "", "unit key to answer from (required)")
	chatCmd.Flags().StringVarP(&askUnit, "unit", "u", "", "unit key to start with")
	rootCmd.AddCommand(askCmd, chatCmd, unitsCmd, indexCmd)
}

func main() {
	// Load .env if present for local development; ignore when missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

func newApp() (*bootstrap.App, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return bootstrap.New(config.FromEnv(), logger)
}

// runUnits reads only the catalog, so listing units works without an API key.
func runUnits(cmd *cobra.Command, args []string) error {
	catalog, err := source.LoadCatalog(config.FromEnv().CatalogPath)
	if err != nil {
		return err
	}
	for _, u := range catalog.Units() {
		fmt.Printf("%-24s %s\n", u.Key, u.Name)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askUnit == "" {
		return fmt.Errorf("--unit is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Session.SelectUnit(askUnit); err != nil {
		return err
	}

	question := strings.Join(args, " ")
	_, err = app.Session.Ask(ctx, question, func(fragment string) error {
		fmt.Print(fragment)
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Println()
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if askUnit != "" {
		if err := app.Session.SelectUnit(askUnit); err != nil {
			return err
		}
	}

	fmt.Println("Course tutor. Commands: /unit <key>, /model <id>, /clear, /quit")
	if askUnit == "" {
		fmt.Println("Select a unit first with /unit <key> (see `tutor units`).")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if done := handleCommand(app, line); done {
				break
			}
			continue
		}

		_, err := app.Session.Ask(ctx, line, func(fragment string) error {
			fmt.Print(fragment)
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Println(renderError(err))
			continue
		}
		fmt.Println()
	}
	return scanner.Err()
}

// handleCommand processes a /command line; returns true to exit the loop.
func handleCommand(app *bootstrap.App, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/clear":
		app.Session.Clear()
		fmt.Println("Conversation cleared.")
	case "/unit":
		if len(fields) < 2 {
			fmt.Println("Usage: /unit <key>")
			break
		}
		if err := app.Session.SelectUnit(fields[1]); err != nil {
			fmt.Println(renderError(err))
			break
		}
		fmt.Printf("Now tutoring on %s.\n", fields[1])
	case "/model":
		if len(fields) < 2 {
			fmt.Printf("Active model: %s\n", app.Session.Model())
			break
		}
		if err := app.Session.SetModel(fields[1]); err != nil {
			fmt.Println(renderError(err))
			break
		}
		fmt.Printf("Switched to %s. Conversation cleared.\n", fields[1])
	default:
		fmt.Printf("Unknown command %s\n", fields[0])
	}
	return false
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	keys := args
	if len(keys) == 0 {
		for _, u := range app.Catalog.Units() {
			keys = append(keys, u.Key)
		}
	}

	for _, key := range keys {
		fmt.Printf("Indexing %s...\n", key)
		chunks, err := app.IndexUnit(ctx, key)
		if err != nil {
			return fmt.Errorf("index %s: %w", key, err)
		}
		fmt.Printf("  %d chunks\n", chunks)
	}
	return nil
}

// renderError turns the pipeline's error taxonomy into user-facing messages.
func renderError(err error) string {
	switch {
	case errors.Is(err, llm.ErrAuth):
		return "Authentication failed. Check OPENAI_API_KEY and try again."
	case errors.Is(err, llm.ErrQuota):
		return "Provider quota exceeded. Wait a while or check your plan; the question was not retried."
	case errors.Is(err, llm.ErrUnsupportedModel):
		return err.Error()
	case errors.Is(err, session.ErrOutOfScope):
		return "The selected unit's material does not cover this question."
	case errors.Is(err, session.ErrNoUnit):
		return "Select a unit first (see `tutor units`)."
	default:
		return "Error: " + err.Error()
	}
}
