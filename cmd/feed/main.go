package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"turfbook/internal/feed"
	jwtsvc "turfbook/internal/pkg/jwt"
	"turfbook/internal/tui"
	"turfbook/pkg/client"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func run() error {
	apiURL := getEnv("TURFBOOK_API_URL", "http://localhost:8080")
	appURL := getEnv("TURFBOOK_APP_URL", "http://localhost:5173")
	token := getEnv("TURFBOOK_TOKEN", "")
	if len(os.Args) > 1 {
		token = os.Args[1]
	}
	if token == "" {
		return fmt.Errorf("set TURFBOOK_TOKEN or pass a token as the first argument")
	}

	claims, err := jwtsvc.PeekClaims(token)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}

	// the TUI owns the terminal
	log.SetOutput(io.Discard)
	if path := os.Getenv("TURFBOOK_LOG_FILE"); path != "" {
		f, err := tea.LogToFile(path, "feed")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	}

	c := client.New(apiURL, token)
	alerter := tui.NewAlerter(os.Stdout)

	manager := feed.NewManager(func(recipient uuid.UUID) (*feed.Controller, error) {
		return feed.NewController(c, c.FeedSource(), alerter), nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	controller, err := manager.SignIn(ctx, claims.UserID)
	cancel()
	if err != nil {
		if client.IsStatus(err, 401) {
			return fmt.Errorf("token rejected, sign in again")
		}
		return fmt.Errorf("start feed: %w", err)
	}
	defer manager.SignOut() //nolint:errcheck // best-effort teardown on exit

	p := tea.NewProgram(tui.NewApp(controller, alerter, appURL), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
