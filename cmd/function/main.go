package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/ivanoskov/keloladuit/internal/app"
	"github.com/ivanoskov/keloladuit/internal/bot"
	"github.com/ivanoskov/keloladuit/internal/config"
	"github.com/ivanoskov/keloladuit/internal/logger"
)

// Request is the incoming API Gateway event
type Request struct {
	Body string `json:"body"`
}

// Response is returned to API Gateway
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

var (
	initOnce sync.Once
	webhook  *bot.Bot
	initErr  error
)

// setup builds the bot once per function instance so warm invocations reuse
// open sessions.
func setup(ctx context.Context) (*bot.Bot, error) {
	initOnce.Do(func() {
		cfg, err := config.LoadConfig()
		if err != nil {
			initErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			initErr = err
			return
		}
		log := logger.New(logger.Config{Level: logger.ParseLevel(cfg.LogLevel), Component: "function"})

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			a.Close()
			initErr = err
			return
		}
		webhook, initErr = bot.NewBot(cfg.TelegramToken, a.Tracker, log)
	})
	return webhook, initErr
}

func Handler(ctx context.Context, request Request) (*Response, error) {
	b, err := setup(ctx)
	if err != nil {
		return errorResponse(err)
	}

	if err := b.HandleWebhook(ctx, []byte(request.Body)); err != nil {
		return errorResponse(err)
	}

	return &Response{StatusCode: http.StatusOK, Headers: jsonHeaders}, nil
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

// errorResponse reports err as a JSON body
func errorResponse(err error) (*Response, error) {
	body, _ := json.Marshal(map[string]string{"error": err.Error()})
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Body:       string(body),
		Headers:    jsonHeaders,
	}, nil
}

// main feeds one update from stdin through the handler, for local testing
func main() {
	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	resp, _ := Handler(context.Background(), Request{Body: string(body)})
	_ = json.NewEncoder(os.Stdout).Encode(resp)
}
