package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/keloladuit/internal/charts"
	"github.com/ivanoskov/keloladuit/internal/identity"
	"github.com/ivanoskov/keloladuit/internal/logger"
	"github.com/ivanoskov/keloladuit/internal/model"
	"github.com/ivanoskov/keloladuit/internal/service"
)

// Sender is the part of the Telegram API the bot talks to
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api     Sender
	botAPI  *tgbotapi.BotAPI
	tracker *service.Tracker
	charts  *charts.ChartGenerator
	log     *logger.Logger
	now     func() time.Time

	mu     sync.Mutex
	states map[int64]*model.UserState // per Telegram user
}

// NewBot connects to Telegram with token
func NewBot(token string, tracker *service.Tracker, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	b := New(api, tracker, log)
	b.botAPI = api
	return b, nil
}

// New builds a bot on top of any Sender
func New(api Sender, tracker *service.Tracker, log *logger.Logger) *Bot {
	if log == nil {
		log = logger.Discard()
	}
	return &Bot{
		api:     api,
		tracker: tracker,
		charts:  charts.NewChartGenerator(),
		log:     log.WithComponent("bot"),
		now:     time.Now,
		states:  make(map[int64]*model.UserState),
	}
}

// Start runs the bot in long polling mode until ctx is done
func (b *Bot) Start(ctx context.Context) error {
	if b.botAPI == nil {
		return errors.New("long polling needs a Telegram connection")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.botAPI.GetUpdatesChan(u)
	b.log.Info("bot started", "username", b.botAPI.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			b.botAPI.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.HandleUpdate(ctx, update); err != nil {
				b.log.Error("error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}

// HandleWebhook processes one webhook body
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}
	return b.HandleUpdate(ctx, update)
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		return b.handleCommand(ctx, update.Message)
	case update.Message != nil:
		return b.handleMessage(ctx, update.Message)
	}
	return nil
}

// telegramUser maps a Telegram account to a ledger user
func telegramUser(u *tgbotapi.User) *model.User {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return &model.User{
		ID:          "tg-" + strconv.FormatInt(u.ID, 10),
		DisplayName: name,
	}
}

func (b *Bot) session(ctx context.Context, from *tgbotapi.User) (*service.Session, error) {
	ctx = identity.WithUser(ctx, telegramUser(from))
	return b.tracker.SessionFor(ctx, identity.ContextIdentity{})
}

func (b *Bot) state(userID int64) *model.UserState {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[userID]
	if !ok {
		return nil
	}
	cp := *st
	return &cp
}

func (b *Bot) setState(st model.UserState) {
	st.UpdatedAt = b.now()
	b.mu.Lock()
	b.states[st.UserID] = &st
	b.mu.Unlock()
}

func (b *Bot) clearState(userID int64) {
	b.mu.Lock()
	delete(b.states, userID)
	b.mu.Unlock()
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Error("failed to send message", "error", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	b.sendText(chatID, "❌ "+text)
}

// sendFailure explains err to the user and logs what is not their fault
func (b *Bot) sendFailure(chatID int64, err error) {
	var msg string
	switch {
	case errors.Is(err, service.ErrValidation):
		msg = err.Error()
	case errors.Is(err, service.ErrRemote):
		msg = "Gagal menyimpan ke server, coba lagi nanti."
	default:
		msg = "Terjadi kesalahan, coba lagi nanti."
	}
	if !errors.Is(err, service.ErrValidation) {
		b.log.Error("request failed", "chat_id", chatID, "error", err)
	}
	b.sendErrorMessage(chatID, msg)
}
