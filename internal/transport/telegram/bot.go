package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"gift-experience-service/internal/app"
	"gift-experience-service/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot runs the experience in Telegram chats, one session per chat. Text is
// shown whole; there is no typing animation or audio in a chat.
type Bot struct {
	api       API
	service   *app.ExperienceService
	scriptID  string
	imageBase string

	mu       sync.Mutex
	sessions map[int64]string
}

// BotOption configures a Bot.
type BotOption func(*Bot)

// WithImageBaseURL makes the bot send script images as photos, fetched by
// Telegram from base + "/" + image name. Without it only text is sent.
func WithImageBaseURL(base string) BotOption {
	return func(b *Bot) { b.imageBase = strings.TrimRight(base, "/") }
}

func NewBot(api API, service *app.ExperienceService, scriptID string, opts ...BotOption) *Bot {
	b := &Bot{
		api:      api,
		service:  service,
		scriptID: scriptID,
		sessions: make(map[int64]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.endAll()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.endAll()
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		switch update.Message.Command() {
		case "start":
			b.startExperience(ctx, update.Message.Chat.ID)
		default:
			b.sendMessage(update.Message.Chat.ID, "Send /start to open your gift 🎁")
		}
	}
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) startExperience(ctx context.Context, chatID int64) {
	b.end(chatID)

	sessionID, seq, err := b.service.Start(ctx, b.scriptID, visitorID(chatID), app.WithRevealInterval(0))
	if err != nil {
		log.Printf("start experience for chat %d: %v", chatID, err)
		b.sendMessage(chatID, "Something went wrong, please try /start again later")
		return
	}
	b.mu.Lock()
	b.sessions[chatID] = sessionID
	b.mu.Unlock()

	b.render(chatID, seq.Snapshot())
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("answer callback: %v", err)
	}
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	seq, ok := b.sequencer(chatID)
	if !ok {
		b.sendMessage(chatID, "Send /start to open your gift 🎁")
		return
	}

	data := callback.Data
	switch {
	case data == "overlay":
		if err := seq.DismissOverlay(ctx); err != nil {
			log.Printf("persist overlay flag: %v", err)
		}
	case data == "next":
		seq.Advance()
	case data == "gift":
		seq.OpenGift()
	case data == "quiz":
		seq.StartQuiz()
	case strings.HasPrefix(data, "opt:"):
		q, o, err := parseOption(data)
		if err != nil {
			log.Printf("bad option callback %q: %v", data, err)
			return
		}
		seq.SelectOption(q, o)
	case data == "detail":
		seq.ShowDetail()
	case data == "retake":
		seq.Retake()
	default:
		return
	}
	b.render(chatID, seq.Snapshot())
}

func (b *Bot) sequencer(chatID int64) (*app.Sequencer, bool) {
	b.mu.Lock()
	sessionID, ok := b.sessions[chatID]
	b.mu.Unlock()
	if !ok {
		return nil, false
	}
	seq, err := b.service.Get(sessionID)
	if err != nil {
		return nil, false
	}
	return seq, true
}

func (b *Bot) end(chatID int64) {
	b.mu.Lock()
	sessionID, ok := b.sessions[chatID]
	delete(b.sessions, chatID)
	b.mu.Unlock()
	if ok {
		b.service.End(sessionID)
	}
}

func (b *Bot) endAll() {
	b.mu.Lock()
	ids := make([]string, 0, len(b.sessions))
	for chatID, sessionID := range b.sessions {
		ids = append(ids, sessionID)
		delete(b.sessions, chatID)
	}
	b.mu.Unlock()
	for _, id := range ids {
		b.service.End(id)
	}
}

func (b *Bot) render(chatID int64, snap domain.Snapshot) {
	if image := snapshotImage(snap); image != "" && b.imageBase != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(b.imageBase+"/"+image))
		if _, err := b.api.Send(photo); err != nil {
			log.Printf("send image %s to chat %d: %v", image, chatID, err)
		}
	}

	msg := tgbotapi.NewMessage(chatID, renderText(snap))
	if kb, ok := keyboard(snap); ok {
		msg.ReplyMarkup = kb
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send state to chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("send message to chat %d: %v", chatID, err)
	}
}

func visitorID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

func parseOption(data string) (int, int, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		return 0, 0, fmt.Errorf("want opt:<question>:<option>")
	}
	q, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	o, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, err
	}
	return q, o, nil
}
