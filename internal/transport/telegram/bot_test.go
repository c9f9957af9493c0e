package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gift-experience-service/internal/app"
	"gift-experience-service/internal/content"
	"gift-experience-service/internal/domain"
	"gift-experience-service/internal/infra/memory"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestBotWalksThroughExperience(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	bot := NewBot(api, newTestService(), content.DefaultScriptID)

	bot.handleUpdate(ctx, command(42, "/start"))
	last := api.last()
	if last.Text != overlayText || callbackData(last) != "overlay" {
		t.Fatalf("expected overlay first, got %q", last.Text)
	}

	bot.handleUpdate(ctx, callback(42, "overlay"))
	if got := api.last().Text; got != content.DefaultScript().Lines[0].Text {
		t.Fatalf("expected first line, got %q", got)
	}

	bot.handleUpdate(ctx, callback(42, "next"))
	if got := api.last().Text; !strings.HasPrefix(got, "🎉🎊") {
		t.Fatalf("expected celebration on the birthday line, got %q", got)
	}

	for i := 1; i < len(content.DefaultScript().Lines); i++ {
		bot.handleUpdate(ctx, callback(42, "next"))
	}
	if got := api.last(); got.Text != "🎁" || callbackData(got) != "gift" {
		t.Fatalf("expected gift box, got %q", got.Text)
	}

	bot.handleUpdate(ctx, callback(42, "gift"))
	bot.handleUpdate(ctx, callback(42, "quiz"))
	if got := api.last().Text; !strings.HasPrefix(got, "Question 1/4") {
		t.Fatalf("expected first question, got %q", got)
	}

	for q := 0; q < 4; q++ {
		bot.handleUpdate(ctx, callback(42, optionData(q, 3)))
	}
	if got := api.last().Text; !strings.Contains(got, "COMBINE Class") {
		t.Fatalf("expected Combine result, got %q", got)
	}

	bot.handleUpdate(ctx, callback(42, "detail"))
	if got := api.last(); !strings.Contains(got.Text, "Combine Class") || callbackData(got) != "retake" {
		t.Fatalf("expected detail with retake, got %q", got.Text)
	}

	bot.handleUpdate(ctx, callback(42, "retake"))
	if got := api.last().Text; !strings.HasPrefix(got, "Question 1/4") {
		t.Fatalf("expected quiz restart, got %q", got)
	}
	if api.answered() == 0 {
		t.Fatalf("expected callbacks to be answered")
	}
}

func TestBotSendsScriptImages(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	bot := NewBot(api, newTestService(), content.DefaultScriptID, WithImageBaseURL("https://cdn.example.com/gift/"))
	script := content.DefaultScript()

	bot.handleUpdate(ctx, command(5, "/start"))
	if got := api.photoURLs(); len(got) != 0 {
		t.Fatalf("no image behind the overlay, got %v", got)
	}

	bot.handleUpdate(ctx, callback(5, "overlay"))
	bot.handleUpdate(ctx, callback(5, "next"))
	want := "https://cdn.example.com/gift/" + script.Lines[1].Image
	got := api.photoURLs()
	if len(got) == 0 || got[len(got)-1] != want {
		t.Fatalf("expected photo %s, got %v", want, got)
	}
	if api.last().Text == "" {
		t.Fatalf("text must follow the photo")
	}

	for i := 1; i < len(script.Lines); i++ {
		bot.handleUpdate(ctx, callback(5, "next"))
	}
	bot.handleUpdate(ctx, callback(5, "gift"))
	bot.handleUpdate(ctx, callback(5, "quiz"))
	for q := 0; q < 4; q++ {
		bot.handleUpdate(ctx, callback(5, optionData(q, 0)))
	}
	bot.handleUpdate(ctx, callback(5, "detail"))
	want = "https://cdn.example.com/gift/" + script.Classes[domain.CategoryPainting].Image
	got = api.photoURLs()
	if got[len(got)-1] != want {
		t.Fatalf("expected class photo %s, got %v", want, got)
	}
}

func TestBotWithoutImageBaseSendsTextOnly(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	bot := NewBot(api, newTestService(), content.DefaultScriptID)

	bot.handleUpdate(ctx, command(6, "/start"))
	bot.handleUpdate(ctx, callback(6, "overlay"))
	bot.handleUpdate(ctx, callback(6, "next"))
	if got := api.photoURLs(); len(got) != 0 {
		t.Fatalf("expected no photos, got %v", got)
	}
}

func TestBotRemembersOverlayPerChat(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	bot := NewBot(api, newTestService(), content.DefaultScriptID)

	bot.handleUpdate(ctx, command(7, "/start"))
	bot.handleUpdate(ctx, callback(7, "overlay"))
	bot.handleUpdate(ctx, command(7, "/start"))
	if got := api.last().Text; got == overlayText {
		t.Fatalf("overlay must not come back for the same chat")
	}

	bot.handleUpdate(ctx, command(8, "/start"))
	if got := api.last().Text; got != overlayText {
		t.Fatalf("a new chat sees the overlay, got %q", got)
	}
}

func TestBotCallbackWithoutSession(t *testing.T) {
	api := &fakeAPI{}
	bot := NewBot(api, newTestService(), content.DefaultScriptID)

	bot.handleUpdate(context.Background(), callback(9, "next"))
	if got := api.last().Text; !strings.Contains(got, "/start") {
		t.Fatalf("expected hint to start, got %q", got)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update)}
	bot := NewBot(api, newTestService(), content.DefaultScriptID)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	api.updates <- command(1, "/start")
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop")
	}
	if !api.stopped() {
		t.Fatalf("expected polling stopped")
	}
}

func TestParseOption(t *testing.T) {
	q, o, err := parseOption("opt:2:3")
	if err != nil || q != 2 || o != 3 {
		t.Fatalf("unexpected parse: %d %d %v", q, o, err)
	}
	if _, _, err := parseOption("opt:x"); err == nil {
		t.Fatalf("expected error for malformed data")
	}
}

func TestRenderQuizKeyboard(t *testing.T) {
	snap := domain.Snapshot{
		Stage:         domain.StageQuiz,
		QuestionCount: 4,
		Question:      &domain.QuestionView{Index: 2, Prompt: "p", Options: []string{"a", "b"}},
	}
	kb, ok := keyboard(snap)
	if !ok || len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected two option rows, got %+v", kb)
	}
	if data := *kb.InlineKeyboard[1][0].CallbackData; data != "opt:2:1" {
		t.Fatalf("unexpected callback data %q", data)
	}
}

func newTestService() *app.ExperienceService {
	scripts := memory.NewScriptRepository(memory.NewStaticScriptLoader(content.DefaultScript()), time.Minute)
	return app.NewExperienceService(memory.NewSessionStore(), scripts, memory.NewFlagStore())
}

func command(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func callback(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func optionData(q, o int) string {
	return "opt:" + string(rune('0'+q)) + ":" + string(rune('0'+o))
}

func callbackData(msg tgbotapi.MessageConfig) string {
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) == 0 {
		return ""
	}
	return *kb.InlineKeyboard[0][0].CallbackData
}

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	photos   []tgbotapi.PhotoConfig
	requests int
	updates  chan tgbotapi.Update
	stop     bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch msg := c.(type) {
	case tgbotapi.MessageConfig:
		f.sent = append(f.sent, msg)
	case tgbotapi.PhotoConfig:
		f.photos = append(f.photos, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stop = true
}

func (f *fakeAPI) last() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeAPI) photoURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	urls := make([]string, 0, len(f.photos))
	for _, p := range f.photos {
		if u, ok := p.File.(tgbotapi.FileURL); ok {
			urls = append(urls, string(u))
		}
	}
	return urls
}

func (f *fakeAPI) answered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *fakeAPI) stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stop
}
