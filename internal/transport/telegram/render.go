package telegram

import (
	"fmt"
	"strings"

	"gift-experience-service/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const overlayText = "Hey! Tap 👉 under each message to move forward.\nSome pictures may take a moment, please bear with me 😊"

func renderText(snap domain.Snapshot) string {
	if snap.ShowOverlay {
		return overlayText
	}

	switch snap.Stage {
	case domain.StageIntro:
		text := snap.Text
		if snap.Celebrating {
			text = "🎉🎊 " + text + " 🎊🎉"
		}
		return text
	case domain.StageGiftBox:
		return "🎁"
	case domain.StageQuizIntro:
		return snap.Text
	case domain.StageQuiz:
		if snap.Question == nil {
			return ""
		}
		return fmt.Sprintf("Question %d/%d\n%s", snap.Question.Index+1, snap.QuestionCount, snap.Question.Prompt)
	case domain.StageResult:
		if snap.Result == nil {
			return ""
		}
		if snap.Result.Detail == nil {
			return fmt.Sprintf("🎉 Your perfect gift is…\n%s Class", strings.ToUpper(string(snap.Result.Category)))
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s Class\n\n%s\n", snap.Result.Category, snap.Result.Detail.Description)
		for _, item := range snap.Result.Detail.Items {
			sb.WriteString("\n• " + item)
		}
		sb.WriteString("\n\nDon't like this class? Let's retake the quiz again")
		return sb.String()
	}
	return ""
}

// snapshotImage is the picture that goes with the current screen, if any.
func snapshotImage(snap domain.Snapshot) string {
	if snap.ShowOverlay {
		return ""
	}
	switch snap.Stage {
	case domain.StageIntro:
		return snap.Image
	case domain.StageResult:
		if snap.Result != nil && snap.Result.Detail != nil {
			return snap.Result.Detail.Image
		}
	}
	return ""
}

func keyboard(snap domain.Snapshot) (tgbotapi.InlineKeyboardMarkup, bool) {
	single := func(label, data string) (tgbotapi.InlineKeyboardMarkup, bool) {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)),
		), true
	}

	if snap.ShowOverlay {
		return single("Okay!", "overlay")
	}

	switch snap.Stage {
	case domain.StageIntro:
		return single("👉", "next")
	case domain.StageGiftBox:
		return single("Open the gift 🎁", "gift")
	case domain.StageQuizIntro:
		return single("let’s gooooo", "quiz")
	case domain.StageQuiz:
		if snap.Question == nil {
			return tgbotapi.InlineKeyboardMarkup{}, false
		}
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(snap.Question.Options))
		for i, opt := range snap.Question.Options {
			data := fmt.Sprintf("opt:%d:%d", snap.Question.Index, i)
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(opt, data)))
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...), true
	case domain.StageResult:
		if snap.Result == nil {
			return tgbotapi.InlineKeyboardMarkup{}, false
		}
		if snap.Result.Detail == nil {
			return single("Enlighten Me", "detail")
		}
		return single("yes please 🥰", "retake")
	}
	return tgbotapi.InlineKeyboardMarkup{}, false
}
