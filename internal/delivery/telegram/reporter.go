package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/domain/repository"
)

// maxMessageLen Telegram xabar limiti (4096) dan biroz kam
const maxMessageLen = 4000

// Reporter generatsiya natijasini admin chatga yuboradi
type Reporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

var _ repository.RunReporter = (*Reporter)(nil)

// NewReporter bot token va chat ID bilan reporter yaratish
func NewReporter(token string, chatID int64) (*Reporter, error) {
	if token == "" || chatID == 0 {
		return nil, errors.New("telegram token va chat ID kerak")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	log.Printf("🤖 Telegram reporter authorized as @%s", bot.Self.UserName)

	return newReporter(bot, chatID), nil
}

func newReporter(bot *tgbotapi.BotAPI, chatID int64) *Reporter {
	return &Reporter{bot: bot, chatID: chatID}
}

// Report natijani xabar sifatida yuborish
func (r *Reporter) Report(ctx context.Context, run entity.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(r.chatID, FormatRun(run))
	msg.DisableWebPagePreview = true
	if _, err := r.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}
	return nil
}

// FormatRun run haqida qisqa hisobot matni
func FormatRun(run entity.Run) string {
	var sb strings.Builder

	switch run.Status {
	case entity.RunSuccess:
		sb.WriteString("✅ Prays-feed yangilandi\n")
	case entity.RunEmpty:
		sb.WriteString("⚠️ Prays-listda mahsulot topilmadi, fayllar o'zgartirilmadi\n")
	default:
		sb.WriteString("❌ Prays-feed generatsiyasi xato bilan tugadi\n")
	}

	sb.WriteString(fmt.Sprintf("\n🆔 %s\n", run.ID))
	sb.WriteString(fmt.Sprintf("🕒 %s (%s)\n", run.StartedAt.Format("2006-01-02 15:04"), run.Duration().Round(time.Millisecond)))
	if run.Source != "" {
		sb.WriteString(fmt.Sprintf("📄 Fayl: %s\n", run.Source))
	}
	if run.Status == entity.RunSuccess {
		sb.WriteString(fmt.Sprintf("🗂 Bo'limlar: %d\n", run.Categories))
		sb.WriteString(fmt.Sprintf("📦 Mahsulotlar: %d\n", run.Offers))
		sb.WriteString(fmt.Sprintf("🔗 Indekslash uchun havolalar: %d\n", len(run.URLs)))
	}
	if run.Error != "" {
		sb.WriteString(fmt.Sprintf("\nXato: %s\n", run.Error))
	}

	text := sb.String()
	if len(text) > maxMessageLen {
		cut := text[:maxMessageLen-3]
		for !utf8.ValidString(cut) {
			cut = cut[:len(cut)-1]
		}
		text = cut + "..."
	}
	return text
}
