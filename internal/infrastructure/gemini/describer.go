package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/domain/repository"
	"google.golang.org/api/option"
)

// MaxDescriptionRunes sahifaga yoziladigan tavsifning eng katta uzunligi
const MaxDescriptionRunes = 600

// ErrEmptyDescription model bo'sh javob qaytardi
var ErrEmptyDescription = errors.New("empty description")

const systemInstruction = `Ты копирайтер интернет-магазина программ 1С. Пиши краткое описание товара на русском языке:
2-3 предложения, без маркдауна, без цены, без выдуманных характеристик.
Опирайся только на название товара и раздел прайс-листа.`

// Describer Gemini orqali mahsulot tavsifini yozadi
type Describer struct {
	client *genai.Client
	model  *genai.GenerativeModel
	limit  *limiter
}

var _ repository.Describer = (*Describer)(nil)

// NewDescriber yangi Gemini describer yaratish
func NewDescriber(ctx context.Context, apiKey, modelName string) (*Describer, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY bo'sh")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.4)
	model.SetTopK(20)
	model.SetTopP(0.9)
	model.SetMaxOutputTokens(256)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	return &Describer{
		client: client,
		model:  model,
		limit:  newLimiter(3, 350*time.Millisecond), // bir vaqtda 3 ta, orasida 350ms
	}, nil
}

// Describe bitta mahsulot uchun tavsif
func (d *Describer) Describe(ctx context.Context, offer entity.Offer) (string, error) {
	release, err := d.limit.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	resp, err := d.model.GenerateContent(ctx, genai.Text(buildPrompt(offer)))
	if err != nil {
		return "", fmt.Errorf("failed to generate description for %s: %w", offer.ID, err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates for %s", offer.ID)
	}

	text := cleanDescription(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("%s: %w", offer.ID, ErrEmptyDescription)
	}
	return text, nil
}

// Close client ni yopish
func (d *Describer) Close() error {
	return d.client.Close()
}

func buildPrompt(offer entity.Offer) string {
	var sb strings.Builder
	sb.WriteString("Товар: ")
	sb.WriteString(offer.Name)
	sb.WriteString("\nКод: ")
	sb.WriteString(offer.ID)
	if offer.CategoryID != "" {
		sb.WriteString("\nРаздел: ")
		sb.WriteString(offer.CategoryID)
	}
	return sb.String()
}

// cleanDescription markdown belgilarini va ortiqcha bo'shliqlarni olib tashlash
func cleanDescription(text string) string {
	text = strings.NewReplacer("**", "", "__", "", "`", "", "#", "").Replace(text)
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > MaxDescriptionRunes {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:MaxDescriptionRunes-1])) + "…"
	}
	return text
}

// extractText javobdan textni ajratib olish
func extractText(resp *genai.GenerateContentResponse) string {
	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					result.WriteString(string(t))
				}
			}
		}
	}
	return result.String()
}

// limiter parallel so'rovlar sonini va ular orasidagi minimal intervalni cheklaydi
type limiter struct {
	sem   chan struct{}
	mu    sync.Mutex
	last  time.Time
	delay time.Duration
}

func newLimiter(concurrency int, delay time.Duration) *limiter {
	return &limiter{
		sem:   make(chan struct{}, concurrency),
		delay: delay,
	}
}

func (l *limiter) acquire(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if !l.last.IsZero() {
		if sleep := l.delay - now.Sub(l.last); sleep > 0 {
			time.Sleep(sleep)
			now = time.Now()
		}
	}
	l.last = now

	return func() {
		<-l.sem
	}, nil
}
