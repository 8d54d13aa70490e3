package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/pricefeed/internal/domain/entity"
)

func TestFormatRun(t *testing.T) {
	start := time.Date(2026, 10, 1, 3, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		run     entity.Run
		want    []string
		notWant []string
	}{
		{
			name: "success",
			run: entity.Run{
				ID: "run-1", StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond),
				Status: entity.RunSuccess, Source: "price_1c.xls", Categories: 12, Offers: 340,
				URLs: []string{"a", "b"},
			},
			want: []string{"✅", "run-1", "2026-10-01 03:00", "1.5s", "price_1c.xls", "Bo'limlar: 12", "Mahsulotlar: 340", "havolalar: 2"},
		},
		{
			name:    "empty",
			run:     entity.Run{ID: "run-2", StartedAt: start, Status: entity.RunEmpty},
			want:    []string{"⚠️", "run-2"},
			notWant: []string{"Mahsulotlar"},
		},
		{
			name: "failed",
			run:  entity.Run{ID: "run-3", StartedAt: start, Status: entity.RunFailed, Error: "acquire: status 503"},
			want: []string{"❌", "Xato: acquire: status 503"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := FormatRun(tt.run)
			for _, w := range tt.want {
				if !strings.Contains(text, w) {
					t.Errorf("expected %q in:\n%s", w, text)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(text, nw) {
					t.Errorf("did not expect %q in:\n%s", nw, text)
				}
			}
		})
	}
}

func TestFormatRunTruncatesLongErrors(t *testing.T) {
	run := entity.Run{ID: "x", Status: entity.RunFailed, Error: strings.Repeat("ошибка ", 1000)}
	if text := FormatRun(run); len(text) > maxMessageLen {
		t.Errorf("expected at most %d bytes, got %d", maxMessageLen, len(text))
	}
}

func TestNewReporterRequiresConfig(t *testing.T) {
	if _, err := NewReporter("", 42); err == nil {
		t.Errorf("expected error without token")
	}
	if _, err := NewReporter("token", 0); err == nil {
		t.Errorf("expected error without chat id")
	}
}

func TestReporterSendsMessage(t *testing.T) {
	var sent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"feed","username":"feed_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			r.ParseForm()
			if r.FormValue("chat_id") != "42" {
				t.Errorf("expected chat_id 42, got %s", r.FormValue("chat_id"))
			}
			sent = r.FormValue("text")
			w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	bot, err := tgbotapi.NewBotAPIWithClient("test-token", srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("NewBotAPIWithClient failed: %v", err)
	}

	r := newReporter(bot, 42)
	if err := r.Report(context.Background(), entity.Run{ID: "run-9", Status: entity.RunSuccess}); err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if !strings.Contains(sent, "run-9") {
		t.Errorf("expected run id in message, got %q", sent)
	}
}
