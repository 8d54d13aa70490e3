package indexing

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"

	"github.com/yourusername/pricefeed/internal/domain/repository"
	"google.golang.org/api/indexing/v3"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

// GoogleBatchSize bitta batch so'rovdagi eng ko'p URL
const GoogleBatchSize = 100

const (
	notificationType = "URL_UPDATED"
	defaultEndpoint  = "https://indexing.googleapis.com/"
	publishPath      = "/v3/urlNotifications:publish"
)

type googleNotifier struct {
	client   *http.Client
	endpoint string
}

// NewGoogleNotifier service account bilan Google Indexing API client.
// credentials inline JSON yoki fayl yo'li bo'lishi mumkin.
func NewGoogleNotifier(ctx context.Context, credentials string) (repository.IndexNotifier, error) {
	credentials = strings.TrimSpace(credentials)
	if credentials == "" {
		return nil, errors.New("google indexing credentials bo'sh")
	}

	var credOpt option.ClientOption
	if strings.HasPrefix(credentials, "{") {
		credOpt = option.WithCredentialsJSON([]byte(credentials))
	} else {
		data, err := os.ReadFile(credentials)
		if err != nil {
			return nil, fmt.Errorf("credentials fayli o'qilmadi: %w", err)
		}
		credOpt = option.WithCredentialsJSON(data)
	}

	return newGoogleNotifier(ctx, defaultEndpoint, credOpt, option.WithScopes(indexing.IndexingScope))
}

func newGoogleNotifier(ctx context.Context, endpoint string, opts ...option.ClientOption) (repository.IndexNotifier, error) {
	client, _, err := htransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("indexing client yaratilmadi: %w", err)
	}
	return &googleNotifier{client: client, endpoint: strings.TrimRight(endpoint, "/") + "/"}, nil
}

func (g *googleNotifier) Name() string {
	return "google"
}

// Notify URL larni GoogleBatchSize tadan batch so'rov bilan yuborish.
// Alohida URL xatolari sanaladi, hammasi xato bo'lsa error qaytadi.
func (g *googleNotifier) Notify(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	sent, failed := 0, 0
	var lastErr error
	for i, batch := range Chunk(urls, GoogleBatchSize) {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := g.publishBatch(ctx, batch)
		sent += ok
		failed += len(batch) - ok
		if err != nil {
			lastErr = err
			log.Printf("⚠️ Google batch %d: %v", i+1, err)
		}
		log.Printf("🔎 Google batch %d: %d/%d urls accepted", i+1, ok, len(batch))
	}

	log.Printf("✅ Google indexing: %d sent, %d failed", sent, failed)
	if sent == 0 && lastErr != nil {
		return fmt.Errorf("google indexing failed for all %d urls: %w", failed, lastErr)
	}
	return nil
}

// publishBatch bitta multipart/mixed so'rov; qabul qilingan URL lar sonini qaytaradi
func (g *googleNotifier) publishBatch(ctx context.Context, urls []string) (int, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for i, u := range urls {
		payload, err := (&indexing.UrlNotification{Url: u, Type: notificationType}).MarshalJSON()
		if err != nil {
			return 0, err
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type": {"application/http"},
			"Content-Id":   {fmt.Sprintf("<item%d>", i+1)},
		})
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(part, "POST %s HTTP/1.1\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n", publishPath, len(payload))
		part.Write(payload)
	}
	if err := mw.Close(); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"batch", &body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "multipart/mixed; boundary="+mw.Boundary())

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("batch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("batch returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return countAccepted(resp)
}

// countAccepted batch javobidagi har bir ichki javob statusini tekshirish
func countAccepted(resp *http.Response) (int, error) {
	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return 0, fmt.Errorf("unexpected batch response type %q", resp.Header.Get("Content-Type"))
	}

	accepted := 0
	var lastErr error
	mr := multipart.NewReader(resp.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return accepted, fmt.Errorf("failed to read batch response: %w", err)
		}

		inner, err := http.ReadResponse(bufio.NewReader(part), nil)
		if err != nil {
			lastErr = fmt.Errorf("invalid batch item: %w", err)
			continue
		}
		msg, _ := io.ReadAll(io.LimitReader(inner.Body, 512))
		inner.Body.Close()

		if inner.StatusCode >= 200 && inner.StatusCode < 300 {
			accepted++
			continue
		}
		lastErr = fmt.Errorf("item %s returned %d: %s", part.Header.Get("Content-Id"), inner.StatusCode, strings.TrimSpace(string(msg)))
		log.Printf("⚠️ Google indexing: %v", lastErr)
	}
	return accepted, lastErr
}

// Chunk ro'yxatni size o'lchamli bo'laklarga ajratish
func Chunk(items []string, size int) [][]string {
	if size <= 0 {
		size = len(items)
	}
	var chunks [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
