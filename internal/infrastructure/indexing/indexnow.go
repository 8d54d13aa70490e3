package indexing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/yourusername/pricefeed/internal/domain/repository"
)

type indexNowRequest struct {
	Host    string   `json:"host"`
	Key     string   `json:"key"`
	URLList []string `json:"urlList"`
}

type indexNowNotifier struct {
	endpoint string
	key      string
	client   *http.Client
}

// NewIndexNowNotifier Yandex IndexNow client
func NewIndexNowNotifier(endpoint, key string) (repository.IndexNotifier, error) {
	if key == "" {
		return nil, errors.New("indexnow key bo'sh")
	}
	if endpoint == "" {
		return nil, errors.New("indexnow endpoint bo'sh")
	}
	return &indexNowNotifier{
		endpoint: endpoint,
		key:      key,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (n *indexNowNotifier) Name() string {
	return "indexnow"
}

// Notify barcha URL larni bitta so'rovda yuborish
func (n *indexNowNotifier) Notify(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	u, err := url.Parse(urls[0])
	if err != nil {
		return fmt.Errorf("invalid url %s: %w", urls[0], err)
	}

	payload, err := json.Marshal(indexNowRequest{Host: u.Host, Key: n.key, URLList: urls})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("indexnow failed with status %d: %s", resp.StatusCode, string(body))
	}

	log.Printf("✅ IndexNow: %d urls submitted (status %d)", len(urls), resp.StatusCode)
	return nil
}
