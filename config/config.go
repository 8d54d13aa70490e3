package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config ilovaning konfiguratsiyasi
type Config struct {
	PriceURL     string
	FetchTimeout time.Duration
	HeaderRows   int
	OutputDir    string

	ShopName        string
	CompanyName     string
	ShopURL         string
	ProductImageURL string
	StaticPaths     []string

	GoogleIndexingCredentials string
	IndexNowKey               string
	IndexNowEndpoint          string

	RunDBPath   string
	DatabaseURL string

	TelegramToken  string
	TelegramChatID int64

	GeminiAPIKey  string
	GeminiModel   string
	DescribeLimit int

	R2Endpoint      string
	R2AccessKey     string
	R2SecretKey     string
	R2Bucket        string
	GCSBucket       string
	GCSCredentials  string
	MirrorKeyPrefix string

	HTTPAddr         string
	DownloadKey      string
	GenerateSchedule string
}

// Default qiymatlar
const (
	DefaultPriceURL         = "https://1c.ru/ftp/pub/pricelst/price_1c.zip"
	DefaultShopName         = "Краммерти.рф"
	DefaultCompanyName      = `ООО "Краммерти"`
	DefaultShopURL          = "https://краммерти.рф"
	DefaultBackendURL       = "https://krammerti-payment-backend.onrender.com"
	DefaultIndexNowEndpoint = "https://yandex.com/indexnow"
	DefaultGeminiModel      = "gemini-2.0-flash"
	DefaultSchedule         = "0 3 1 * *"
)

// DefaultStaticPaths saytning statik sahifalari
var DefaultStaticPaths = []string{"/", "/catalog.html", "/contacts.html", "/delivery.html", "/payment.html"}

// Load konfiguratsiyani yuklash
func Load() (*Config, error) {
	// .env faylini yuklash (mavjud bo'lsa)
	_ = godotenv.Load()

	config := &Config{
		PriceURL:         getEnv("PRICE_URL", DefaultPriceURL),
		FetchTimeout:     30 * time.Second,
		HeaderRows:       2,
		OutputDir:        getEnv("OUTPUT_DIR", "dist"),
		ShopName:         getEnv("SHOP_NAME", DefaultShopName),
		CompanyName:      getEnv("COMPANY_NAME", DefaultCompanyName),
		ShopURL:          strings.TrimRight(getEnv("SHOP_URL", DefaultShopURL), "/"),
		ProductImageURL:  getEnv("PRODUCT_IMAGE_URL", DefaultBackendURL+"/logo-1c.svg"),
		StaticPaths:      DefaultStaticPaths,
		IndexNowEndpoint: getEnv("INDEXNOW_ENDPOINT", DefaultIndexNowEndpoint),
		RunDBPath:        getEnv("RUN_DB_PATH", "data/runs.db"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		TelegramToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", DefaultGeminiModel),
		R2Endpoint:       os.Getenv("R2_ENDPOINT"),
		R2AccessKey:      os.Getenv("R2_ACCESS_KEY"),
		R2SecretKey:      os.Getenv("R2_SECRET_KEY"),
		R2Bucket:         os.Getenv("R2_BUCKET_NAME"),
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		GCSCredentials:   os.Getenv("GCS_CREDENTIALS_FILE"),
		MirrorKeyPrefix:  os.Getenv("MIRROR_KEY_PREFIX"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":3000"),
		DownloadKey:      os.Getenv("DOWNLOAD_KEY"),
		GenerateSchedule: getEnv("GENERATE_SCHEDULE", DefaultSchedule),

		GoogleIndexingCredentials: os.Getenv("GOOGLE_INDEXING_CREDENTIALS"),
		IndexNowKey:               os.Getenv("INDEXNOW_KEY"),
	}

	if port := os.Getenv("PORT"); port != "" && os.Getenv("HTTP_ADDR") == "" {
		config.HTTPAddr = ":" + port
	}

	if raw := os.Getenv("FETCH_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("FETCH_TIMEOUT noto'g'ri formatda: %v", err)
		}
		config.FetchTimeout = timeout
	}

	if raw := os.Getenv("HEADER_ROWS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("HEADER_ROWS noto'g'ri formatda: %q", raw)
		}
		config.HeaderRows = parsed
	}

	if raw := os.Getenv("DESCRIBE_LIMIT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("DESCRIBE_LIMIT noto'g'ri formatda: %v", err)
		}
		config.DescribeLimit = parsed
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID noto'g'ri formatda: %v", err)
		}
		config.TelegramChatID = parsed
	}

	if raw := os.Getenv("STATIC_PATHS"); raw != "" {
		config.StaticPaths = splitList(raw)
	}

	return config, nil
}

// R2Enabled R2 mirror uchun barcha qiymatlar borligini tekshirish
func (c *Config) R2Enabled() bool {
	return c.R2Endpoint != "" && c.R2AccessKey != "" && c.R2SecretKey != "" && c.R2Bucket != ""
}

// TelegramEnabled hisobot yuborish mumkinligini tekshirish
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
