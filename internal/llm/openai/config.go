package openai

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// ErrMissingAPIKey is a configuration error: fatal, never retried.
var ErrMissingAPIKey = errors.New("openai: api key is required (OPENAI_API_KEY)")

// Config for the OpenAI client.
type Config struct {
	APIKey          string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL         string        // default https://api.openai.com/v1
	Model           string        // text model, e.g. "gpt-4o-mini"
	VisionModel     string        // defaults to Model
	MaxTokens       int           // default 2000
	Timeout         time.Duration // http client timeout
	LenientOptional bool          // sanitize near-miss responses before validating
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient validates cfg and builds a client. A missing API key fails here
// rather than on the first request.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}, nil
}
