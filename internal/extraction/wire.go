package extraction

import (
	"log/slog"

	"github.com/covera-app/covera/internal/common"
	"github.com/covera-app/covera/internal/llm/openai"
	"github.com/covera-app/covera/internal/textextract"
)

// NewFromConfig wires pdftotext and the OpenAI client into a Service. The
// client sanitizes near-miss responses (null lists, snake_case keys, "N/A")
// before validating. It fails with a config error when no API key is set.
func NewFromConfig(cfg *common.Config, logger *slog.Logger) (*Service, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}
	client, err := openai.NewClient(openai.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		VisionModel:     cfg.LLM.VisionModel,
		MaxTokens:       cfg.LLM.MaxTokens,
		Timeout:         cfg.LLM.Timeout,
		LenientOptional: true,
	}, logger)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, err.Error(), common.ErrConfig)
	}
	text := textextract.NewExtractor(textextract.Config{
		Pdftotext: cfg.PDF.Pdftotext,
		MaxPages:  cfg.PDF.MaxPages,
	}, nil, logger)
	return NewService(Config{Timeout: cfg.Extraction.Timeout}, text, client, logger), nil
}
