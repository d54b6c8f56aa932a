package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/llm"
)

// ExtractFields implements llm.FieldExtractor with one chat/completions call.
// Text requests send the document text; vision requests attach the image as
// a data URL. A structurally invalid response is an error; a valid response
// full of nulls is a legitimate "not on the document" answer.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.ExtractedFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()
	vision := req.Vision()
	model := c.cfg.Model
	if vision {
		model = c.cfg.VisionModel
	}

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"kind", req.Kind,
		"model", model,
		"vision", vision,
		"text_len", len(req.Text),
	)

	if !req.Kind.Valid() {
		return llm.ExtractedFields{}, nil, fmt.Errorf("unknown document kind %q", req.Kind)
	}

	var userContent any = llm.BuildUserPrompt(req)
	if vision {
		userContent = []map[string]any{
			{"type": "text", "text": llm.BuildUserPrompt(req)},
			{"type": "image_url", "image_url": map[string]any{"url": req.ImageDataURL}},
		}
	}

	body := map[string]any{
		"model":           model,
		"temperature":     0,
		"max_tokens":      c.cfg.MaxTokens,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req.Kind, vision)},
			{"role": "user", "content": userContent},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, httpErr := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractedFields{}, raw, fmt.Errorf("openai: %w", httpErr)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractedFields{}, raw, fmt.Errorf("%w: decode openai response: %v", llm.ErrInvalidResponse, err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractedFields{}, raw, fmt.Errorf("%w: no choices in openai response", llm.ErrInvalidResponse)
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	if c.cfg.LenientOptional {
		cleaned, dropped, err := llm.NormalizeAndSanitizeJSON(content, req.Kind, c.log)
		if err != nil {
			c.log.Error("llm.extract.sanitize_failed",
				"req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.ExtractedFields{}, content, fmt.Errorf("%w: %v", llm.ErrInvalidResponse, err)
		}
		if len(dropped) > 0 {
			c.log.Warn("llm.extract.lenient_sanitize_applied", "req_id", rid, "dropped", dropped)
		}
		content = cleaned
	}

	if err := llm.ValidateFields(req.Kind, content); err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractedFields{}, content, err
	}

	out := llm.ExtractedFields{Kind: req.Kind}
	var target any
	if req.Kind == constants.KindContract {
		out.Contract = &llm.ContractFields{}
		target = out.Contract
	} else {
		out.Insurance = &llm.InsuranceFields{}
		target = out.Insurance
	}
	if err := json.Unmarshal(content, target); err != nil {
		c.log.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractedFields{}, content, fmt.Errorf("%w: unmarshal fields: %v", llm.ErrInvalidResponse, err)
	}
	if out.Insurance != nil && out.Insurance.Policies == nil {
		out.Insurance.Policies = []llm.PolicyFields{}
	}
	if out.Contract != nil && out.Contract.Parties == nil {
		out.Contract.Parties = []llm.PartyFields{}
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"kind", req.Kind,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, content, nil
}
