package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covera-app/covera/constants"
	"github.com/covera-app/covera/internal/llm"
)

func chatResponse(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": content}}},
	})
	return b
}

type capture struct {
	calls atomic.Int32
	body  map[string]any
	auth  string
}

func newServer(t *testing.T, status int, content string, c *capture) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.calls.Add(1)
		c.auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &c.body)
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write(chatResponse(content))
		} else {
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: baseURL, LenientOptional: true}, nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient(Config{}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestExtractFields_TextInsurance(t *testing.T) {
	var c capture
	content := `{"expirationDate":"2026-03-01","policies":[{"type":"COMMERCIAL GENERAL LIABILITY","coverageLimit":1000000,"expiryDate":"2026-03-01","carrier":"Hartford","policyNumber":"GL-1"}],"insuredName":"Acme","certificateHolder":null}`
	srv := newServer(t, http.StatusOK, content, &c)

	out, raw, err := newTestClient(t, srv.URL).ExtractFields(context.Background(), llm.ExtractRequest{
		Kind: constants.KindInsurance,
		Text: "CERTIFICATE OF LIABILITY INSURANCE ...",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	require.NotNil(t, out.Insurance)
	assert.Nil(t, out.Contract)
	require.Len(t, out.Insurance.Policies, 1)
	assert.Equal(t, llm.Amount("1000000"), *out.Insurance.Policies[0].CoverageLimit)
	assert.Nil(t, out.Insurance.CertificateHolder)

	assert.Equal(t, int32(1), c.calls.Load())
	assert.Equal(t, "Bearer sk-test", c.auth)
	assert.EqualValues(t, 0, c.body["temperature"])
	assert.Equal(t, map[string]any{"type": "json_object"}, c.body["response_format"])
	assert.NotZero(t, c.body["max_tokens"])
	msgs := c.body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.IsType(t, "", msgs[1].(map[string]any)["content"])
}

func TestExtractFields_VisionContract(t *testing.T) {
	var c capture
	content := `{"contractType":"MSA","startDate":"2025-01-01","endDate":"2026-01-01","value":"$120,000","autoRenewal":true,"parties":[{"name":"Acme","role":"Vendor"}],"description":null}`
	srv := newServer(t, http.StatusOK, content, &c)

	out, _, err := newTestClient(t, srv.URL).ExtractFields(context.Background(), llm.ExtractRequest{
		Kind:         constants.KindContract,
		ImageDataURL: llm.ToDataURL([]byte{0x89, 0x50}, "image/png"),
	})
	require.NoError(t, err)
	require.NotNil(t, out.Contract)
	assert.Equal(t, llm.Amount("$120,000"), *out.Contract.Value)
	assert.True(t, *out.Contract.AutoRenewal)

	msgs := c.body["messages"].([]any)
	parts := msgs[1].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "image_url", parts[1].(map[string]any)["type"])
}

func TestExtractFields_AllNullIsAccepted(t *testing.T) {
	var c capture
	srv := newServer(t, http.StatusOK, `{"expirationDate":null,"policies":[],"insuredName":null,"certificateHolder":null}`, &c)

	out, _, err := newTestClient(t, srv.URL).ExtractFields(context.Background(), llm.ExtractRequest{Kind: constants.KindInsurance, Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, llm.Empty(constants.KindInsurance), out)
}

func TestExtractFields_InvalidStructureIsHardError(t *testing.T) {
	cases := map[string]string{
		"not json":     `here are your fields`,
		"missing keys": `{"policies":[]}`,
		"wrong type":   `{"expirationDate":null,"policies":5,"insuredName":null,"certificateHolder":null}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			var c capture
			srv := newServer(t, http.StatusOK, content, &c)
			_, _, err := newTestClient(t, srv.URL).ExtractFields(context.Background(), llm.ExtractRequest{Kind: constants.KindInsurance, Text: "x"})
			require.Error(t, err)
			assert.ErrorIs(t, err, llm.ErrInvalidResponse)
		})
	}
}

func TestExtractFields_Non2xxPropagates(t *testing.T) {
	var c capture
	srv := newServer(t, http.StatusTooManyRequests, "", &c)

	_, _, err := newTestClient(t, srv.URL).ExtractFields(context.Background(), llm.ExtractRequest{Kind: constants.KindContract, Text: "x"})
	require.Error(t, err)
	var se *llm.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, int32(1), c.calls.Load(), "no retries")
}

func TestExtractFields_NullListIsEmpty(t *testing.T) {
	var c capture
	srv := newServer(t, http.StatusOK, `{"contractType":null,"startDate":null,"endDate":null,"value":null,"autoRenewal":null,"parties":null,"description":null}`, &c)

	// strict mode: no sanitizer in front of the schema
	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	out, _, err := client.ExtractFields(context.Background(), llm.ExtractRequest{Kind: constants.KindContract, Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, llm.Empty(constants.KindContract), out)
}
