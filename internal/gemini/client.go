// Package gemini is a small client for the Gemini generateContent endpoint
// restricted to structured JSON output.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ericogr/biogenesis/internal/constants"
)

var (
	ErrNoCandidates  = errors.New("gemini returned no candidates")
	ErrEmptyResponse = errors.New("gemini returned an empty response")
	ErrNoCredentials = errors.New("no Gemini credentials available")
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini error: %d %s", e.Status, e.Body)
}

// Request is one structured-output generation.
type Request struct {
	Prompt string
	// Schema constrains the JSON the model returns.
	Schema      *jsonschema.Schema
	Temperature *float64
}

// Client calls generateContent. Safe for concurrent use.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.model = m
		}
	}
}

// WithAPIKey sends the key in the x-goog-api-key header.
func WithAPIKey(k string) Option {
	return func(c *Client) { c.apiKey = k }
}

// WithHTTPClient replaces the transport, e.g. an oauth2 client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a client with explicit options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: constants.GeminiBaseURL,
		model:   constants.GeminiModel,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewFromEnv picks credentials in order: GEMINI_API_KEY, GEMINI_ACCESS_TOKEN
// (a bearer token), then Google application default credentials.
func NewFromEnv(ctx context.Context, opts ...Option) (*Client, error) {
	if key := os.Getenv(constants.EnvGeminiAPIKey); key != "" {
		return New(append([]Option{WithAPIKey(key)}, opts...)...), nil
	}
	if tok := os.Getenv(constants.EnvGeminiAccessToken); tok != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"})
		hc := oauth2.NewClient(ctx, src)
		hc.Timeout = 60 * time.Second
		return New(append([]Option{WithHTTPClient(hc)}, opts...)...), nil
	}
	hc, err := google.DefaultClient(ctx, constants.GeminiScopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: set %s or %s: %v", ErrNoCredentials, constants.EnvGeminiAPIKey, constants.EnvGeminiAccessToken, err)
	}
	hc.Timeout = 60 * time.Second
	return New(append([]Option{WithHTTPClient(hc)}, opts...)...), nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType   string             `json:"responseMimeType"`
	ResponseJSONSchema *jsonschema.Schema `json:"responseJsonSchema,omitempty"`
	Temperature        *float64           `json:"temperature,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// GenerateText returns the raw JSON text of the first candidate.
func (c *Client) GenerateText(ctx context.Context, r Request) (string, error) {
	payload := generateRequest{
		Contents: []content{{Role: constants.GeminiRoleUser, Parts: []part{{Text: r.Prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType:   constants.GeminiResponseMimeType,
			ResponseJSONSchema: r.Schema,
			Temperature:        r.Temperature,
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	url := c.baseURL + fmt.Sprintf(constants.GeminiGenerateFmt, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	if c.apiKey != "" {
		req.Header.Set(constants.HeaderGoogAPIKey, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode Gemini response: %w", err)
	}
	if len(out.Candidates) == 0 {
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: blocked (%s)", ErrNoCandidates, out.PromptFeedback.BlockReason)
		}
		return "", ErrNoCandidates
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// GenerateJSON decodes the first candidate into out.
func (c *Client) GenerateJSON(ctx context.Context, r Request, out interface{}) error {
	text, err := c.GenerateText(ctx, r)
	if err != nil {
		return err
	}
	// tolerate a fenced block even with a JSON mime type
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), out); err != nil {
		return fmt.Errorf("gemini returned unparseable JSON: %w", err)
	}
	return nil
}

// SchemaFor reflects the response schema of v, a pointer to a struct.
func SchemaFor(v interface{}) *jsonschema.Schema {
	r := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(v)
	s.Version = ""
	return s
}
