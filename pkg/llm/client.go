// Package llm turns natural language questions into SQL with a local Ollama server.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/httpclient"
	"github.com/Ramsey-B/poppy/pkg/metrics"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/schema"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

const (
	tagsPath     = "/api/tags"
	pullPath     = "/api/pull"
	generatePath = "/api/generate"
)

// SchemaProvider supplies the live schema for the prompt.
type SchemaProvider interface {
	Summary(ctx context.Context) ([]models.SchemaColumn, error)
}

type Client struct {
	cfg    Config
	http   *httpclient.Client
	schema SchemaProvider
	logger ectologger.Logger
}

// NewClient builds the client. schemaProvider may be nil.
func NewClient(cfg Config, schemaProvider SchemaProvider, logger ectologger.Logger) *Client {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.Timeout

	return &Client{
		cfg:    cfg,
		http:   httpclient.NewClient(httpCfg, logger),
		schema: schemaProvider,
		logger: logger,
	}
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type pullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

// ResolveModel applies the forced and default model settings.
func (c *Client) ResolveModel(model string) string {
	if c.cfg.ForceModel != "" {
		return c.cfg.ForceModel
	}
	if model = strings.TrimSpace(model); model != "" {
		return model
	}
	return c.cfg.DefaultModel
}

// GenerateSQL asks the model for one SELECT answering question.
func (c *Client) GenerateSQL(ctx context.Context, question, model string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "llm.GenerateSQL")
	defer span.End()

	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}

	model = c.ResolveModel(model)
	prompt := BuildPrompt(question, c.describeSchema(ctx))

	if err := c.EnsureModel(ctx, model); err != nil {
		// generate reports the real failure if the server is unusable
		c.logger.WithContext(ctx).WithError(err).WithField("model", model).Warn("could not ensure model is installed")
	}

	raw, err := c.generate(ctx, model, prompt)
	if errors.Is(err, ErrModelNotFound) {
		c.logger.WithContext(ctx).WithField("model", model).Info("model missing at generate time, pulling and retrying once")
		if pullErr := c.Pull(ctx, model); pullErr != nil {
			tracing.RecordError(span, pullErr)
			return "", pullErr
		}
		raw, err = c.generate(ctx, model, prompt)
	}
	if err != nil {
		tracing.RecordError(span, err)
		return "", err
	}

	sql := CleanSQL(raw)
	c.logger.WithContext(ctx).WithFields(map[string]any{
		"model": model,
		"sql":   sql,
	}).Info("generated sql")
	return sql, nil
}

func (c *Client) describeSchema(ctx context.Context) string {
	if !c.cfg.IncludeSchema || c.schema == nil {
		return ""
	}

	columns, err := c.schema.Summary(ctx)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("prompting without schema summary")
		return ""
	}
	return schema.Describe(columns)
}

// ListModels returns the names of the locally installed models.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.call(ctx, http.MethodGet, tagsPath, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, tagsPath, resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.Unmarshal(resp.Body, &tags); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		names = append(names, name)
	}
	return names, nil
}

// EnsureModel pulls model when it is not installed yet.
func (c *Client) EnsureModel(ctx context.Context, model string) error {
	names, err := c.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if sameModel(name, model) {
			return nil
		}
	}
	return c.Pull(ctx, model)
}

// Pull downloads model and waits for completion.
func (c *Client) Pull(ctx context.Context, model string) error {
	c.logger.WithContext(ctx).WithField("model", model).Info("pulling model")

	resp, err := c.call(ctx, http.MethodPost, pullPath, pullRequest{Model: model, Stream: false})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: pulling %s returned %d: %s", ErrUnexpectedStatus, model, resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}
	return nil
}

// Ping reports whether the model server answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

func (c *Client) generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.call(ctx, http.MethodPost, generatePath, generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: c.cfg.Temperature,
			TopP:        c.cfg.TopP,
			NumPredict:  c.cfg.MaxTokens,
		},
	})
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusNotFound || isModelNotFound(resp.Body) {
		return "", fmt.Errorf("%w: %s", ErrModelNotFound, model)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	raw, ok := body["response"]
	if !ok {
		return "", ErrMissingField
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", fmt.Errorf("%w: 'response' is not a string", ErrMalformedResponse)
	}
	return text, nil
}

func (c *Client) call(ctx context.Context, method, path string, payload any) (*httpclient.Response, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	start := time.Now()

	var (
		resp *httpclient.Response
		err  error
	)
	if method == http.MethodGet {
		resp, err = c.http.Get(ctx, url)
	} else {
		resp, err = c.http.PostJSON(ctx, url, payload)
	}

	if err != nil {
		metrics.RecordLLMRequest(path, 0, time.Since(start))
		return nil, classifyTransportError(err)
	}

	metrics.RecordLLMRequest(path, resp.StatusCode, time.Since(start))
	return resp, nil
}

func isModelNotFound(body []byte) bool {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	msg := strings.ToLower(payload.Error)
	return strings.Contains(msg, "model") && strings.Contains(msg, "not found")
}

// sameModel treats an untagged name as :latest.
func sameModel(installed, wanted string) bool {
	if installed == wanted {
		return true
	}
	withLatest := func(name string) string {
		if strings.Contains(name, ":") {
			return name
		}
		return name + ":latest"
	}
	return withLatest(installed) == withLatest(wanted)
}
