package frontend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/Ramsey-B/poppy/pkg/middleware"
	"github.com/Ramsey-B/poppy/pkg/models"
)

// Backend is the subset of the poppy API the UI talks to.
type Backend interface {
	DBHealth(ctx context.Context) (models.HealthResponse, error)
	SchemaSummary(ctx context.Context) ([]models.SchemaColumn, error)
	Add(ctx context.Context, line string) (*AddResult, error)
	SQLSearch(ctx context.Context, statement string) (models.SqlResponse, error)
	Search(ctx context.Context, question, model string) (models.SearchResponse, error)
}

// AddResult is the backend verdict on a data line. Detail is empty on success.
type AddResult struct {
	StatusCode int
	Detail     string
}

func (r *AddResult) OK() bool {
	return r.StatusCode == http.StatusOK || r.StatusCode == http.StatusCreated
}

type BackendClient struct {
	client *resty.Client
}

func NewBackendClient(cfg Config) *BackendClient {
	client := resty.New().
		SetBaseURL(cfg.BackendURL).
		SetHeader("Accept", "application/json")
	if cfg.BackendTimeout > 0 {
		client.SetTimeout(cfg.BackendTimeout)
	}
	return &BackendClient{client: client}
}

func (b *BackendClient) DBHealth(ctx context.Context) (models.HealthResponse, error) {
	var out models.HealthResponse
	err := b.get(ctx, "/db_health", &out)
	return out, err
}

func (b *BackendClient) SchemaSummary(ctx context.Context) ([]models.SchemaColumn, error) {
	var out []models.SchemaColumn
	err := b.get(ctx, "/schema_summary", &out)
	return out, err
}

func (b *BackendClient) Add(ctx context.Context, line string) (*AddResult, error) {
	var failure middleware.ErrorResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(models.AddRequest{DataLine: line}).
		SetError(&failure).
		Post("/add")
	if err != nil {
		return nil, err
	}

	res := &AddResult{StatusCode: resp.StatusCode()}
	if res.OK() {
		return res, nil
	}

	res.Detail = failure.Message
	if res.Detail == "" {
		res.Detail = resp.String()
	}
	if res.Detail == "" {
		res.Detail = fmt.Sprintf("Backend %d", resp.StatusCode())
	}
	return res, nil
}

func (b *BackendClient) SQLSearch(ctx context.Context, statement string) (models.SqlResponse, error) {
	var out models.SqlResponse
	err := b.post(ctx, "/sql_search", models.SqlRequest{SqlQuery: statement}, &out)
	return out, err
}

func (b *BackendClient) Search(ctx context.Context, question, model string) (models.SearchResponse, error) {
	var out models.SearchResponse
	err := b.post(ctx, "/search", models.SearchRequest{Question: question, Model: model}, &out)
	return out, err
}

func (b *BackendClient) get(ctx context.Context, path string, out any) error {
	resp, err := b.client.R().SetContext(ctx).SetResult(out).Get(path)
	return checkResponse(path, resp, err)
}

func (b *BackendClient) post(ctx context.Context, path string, body, out any) error {
	resp, err := b.client.R().SetContext(ctx).SetBody(body).SetResult(out).Post(path)
	return checkResponse(path, resp, err)
}

// StatusError is returned when the backend answered with a non-2xx status.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s answered %d: %s", e.Path, e.StatusCode, e.Body)
}

func checkResponse(path string, resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &StatusError{Path: path, StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
