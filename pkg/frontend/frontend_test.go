package frontend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/poppy/internal/handlers"
	catalogrepo "github.com/Ramsey-B/poppy/internal/repositories/catalog"
	"github.com/Ramsey-B/poppy/internal/services/catalog"
	"github.com/Ramsey-B/poppy/internal/services/textsql"
	"github.com/Ramsey-B/poppy/internal/testdb"
	"github.com/Ramsey-B/poppy/pkg/frontend"
	"github.com/Ramsey-B/poppy/pkg/health"
	"github.com/Ramsey-B/poppy/pkg/schema"
	"github.com/Ramsey-B/poppy/pkg/sqlexec"
)

type fixedGenerator struct{ sql string }

func (g fixedGenerator) GenerateSQL(ctx context.Context, question, model string) (string, error) {
	return g.sql, nil
}

type fixedModels []string

func (m fixedModels) ListModels(ctx context.Context) ([]string, error) { return m, nil }

// startBackend runs the real API on an in-process sqlite store.
func startBackend(t *testing.T) string {
	logger := testdb.Logger()
	db := testdb.New(t)
	executor := sqlexec.NewExecutor(db, logger)
	reader := schema.NewReader(db, logger)

	e := handlers.NewRouter(handlers.RouterConfig{AppName: "poppy-test"}, logger,
		handlers.NewCatalogHandler(catalog.NewService(catalogrepo.NewRepository(db, logger), logger)),
		handlers.NewSearchHandler(executor, textsql.NewService(fixedGenerator{sql: "SELECT titolo, anno FROM movies"}, executor, logger), reader, logger),
		health.NewChecker(db, nil, "test", logger),
	)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv.URL
}

func newUI(t *testing.T, backendURL string) *echo.Echo {
	cfg := frontend.Config{BackendURL: backendURL, DefaultModel: "gemma3:1b-it-qat", BackendTimeout: 5 * time.Second}
	h, err := frontend.NewHandler(cfg, frontend.NewBackendClient(cfg), fixedModels{"llama2", "gemma3:1b-it-qat"}, testdb.Logger())
	require.NoError(t, err)

	e := handlers.NewRouter(handlers.RouterConfig{AppName: "poppy-ui-test"}, testdb.Logger(), h)
	return e
}

func serve(e *echo.Echo, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func postForm(e *echo.Echo, path string, values url.Values) *httptest.ResponseRecorder {
	return serve(e, http.MethodPost, path, echo.MIMEApplicationForm, values.Encode())
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

func TestIndex(t *testing.T) {
	ui := newUI(t, startBackend(t))

	rec := serve(ui, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := document(t, rec)
	assert.Equal(t, "Text→SQL UI", doc.Find("title").Text())

	var options []string
	doc.Find("#model option").Each(func(_ int, s *goquery.Selection) {
		options = append(options, s.Text())
	})
	assert.Equal(t, []string{"gemma3:1b-it-qat", "llama2"}, options)
	assert.Equal(t, "gemma3:1b-it-qat", doc.Find("#model option[selected]").Text())

	rec = serve(ui, http.MethodGet, "/static/style.css", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndSchema(t *testing.T) {
	ui := newUI(t, startBackend(t))

	rec := serve(ui, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", document(t, rec).Find("#health .status").Text())

	rec = serve(ui, http.MethodGet, "/schema", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := false
	document(t, rec).Find("#schema tbody tr").Each(func(_ int, s *goquery.Selection) {
		if s.Find("td").First().Text() == "movies" && s.Find("td").Last().Text() == "titolo" {
			found = true
		}
	})
	assert.True(t, found)
}

func TestAdd(t *testing.T) {
	ui := newUI(t, startBackend(t))

	t.Run("should redirect to the schema on success", func(t *testing.T) {
		rec := postForm(ui, "/add", url.Values{"data_line": {"Matrix,Wachowski,55,1999,SciFi,Netflix,Prime"}})
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/schema", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("should redirect home without a line", func(t *testing.T) {
		rec := postForm(ui, "/add", url.Values{})
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("should show the backend message on the index", func(t *testing.T) {
		rec := postForm(ui, "/add", url.Values{"data_line": {"Matrix,Wachowski,old,1999,SciFi,,"}})
		require.Equal(t, http.StatusOK, rec.Code)
		doc := document(t, rec)
		assert.Contains(t, doc.Find("#add-error").Text(), "'eta' must be an integer")
		assert.Equal(t, "Matrix,Wachowski,old,1999,SciFi,,", doc.Find("#data_line").AttrOr("value", ""))
	})
}

func TestUIAdd(t *testing.T) {
	ui := newUI(t, startBackend(t))

	decode := func(rec *httptest.ResponseRecorder) map[string]any {
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	rec := serve(ui, http.MethodPost, "/ui/add", echo.MIMEApplicationJSON, `{"data_line":"Heat,Michael Mann,81,1995,Crime,,"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"ok": true}, decode(rec))

	rec = serve(ui, http.MethodPost, "/ui/add", echo.MIMEApplicationJSON, `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Body JSON mancante/non valido", decode(rec)["error"])

	rec = serve(ui, http.MethodPost, "/ui/add", echo.MIMEApplicationJSON, `{"data_line":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Campo data_line mancante", decode(rec)["error"])

	rec = serve(ui, http.MethodPost, "/ui/add", echo.MIMEApplicationJSON, `{"data_line":"Heat,Michael Mann"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Number of fields expected = 7, found = 2", decode(rec)["error"])
}

func TestUIAdd_BackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	ui := newUI(t, srv.URL)

	rec := serve(ui, http.MethodPost, "/ui/add", echo.MIMEApplicationJSON, `{"data_line":"Heat,Michael Mann,81,1995,Crime,,"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Errore di rete verso backend")
}

func TestUISQL(t *testing.T) {
	ui := newUI(t, startBackend(t))
	require.Equal(t, http.StatusFound, postForm(ui, "/add", url.Values{"data_line": {"Matrix,Wachowski,55,1999,SciFi,Netflix,Prime"}}).Code)

	t.Run("should render rows for a valid statement", func(t *testing.T) {
		rec := postForm(ui, "/ui/sql", url.Values{"sql_query": {"SELECT titolo, anno FROM movies"}})
		require.Equal(t, http.StatusOK, rec.Code)

		doc := document(t, rec)
		assert.Equal(t, "SQL", doc.Find(".mode").Text())
		assert.Equal(t, "valid", doc.Find(".badge").Text())
		assert.True(t, doc.Find(".badge").HasClass("valid"))
		assert.Equal(t, "titoloanno", doc.Find("table.rows th").Text())
		assert.Equal(t, "Matrix1999", doc.Find("table.rows tbody tr").First().Text())
		assert.Equal(t, 2, doc.Find("dl.kv dt").Length())
	})

	t.Run("should badge unsafe statements", func(t *testing.T) {
		rec := postForm(ui, "/ui/sql", url.Values{"sql_query": {"DROP TABLE movies"}})
		require.Equal(t, http.StatusOK, rec.Code)

		doc := document(t, rec)
		assert.Equal(t, "unsafe", doc.Find(".badge").Text())
		assert.True(t, doc.Find(".badge").HasClass("invalid"))
		assert.Equal(t, 0, doc.Find("table.rows").Length())
	})

	t.Run("should complain about a missing statement", func(t *testing.T) {
		rec := postForm(ui, "/ui/sql", url.Values{"sql_query": {"  "}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "<div class='bubble'><span class='badge invalid'>Errore</span> SQL mancante.</div>", rec.Body.String())
	})
}

func TestUISearch(t *testing.T) {
	ui := newUI(t, startBackend(t))
	require.Equal(t, http.StatusFound, postForm(ui, "/add", url.Values{"data_line": {"Matrix,Wachowski,55,1999,SciFi,Netflix,Prime"}}).Code)

	rec := postForm(ui, "/ui/search", url.Values{"question": {"which movies?"}})
	require.Equal(t, http.StatusOK, rec.Code)

	doc := document(t, rec)
	assert.Equal(t, "LLM", doc.Find(".mode").Text())
	assert.Equal(t, "SELECT titolo, anno FROM movies", doc.Find("pre.sql").Text())
	assert.Equal(t, "Matrix1999", doc.Find("table.rows tbody tr").First().Text())

	rec = postForm(ui, "/ui/search", url.Values{"question": {""}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Domanda mancante.")
}
