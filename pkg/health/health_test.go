package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/poppy/internal/testdb"
	"github.com/Ramsey-B/poppy/pkg/health"
	"github.com/Ramsey-B/poppy/pkg/models"
)

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error { return p.err }

func serve(t *testing.T, checker *health.Checker, path string) (int, map[string]any) {
	e := echo.New()
	checker.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestDBHealth(t *testing.T) {
	t.Run("should report ok when the store answers", func(t *testing.T) {
		checker := health.NewChecker(testdb.New(t), nil, "test", testdb.Logger())

		code, body := serve(t, checker, "/db_health")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, map[string]any{"status": "ok"}, body)
	})

	t.Run("should report down when the store is gone", func(t *testing.T) {
		db := testdb.New(t)
		require.NoError(t, db.Close())
		checker := health.NewChecker(db, nil, "test", testdb.Logger())

		assert.Equal(t, models.HealthDown, checker.DBStatus(context.Background()))

		code, body := serve(t, checker, "/db_health")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "down", body["status"])
	})
}

func TestHealthHandler(t *testing.T) {
	t.Run("should be healthy with database and llm", func(t *testing.T) {
		checker := health.NewChecker(testdb.New(t), pinger{}, "test", testdb.Logger())

		code, body := serve(t, checker, "/api/v1/health")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("should degrade when the llm is unreachable", func(t *testing.T) {
		checker := health.NewChecker(testdb.New(t), pinger{err: errors.New("refused")}, "test", testdb.Logger())

		code, body := serve(t, checker, "/api/v1/health")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "degraded", body["status"])
	})

	t.Run("should not be ready before startup completes", func(t *testing.T) {
		checker := health.NewChecker(testdb.New(t), pinger{}, "test", testdb.Logger())

		code, _ := serve(t, checker, "/api/v1/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, code)

		checker.SetReady(true)
		code, _ = serve(t, checker, "/api/v1/health/ready")
		assert.Equal(t, http.StatusOK, code)

		code, body := serve(t, checker, "/api/v1/health/live")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "test", body["version"])
	})
}
