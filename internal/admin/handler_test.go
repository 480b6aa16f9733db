// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/science-ai/backend/internal/usage"
	"github.com/science-ai/backend/internal/user"
)

func passThrough(next http.Handler) http.Handler { return next }

func get(t *testing.T, h *Handler, path string, dst any) int {
	t.Helper()

	r := chi.NewRouter()
	h.RegisterRoutes(r, passThrough, passThrough)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if dst != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
	return rec.Code
}

func TestGetSystemStats(t *testing.T) {
	h := NewHandler(HandlerConfig{
		DBStats:    func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 25, InUse: 3} },
		RedisStats: func() *redis.PoolStats { return &redis.PoolStats{Hits: 7, TotalConns: 4} },
		DBPing:     func(context.Context) error { return nil },
		RedisPing:  func(context.Context) error { return errors.New("down") },
		CountByPlan: func(context.Context) ([]user.PlanCount, error) {
			return []user.PlanCount{{Plan: usage.PlanFree, Users: 9}}, nil
		},
	})

	var got SystemStatsResponse
	require.Equal(t, http.StatusOK, get(t, h, "/admin/stats", &got))

	assert.True(t, got.Database.Healthy)
	require.NotNil(t, got.Database.Stats)
	assert.Equal(t, 25, got.Database.Stats.MaxOpenConnections)
	assert.Equal(t, 3, got.Database.Stats.InUse)

	assert.False(t, got.Redis.Healthy)
	require.NotNil(t, got.Redis.Stats)
	assert.Equal(t, uint32(7), got.Redis.Stats.Hits)

	assert.NotEmpty(t, got.Runtime.GoVersion)
	assert.Equal(t, []user.PlanCount{{Plan: usage.PlanFree, Users: 9}}, got.Plans)
}

func TestGetSystemStatsWithoutDependencies(t *testing.T) {
	h := NewHandler(HandlerConfig{
		CountByPlan: func(context.Context) ([]user.PlanCount, error) {
			return nil, errors.New("db gone")
		},
	})

	var got SystemStatsResponse
	require.Equal(t, http.StatusOK, get(t, h, "/admin/stats", &got))
	assert.False(t, got.Database.Healthy)
	assert.Nil(t, got.Database.Stats)
	assert.Nil(t, got.Plans)
}

func TestGetPlanStats(t *testing.T) {
	h := NewHandler(HandlerConfig{
		CountByPlan: func(context.Context) ([]user.PlanCount, error) {
			return nil, errors.New("db gone")
		},
	})
	assert.Equal(t, http.StatusInternalServerError, get(t, h, "/admin/stats/plans", nil))

	var plans []user.PlanCount
	assert.Equal(t, http.StatusOK, get(t, NewHandler(HandlerConfig{}), "/admin/stats/plans", &plans))
	assert.Empty(t, plans)
}
