package utility_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirzahilmi/railx-envelope/internal/common/config"
	"github.com/mirzahilmi/railx-envelope/internal/common/middleware"
	"github.com/mirzahilmi/railx-envelope/internal/utility"
)

type health struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

func decode(t *testing.T, raw []byte) health {
	t.Helper()
	var h health
	require.NoError(t, json.Unmarshal(raw, &h))
	return h
}

func TestHealth(t *testing.T) {
	ok := utility.Check{Name: "postgres", Ping: func(context.Context) error { return nil }}
	down := utility.Check{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	t.Run("no dependencies", func(t *testing.T) {
		_, api := humatest.New(t)
		utility.RegisterHandler(context.Background(), api, middleware.NewMiddleware(api, config.Config{}))

		resp := api.Get("/healthz")
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "ok", decode(t, resp.Body.Bytes()).Status)
	})

	t.Run("all healthy", func(t *testing.T) {
		_, api := humatest.New(t)
		utility.RegisterHandler(context.Background(), api, middleware.NewMiddleware(api, config.Config{}), ok)

		resp := api.Get("/healthz")
		assert.Equal(t, http.StatusOK, resp.Code)
		body := decode(t, resp.Body.Bytes())
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, map[string]string{"postgres": "ok"}, body.Dependencies)
	})

	t.Run("degraded", func(t *testing.T) {
		_, api := humatest.New(t)
		utility.RegisterHandler(context.Background(), api, middleware.NewMiddleware(api, config.Config{}), ok, down)

		resp := api.Get("/healthz")
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})
}
