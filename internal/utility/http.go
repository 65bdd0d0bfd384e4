package utility

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/mirzahilmi/railx-envelope/internal/common/constant"
	"github.com/mirzahilmi/railx-envelope/internal/common/middleware"
)

// Check is a named dependency probe run by the health endpoint.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type handler struct {
	checks []Check
}

func RegisterHandler(
	ctx context.Context,
	router huma.API,
	middleware middleware.Middleware,
	checks ...Check,
) {
	h := handler{checks}

	huma.Register(router, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Liveness and dependency health",
		Tags:        []string{constant.OAPI_TAG_MISC},
	}, h.Health)
}

type healthOutput struct {
	Body struct {
		Status       string            `json:"status" enum:"ok,degraded"`
		Dependencies map[string]string `json:"dependencies,omitempty"`
	}
}

func (h handler) Health(ctx context.Context, _ *struct{}) (*healthOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	out := &healthOutput{}
	out.Body.Status = "ok"
	for _, check := range h.checks {
		if out.Body.Dependencies == nil {
			out.Body.Dependencies = make(map[string]string, len(h.checks))
		}
		if err := check.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", check.Name).Msg("health check failed")
			out.Body.Dependencies[check.Name] = "unreachable"
			out.Body.Status = "degraded"
			continue
		}
		out.Body.Dependencies[check.Name] = "ok"
	}
	if out.Body.Status != "ok" {
		return nil, huma.Error503ServiceUnavailable("dependencies are unreachable")
	}
	return out, nil
}
