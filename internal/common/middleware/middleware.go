package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/mirzahilmi/railx-envelope/internal/common/config"
)

// TokenVerifier is satisfied by *oidc.IDTokenVerifier.
type TokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

type Middleware struct {
	api      huma.API
	config   config.Config
	verifier func(ctx context.Context) (TokenVerifier, error)
}

type subjectKey struct{}

func NewMiddleware(api huma.API, cfg config.Config) Middleware {
	var (
		mu       sync.Mutex
		verifier TokenVerifier
	)
	return Middleware{
		api:    api,
		config: cfg,
		verifier: func(ctx context.Context) (TokenVerifier, error) {
			mu.Lock()
			defer mu.Unlock()
			if verifier != nil {
				return verifier, nil
			}
			// failed discovery is not cached, the next request retries
			provider, err := oidc.NewProvider(ctx, cfg.Oidc.Issuer)
			if err != nil {
				return nil, err
			}
			verifier = provider.Verifier(&oidc.Config{ClientID: cfg.Oidc.ClientId})
			return verifier, nil
		},
	}
}

// NewOidcAuthorization requires a bearer ID token issued by the configured
// OIDC provider. Without an issuer every request passes through. The
// provider is discovered on first use with ctx.
func (m Middleware) NewOidcAuthorization(ctx context.Context) func(huma.Context, func(huma.Context)) {
	if m.config.Oidc.Issuer == "" {
		return func(c huma.Context, next func(huma.Context)) { next(c) }
	}

	return func(c huma.Context, next func(huma.Context)) {
		verifier, err := m.verifier(ctx)
		if err != nil {
			log.Error().Err(err).Str("issuer", m.config.Oidc.Issuer).Msg("failed to discover oidc provider")
			huma.WriteErr(m.api, c, http.StatusServiceUnavailable, "authorization is unavailable")
			return
		}
		m.authorize(verifier)(c, next)
	}
}

func (m Middleware) authorize(verifier TokenVerifier) func(huma.Context, func(huma.Context)) {
	return func(c huma.Context, next func(huma.Context)) {
		raw, ok := strings.CutPrefix(c.Header("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			huma.WriteErr(m.api, c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		token, err := verifier.Verify(c.Context(), strings.TrimSpace(raw))
		if err != nil {
			log.Debug().Err(err).Msg("rejected bearer token")
			huma.WriteErr(m.api, c, http.StatusUnauthorized, "invalid bearer token")
			return
		}
		next(huma.WithValue(c, subjectKey{}, token.Subject))
	}
}

// Subject returns the authenticated token subject, if any.
func Subject(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey{}).(string)
	return subject
}
