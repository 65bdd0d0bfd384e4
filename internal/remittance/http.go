package remittance

import (
	"context"
	"crypto/rsa"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/common/config"
	"github.com/mirzahilmi/railx-envelope/internal/common/constant"
	"github.com/mirzahilmi/railx-envelope/internal/common/middleware"
	"github.com/mirzahilmi/railx-envelope/internal/envelope"
)

// Keyring supplies recipient private keys held in custody;
// *recipient.VaultKeyring satisfies it. Every call returns a key owned by the
// caller, which destroys it once the request is done.
type Keyring interface {
	PrivateKey(ctx context.Context, identity string) (*rsa.PrivateKey, error)
}

type handler struct {
	config  config.Config
	service *Service
	keyring Keyring
}

func RegisterHandler(
	ctx context.Context,
	router huma.API,
	middleware middleware.Middleware,
	config config.Config,
	service *Service,
	keyring Keyring,
) {
	h := handler{config, service, keyring}

	huma.Register(router, huma.Operation{
		OperationID:   "seal-remittance",
		Method:        http.MethodPost,
		Path:          "/remittances",
		Summary:       "Seal a remittance into an encrypted envelope",
		Description:   "Not idempotent: every call produces a new envelope and commitment hash.",
		Tags:          []string{constant.OAPI_TAG_REMITTANCE},
		Security:      []map[string][]string{{constant.OAPI_SECURITY_SCHEME: {}}},
		Middlewares:   huma.Middlewares{middleware.NewOidcAuthorization(ctx)},
		DefaultStatus: http.StatusOK,
		Errors:        []int{http.StatusBadRequest, http.StatusConflict, http.StatusInternalServerError},
	}, h.Seal)

	huma.Register(router, huma.Operation{
		OperationID: "open-remittance",
		Method:      http.MethodPost,
		Path:        "/remittances/open",
		Summary:     "Open an envelope by its commitment hash",
		Tags:        []string{constant.OAPI_TAG_REMITTANCE},
		Security:    []map[string][]string{{constant.OAPI_SECURITY_SCHEME: {}}},
		Middlewares: huma.Middlewares{middleware.NewOidcAuthorization(ctx)},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError},
	}, h.Open)
}

type sealInput struct {
	Body Request
}

type sealOutput struct {
	Body Receipt
}

func (h handler) Seal(ctx context.Context, req *sealInput) (*sealOutput, error) {
	receipt, err := h.service.Seal(ctx, req.Body)
	if err != nil {
		return nil, apperr.ToHuma(err)
	}
	return &sealOutput{Body: receipt}, nil
}

type openInput struct {
	Body struct {
		CommitmentHash string `json:"commitmentHash" doc:"Blob hash anchored on the ledger, 0x hex"`
		PrivateKey     string `json:"privateKey,omitempty" required:"false" doc:"Recipient RSA private key PEM; ignored when keys are held in Vault"`
	}
}

type openOutput struct {
	Body Payload
}

func (h handler) Open(ctx context.Context, req *openInput) (*openOutput, error) {
	// reject a malformed hash before touching the key source
	if _, err := envelope.ParseDigest(req.Body.CommitmentHash); err != nil {
		return nil, apperr.ToHuma(err)
	}

	key, err := h.privateKey(ctx, req.Body.PrivateKey)
	if err != nil {
		return nil, apperr.ToHuma(err)
	}
	defer envelope.DestroyPrivateKey(key)

	payload, err := h.service.Open(ctx, req.Body.CommitmentHash, key)
	if err != nil {
		return nil, apperr.ToHuma(err)
	}
	return &openOutput{Body: payload}, nil
}

func (h handler) privateKey(ctx context.Context, suppliedPEM string) (*rsa.PrivateKey, error) {
	if h.config.Recipient.KeySource == config.KeySourceVault {
		if h.keyring == nil {
			return nil, apperr.New(apperr.KindInternal, "recipient keyring is not configured")
		}
		return h.keyring.PrivateKey(ctx, h.config.Recipient.Identity)
	}
	if suppliedPEM == "" {
		return nil, apperr.Validation("privateKey is required")
	}
	return envelope.ParsePrivateKeyPEM([]byte(suppliedPEM))
}
