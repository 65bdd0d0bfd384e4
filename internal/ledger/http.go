package ledger

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/common/config"
	"github.com/mirzahilmi/railx-envelope/internal/common/constant"
	"github.com/mirzahilmi/railx-envelope/internal/common/middleware"
)

type InboxReader interface {
	Inbox(ctx context.Context, destination common.Address, fromBlock uint64) ([]InboxEntry, error)
}

type handler struct {
	identity common.Address
	inbox    InboxReader
}

// RegisterHandler exposes the inbox of the configured recipient identity.
func RegisterHandler(
	ctx context.Context,
	router huma.API,
	middleware middleware.Middleware,
	config config.Config,
	inbox InboxReader,
) {
	h := handler{common.HexToAddress(config.Recipient.Identity), inbox}

	huma.Register(router, huma.Operation{
		OperationID: "list-inbox",
		Method:      http.MethodGet,
		Path:        "/inbox",
		Summary:     "List envelope commitments addressed to this bank",
		Tags:        []string{constant.OAPI_TAG_LEDGER},
		Security:    []map[string][]string{{constant.OAPI_SECURITY_SCHEME: {}}},
		Middlewares: huma.Middlewares{middleware.NewOidcAuthorization(ctx)},
	}, h.List)
}

type inboxInput struct {
	FromBlock uint64 `query:"fromBlock" doc:"First block to scan"`
}

type inboxItem struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	TxHash        string    `json:"txHash"`
	BlockNumber   uint64    `json:"blockNumber"`
	BlobHash      string    `json:"blobHash"`
	KeyCommitment string    `json:"keyCommitment"`
	Amount        string    `json:"amount"`
	Expiry        time.Time `json:"expiry"`
}

type inboxOutput struct {
	Body struct {
		Destination string      `json:"destination"`
		Items       []inboxItem `json:"items"`
	}
}

func (h handler) List(ctx context.Context, req *inboxInput) (*inboxOutput, error) {
	entries, err := h.inbox.Inbox(ctx, h.identity, req.FromBlock)
	if err != nil {
		return nil, apperr.ToHuma(apperr.Storage(err, "failed to read ledger inbox"))
	}

	out := &inboxOutput{}
	out.Body.Destination = h.identity.Hex()
	out.Body.Items = make([]inboxItem, 0, len(entries))
	for _, e := range entries {
		item := inboxItem{
			ID:            e.ID.String(),
			Source:        e.Source.Hex(),
			Destination:   e.Destination.Hex(),
			TxHash:        e.TxHash.Hex(),
			BlockNumber:   e.BlockNumber,
			BlobHash:      e.Commitment.BlobHash.Hex(),
			KeyCommitment: e.Commitment.KeyCommitment.Hex(),
			Expiry:        e.Commitment.Expiry,
		}
		if e.Commitment.Amount != nil {
			item.Amount = e.Commitment.Amount.String()
		}
		out.Body.Items = append(out.Body.Items, item)
	}
	return out, nil
}
