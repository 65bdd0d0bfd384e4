package remittance

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/mirzahilmi/railx-envelope/internal/audit"
	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/common/constant"
	"github.com/mirzahilmi/railx-envelope/internal/common/metrics"
	"github.com/mirzahilmi/railx-envelope/internal/envelope"
	"github.com/mirzahilmi/railx-envelope/internal/envelope/store"
	"github.com/mirzahilmi/railx-envelope/internal/recipient"
)

type Stage string

const (
	StageValidating  Stage = "validating"
	StageSerializing Stage = "serializing"
	StageEncrypting  Stage = "encrypting"
	StageKeyWrapping Stage = "key_wrapping"
	StageHashing     Stage = "hashing"
	StagePersisting  Stage = "persisting"
	StageLookup      Stage = "lookup"
	StageFetch       Stage = "fetch"
	StageUnwrap      Stage = "unwrap"
	StageDecrypt     Stage = "decrypt"
	StageDeserialize Stage = "deserialize"
	StageDone        Stage = "done"
)

const (
	operationSeal = "seal"
	operationOpen = "open"
)

// EnvelopeStore is satisfied by *store.Store.
type EnvelopeStore interface {
	Put(ctx context.Context, record store.Record, blob []byte) error
	Get(ctx context.Context, commitmentHash string) (store.Record, error)
	FetchBlob(ctx context.Context, location string) ([]byte, error)
}

// RecipientResolver is satisfied by *recipient.Directory.
type RecipientResolver interface {
	Resolve(corridorCode string) (recipient.Recipient, error)
}

// Service seals remittance payloads into envelopes and opens them again. It
// holds only immutable collaborators and is safe for concurrent use.
type Service struct {
	store       EnvelopeStore
	recipients  RecipientResolver
	hasher      envelope.Hasher
	builder     Builder
	publisher   audit.Publisher
	metrics     *metrics.Metrics
	now         func() time.Time
	newLocation func() string
}

type ServiceOption func(*Service)

func WithHasher(h envelope.Hasher) ServiceOption {
	return func(s *Service) { s.hasher = h }
}

func WithBuilder(b Builder) ServiceOption {
	return func(s *Service) { s.builder = b }
}

func WithPublisher(p audit.Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(envelopes EnvelopeStore, recipients RecipientResolver, opts ...ServiceOption) *Service {
	s := &Service{
		store:      envelopes,
		recipients: recipients,
		hasher:     envelope.Keccak256,
		builder:    NewBuilder(),
		publisher:  audit.Nop{},
		now:        time.Now,
		newLocation: func() string {
			return constant.BLOB_PREFIX + ulid.Make().String() + constant.BLOB_SUFFIX
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seal builds the canonical payload for req, encrypts it under a fresh data
// key, wraps that key for the corridor's recipient and persists the envelope.
//
// Seal is not idempotent: every call draws a new transaction id, timestamp,
// key and nonce, so resubmitting the same request yields a new envelope with
// a new commitment hash.
func (s *Service) Seal(ctx context.Context, req Request) (_ Receipt, err error) {
	started := s.now()
	stage := StageValidating
	var trace audit.Event
	defer func() {
		s.finish(ctx, operationSeal, stage, started, err, trace)
	}()

	s.enter(operationSeal, stage, "")
	payload, err := s.builder.Build(req)
	if err != nil {
		return Receipt{}, err
	}
	to, err := s.recipients.Resolve(req.CorridorBankCode)
	if err != nil {
		return Receipt{}, err
	}
	trace.Destination = to.Identity.Hex()

	stage = StageSerializing
	s.enter(operationSeal, stage, "")
	plaintext, err := payload.Serialize()
	if err != nil {
		return Receipt{}, err
	}
	defer clear(plaintext)

	stage = StageEncrypting
	s.enter(operationSeal, stage, "")
	blob, key, err := envelope.Encrypt(plaintext)
	if err != nil {
		return Receipt{}, err
	}
	defer clear(key)

	stage = StageKeyWrapping
	s.enter(operationSeal, stage, "")
	wrapped, err := envelope.Wrap(key, to.PublicKey)
	if err != nil {
		return Receipt{}, err
	}

	stage = StageHashing
	s.enter(operationSeal, stage, "")
	commitments := envelope.Commit(s.hasher, blob, wrapped)
	blobHash := commitments.BlobHash.Hex()
	trace.CommitmentHash = blobHash
	trace.KeyCommitment = commitments.KeyCommitment.Hex()

	stage = StagePersisting
	s.enter(operationSeal, stage, blobHash)
	sealedAt := s.now().UTC()
	record := store.Record{
		CommitmentHash: blobHash,
		AuxiliaryHash:  commitments.KeyCommitment.Hex(),
		BlobLocation:   s.newLocation(),
		WrappedKeyHex:  hexutil.Encode(wrapped),
		CreatedAt:      sealedAt,
	}
	if err := s.store.Put(ctx, record, blob); err != nil {
		return Receipt{}, err
	}

	stage = StageDone
	s.enter(operationSeal, stage, blobHash)
	return Receipt{
		DestinationIdentity: to.Identity.Hex(),
		BlobHash:            blobHash,
		KeyCommitment:       record.AuxiliaryHash,
		BlobLocation:        record.BlobLocation,
		SealedAt:            sealedAt,
	}, nil
}

// Open locates the envelope anchored under commitmentHash and decrypts it
// with key. The key is only borrowed for the duration of the call.
func (s *Service) Open(ctx context.Context, commitmentHash string, key *rsa.PrivateKey) (payload Payload, err error) {
	started := s.now()
	stage := StageLookup
	var normalized string
	defer func() {
		s.finish(ctx, operationOpen, stage, started, err, audit.Event{CommitmentHash: normalized})
	}()

	s.enter(operationOpen, stage, "")
	digest, err := envelope.ParseDigest(commitmentHash)
	if err != nil {
		return Payload{}, err
	}
	normalized = digest.Hex()
	record, err := s.store.Get(ctx, normalized)
	if err != nil {
		return Payload{}, err
	}

	stage = StageFetch
	s.enter(operationOpen, stage, normalized)
	blob, err := s.store.FetchBlob(ctx, record.BlobLocation)
	if err != nil {
		return Payload{}, err
	}

	stage = StageUnwrap
	s.enter(operationOpen, stage, normalized)
	wrapped, err := hexutil.Decode(record.WrappedKeyHex)
	if err != nil {
		return Payload{}, apperr.Storage(err, "envelope record is corrupt")
	}
	dataKey, err := envelope.Unwrap(wrapped, key)
	if err != nil {
		return Payload{}, err
	}
	defer clear(dataKey)

	stage = StageDecrypt
	s.enter(operationOpen, stage, normalized)
	plaintext, err := envelope.Decrypt(blob, dataKey)
	if err != nil {
		return Payload{}, err
	}
	defer clear(plaintext)

	stage = StageDeserialize
	s.enter(operationOpen, stage, normalized)
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return Payload{}, apperr.Wrap(err, apperr.KindInternal, "failed to deserialize payload")
	}

	stage = StageDone
	s.enter(operationOpen, stage, normalized)
	return payload, nil
}

func (s *Service) enter(operation string, stage Stage, commitmentHash string) {
	event := log.Debug().Str("operation", operation).Str("stage", string(stage))
	if commitmentHash != "" {
		event = event.Str("commitment_hash", commitmentHash)
	}
	event.Msg("envelope stage")
}

func (s *Service) finish(ctx context.Context, operation string, stage Stage, started time.Time, err error, event audit.Event) {
	kind := ""
	event.Timestamp = s.now().UTC()
	switch {
	case err == nil && operation == operationSeal:
		event.Action = audit.ActionSealed
	case err == nil:
		event.Action = audit.ActionOpened
	default:
		kind = string(apperr.KindOf(err))
		event.Stage = string(stage)
		event.ErrorKind = kind
		event.Action = audit.ActionOpenFailed
		if operation == operationSeal {
			event.Action = audit.ActionSealFailed
		}
		log.Error().
			Err(err).
			Str("operation", operation).
			Str("stage", string(stage)).
			Str("kind", kind).
			Msg("envelope operation failed")
	}

	s.metrics.Observe(operation, kind, s.now().Sub(started).Seconds())
	if err := s.publisher.Emit(ctx, event); err != nil {
		log.Warn().Err(err).Str("action", string(event.Action)).Msg("failed to emit audit event")
	}
}
