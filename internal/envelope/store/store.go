// Package store persists envelopes: blobs go to an append-only object area,
// records go to a table keyed by commitment hash.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
)

// Record is the lookup row of one envelope. It is never updated.
type Record struct {
	CommitmentHash string    `json:"commitmentHash"`
	AuxiliaryHash  string    `json:"auxiliaryHash"`
	BlobLocation   string    `json:"blobLocation"`
	WrappedKeyHex  string    `json:"wrappedKeyHex"`
	CreatedAt      time.Time `json:"createdAt"`
}

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

// ObjectStore holds envelope blobs. Put must refuse to overwrite an existing
// location.
type ObjectStore interface {
	Put(ctx context.Context, location string, blob []byte) error
	Get(ctx context.Context, location string) ([]byte, error)
}

// RecordRepository is the keyed lookup table. Insert enforces uniqueness of
// CommitmentHash and returns a duplicate_commitment error on conflict.
type RecordRepository interface {
	Insert(ctx context.Context, record Record) error
	FindByCommitment(ctx context.Context, commitmentHash string) (Record, error)
}

// RecordCache is an optional read-through cache in front of the repository.
// Records are immutable, so entries never need invalidation.
type RecordCache interface {
	Get(ctx context.Context, commitmentHash string) (Record, bool, error)
	Set(ctx context.Context, record Record) error
}

type Store struct {
	objects ObjectStore
	records RecordRepository
	cache   RecordCache
}

type Option func(*Store)

func WithCache(cache RecordCache) Option {
	return func(s *Store) { s.cache = cache }
}

func New(objects ObjectStore, records RecordRepository, opts ...Option) *Store {
	s := &Store{objects: objects, records: records}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put writes the blob first and the record second. The two backends share
// no transaction: a failed insert leaves an orphaned, unreachable blob, but a
// record is never written for a blob that failed to store.
func (s *Store) Put(ctx context.Context, record Record, blob []byte) error {
	if err := s.objects.Put(ctx, record.BlobLocation, blob); err != nil {
		return asStorage(err, "failed to store envelope blob")
	}
	if err := s.records.Insert(ctx, record); err != nil {
		if !apperr.IsKind(err, apperr.KindDuplicateCommitment) {
			err = asStorage(err, "failed to insert envelope record")
		}
		log.Warn().
			Str("commitment_hash", record.CommitmentHash).
			Str("blob_location", record.BlobLocation).
			Msg("envelope record insert failed, blob left orphaned")
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, commitmentHash string) (Record, error) {
	if s.cache != nil {
		record, ok, err := s.cache.Get(ctx, commitmentHash)
		if err != nil {
			log.Warn().Err(err).Msg("envelope record cache read failed")
		} else if ok {
			return record, nil
		}
	}

	record, err := s.records.FindByCommitment(ctx, commitmentHash)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return Record{}, err
		}
		return Record{}, asStorage(err, "failed to look up envelope record")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, record); err != nil {
			log.Warn().Err(err).Msg("envelope record cache write failed")
		}
	}
	return record, nil
}

// FetchBlob surfaces every failure, including a record that points at a
// missing blob.
func (s *Store) FetchBlob(ctx context.Context, location string) ([]byte, error) {
	blob, err := s.objects.Get(ctx, location)
	if err != nil {
		return nil, asStorage(err, "failed to fetch envelope blob")
	}
	return blob, nil
}

func asStorage(err error, message string) error {
	var e *apperr.Error
	if errors.As(err, &e) && e.Kind == apperr.KindStorage {
		return err
	}
	return apperr.Storage(err, message)
}
