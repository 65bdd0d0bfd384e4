package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
)

//go:embed migrations/*.sql
var migrations embed.FS

const uniqueViolation = "23505"

// PostgresRecords keeps envelope records in the envelope_records table. The
// primary key on commitment_hash is the uniqueness guarantee for concurrent
// writers.
type PostgresRecords struct {
	pool *pgxpool.Pool
}

func NewPostgresRecords(pool *pgxpool.Pool) *PostgresRecords {
	return &PostgresRecords{pool: pool}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (p *PostgresRecords) Migrate(ctx context.Context) error {
	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		sql, err := migrations.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := p.pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (p *PostgresRecords) Insert(ctx context.Context, record Record) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO envelope_records (commitment_hash, auxiliary_hash, blob_path, wrapped_key_hex, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		record.CommitmentHash,
		record.AuxiliaryHash,
		record.BlobLocation,
		record.WrappedKeyHex,
		record.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Wrap(err, apperr.KindDuplicateCommitment, "an envelope with this commitment hash already exists")
		}
		return apperr.Storage(err, "failed to insert envelope record")
	}
	return nil
}

func (p *PostgresRecords) FindByCommitment(ctx context.Context, commitmentHash string) (Record, error) {
	var record Record
	err := p.pool.QueryRow(ctx, `
		SELECT commitment_hash, auxiliary_hash, blob_path, wrapped_key_hex, created_at
		FROM envelope_records
		WHERE commitment_hash = $1`,
		commitmentHash,
	).Scan(
		&record.CommitmentHash,
		&record.AuxiliaryHash,
		&record.BlobLocation,
		&record.WrappedKeyHex,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, apperr.NotFound("no envelope for commitment hash")
		}
		return Record{}, apperr.Storage(err, "failed to look up envelope record")
	}
	return record, nil
}

// Ping is used by the health endpoint.
func (p *PostgresRecords) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
