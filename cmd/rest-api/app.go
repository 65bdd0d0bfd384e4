package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	vaultApi "github.com/hashicorp/vault/api"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mirzahilmi/railx-envelope/internal/audit"
	"github.com/mirzahilmi/railx-envelope/internal/common/metrics"
	"github.com/mirzahilmi/railx-envelope/internal/common/middleware"
	"github.com/mirzahilmi/railx-envelope/internal/envelope/store"
	"github.com/mirzahilmi/railx-envelope/internal/ledger"
	"github.com/mirzahilmi/railx-envelope/internal/recipient"
	"github.com/mirzahilmi/railx-envelope/internal/remittance"
	"github.com/mirzahilmi/railx-envelope/internal/utility"
)

func setup(ctx context.Context, registry prometheus.Registerer) (func() error, error) {
	var closers []func() error
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (func() error, error) {
		if cerr := cleanup(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to release resources after setup error")
		}
		return nil, err
	}

	var checks []utility.Check

	var objects store.ObjectStore
	if cfg.S3.URL != "" {
		s3client := s3.NewFromConfig(aws.Config{
			Region: cfg.S3.DefaultRegion,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.S3.AccessKeyId,
				cfg.S3.SecretAccessKey,
				"",
			),
		}, func(o *s3.Options) {
			// MinIO and friends only speak path-style addressing
			o.BaseEndpoint = aws.String(cfg.S3.URL)
			o.UsePathStyle = true
		})
		s3objects, err := store.NewS3Objects(s3client, cfg.S3.DefaultBucket, cfg.S3.SSECustomerKey)
		if err != nil {
			return fail(err)
		}
		objects = s3objects
	} else {
		log.Warn().Msg("S3_URL not set, envelope blobs are kept in memory")
		objects = store.NewMemoryObjects()
	}

	var records store.RecordRepository
	if cfg.PostgreSQL.ConnectionURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgreSQL.ConnectionURL)
		if err != nil {
			return fail(fmt.Errorf("connect postgresql: %w", err))
		}
		closers = append(closers, func() error { pool.Close(); return nil })

		postgres := store.NewPostgresRecords(pool)
		if err := postgres.Migrate(ctx); err != nil {
			return fail(err)
		}
		records = postgres
		checks = append(checks, utility.Check{Name: "postgresql", Ping: postgres.Ping})
	} else {
		log.Warn().Msg("POSTGRESQL_URL not set, envelope records are kept in memory")
		records = store.NewMemoryRecords()
	}

	var storeOpts []store.Option
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, client.Close)

		cache := store.NewRedisCache(client, cfg.Redis.TTL)
		storeOpts = append(storeOpts, store.WithCache(cache))
		checks = append(checks, utility.Check{Name: "redis", Ping: cache.Ping})
	}

	var publisher audit.Publisher = audit.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := audit.NewKafkaClient(cfg.Kafka.Brokers, cfg.Kafka.ClientID)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() error {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := client.Flush(flushCtx)
			client.Close()
			return err
		})
		publisher = audit.NewKafkaPublisher(client, cfg.Kafka.Topic)
		checks = append(checks, utility.Check{Name: "kafka", Ping: client.Ping})
	}

	corridors := make([]recipient.Corridor, 0, len(cfg.Corridors))
	for _, c := range cfg.Corridors {
		corridors = append(corridors, recipient.Corridor{Code: c.Code, Address: c.Address, PublicKeyPEM: c.PublicKeyPEM})
	}
	directory, err := recipient.NewDirectory(corridors)
	if err != nil {
		return fail(err)
	}

	var keyring remittance.Keyring
	if cfg.Vault.URL != "" {
		vaultConfig := vaultApi.DefaultConfig()
		vaultConfig.Address = cfg.Vault.URL
		vault, err := vaultApi.NewClient(vaultConfig)
		if err != nil {
			return fail(err)
		}
		vault.SetToken(cfg.Vault.Token)
		keyring = recipient.NewVaultKeyring(vault, cfg.Vault.Mount, cfg.Vault.KeyBasePath)
	}

	service := remittance.NewService(
		store.New(objects, records, storeOpts...),
		directory,
		remittance.WithPublisher(publisher),
		remittance.WithMetrics(metrics.New(registry)),
	)

	middleware := middleware.NewMiddleware(api, cfg)

	utility.RegisterHandler(ctx, api, middleware, checks...)
	remittance.RegisterHandler(
		ctx,
		api,
		middleware,
		cfg,
		service,
		keyring,
	)

	if cfg.Ledger.RPCURL != "" {
		client, eth, err := ledger.Dial(cfg.Ledger.RPCURL, cfg.Ledger.ContractAddress)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() error { eth.Close(); return nil })
		ledger.RegisterHandler(ctx, api, middleware, cfg, client)
	}

	log.Info().
		Strs("corridors", directory.Codes()).
		Str("key_source", cfg.Recipient.KeySource).
		Msg("envelope service configured")

	return cleanup, nil
}
