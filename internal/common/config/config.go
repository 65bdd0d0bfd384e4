package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            uint32
	IsDevelopment   bool
	ShutdownTimeout int64
	Oidc            Oidc
	S3              S3
	Vault           Vault
	PostgreSQL      PostgreSQL
	Redis           Redis
	Kafka           Kafka
	Ledger          Ledger
	Recipient       Recipient
	Corridors       []Corridor
}

type Oidc struct {
	Issuer,
	ClientId string
}

// S3 holds the object store settings. An empty URL selects the in-memory
// object store.
type S3 struct {
	AccessKeyId,
	SecretAccessKey,
	DefaultRegion,
	DefaultBucket,
	URL string
	// SSECustomerKey is an optional base64 encoded 256-bit SSE-C key.
	SSECustomerKey string
}

type Vault struct {
	URL         string
	Token       string
	Mount       string
	KeyBasePath string
}

// PostgreSQL with an empty ConnectionURL selects the in-memory record table.
type PostgreSQL struct {
	ConnectionURL string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Kafka struct {
	Brokers  []string
	Topic    string
	ClientID string
}

type Ledger struct {
	RPCURL          string
	ContractAddress string
}

// Recipient describes this deployment in its receiving role.
type Recipient struct {
	// KeySource is "caller" or "vault".
	KeySource string
	// Identity is the ledger address whose key Vault holds and whose inbox
	// is listed.
	Identity string
}

type Corridor struct {
	Code         string
	Address      string
	PublicKeyPEM string
}

const (
	KeySourceCaller = "caller"
	KeySourceVault  = "vault"
)

// FromEnv reads the configuration from the process environment, applying
// defaults for everything optional.
func FromEnv() (Config, error) {
	var errs []error

	port, err := envUint("PORT", 8080)
	errs = append(errs, err)
	shutdown, err := envInt("SHUTDOWN_TIMEOUT", 10)
	errs = append(errs, err)
	redisDB, err := envInt("REDIS_DB", 0)
	errs = append(errs, err)
	redisTTL, err := envDuration("REDIS_TTL", time.Hour)
	errs = append(errs, err)
	corridors, err := corridorsFromEnv()
	errs = append(errs, err)

	cfg := Config{
		Port:            uint32(port),
		IsDevelopment:   os.Getenv("DEVELOPMENT") == "true",
		ShutdownTimeout: shutdown,
		Oidc: Oidc{
			Issuer:   os.Getenv("OIDC_ISSUER"),
			ClientId: os.Getenv("OIDC_CLIENT_ID"),
		},
		S3: S3{
			AccessKeyId:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			DefaultRegion:   envOr("S3_DEFAULT_REGION", "us-east-1"),
			DefaultBucket:   envOr("S3_DEFAULT_BUCKET", "railx-envelopes"),
			URL:             os.Getenv("S3_URL"),
			SSECustomerKey:  os.Getenv("S3_SSE_CUSTOMER_KEY"),
		},
		Vault: Vault{
			URL:         os.Getenv("VAULT_URL"),
			Token:       os.Getenv("VAULT_TOKEN"),
			Mount:       envOr("VAULT_KV_MOUNT", "secret"),
			KeyBasePath: envOr("VAULT_KEY_BASE_PATH", "railx/recipients"),
		},
		PostgreSQL: PostgreSQL{
			ConnectionURL: os.Getenv("POSTGRESQL_URL"),
		},
		Redis: Redis{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       int(redisDB),
			TTL:      redisTTL,
		},
		Kafka: Kafka{
			Brokers:  envList("KAFKA_BROKERS"),
			Topic:    envOr("KAFKA_AUDIT_TOPIC", "railx.envelope.audit"),
			ClientID: envOr("KAFKA_CLIENT_ID", "railx-envelope"),
		},
		Ledger: Ledger{
			RPCURL:          os.Getenv("LEDGER_RPC_URL"),
			ContractAddress: os.Getenv("LEDGER_CONTRACT_ADDRESS"),
		},
		Recipient: Recipient{
			KeySource: strings.ToLower(envOr("RECIPIENT_KEY_SOURCE", KeySourceCaller)),
			Identity:  os.Getenv("RECIPIENT_IDENTITY"),
		},
		Corridors: corridors,
	}
	return cfg, errors.Join(errs...)
}

// Validate reports every inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Port == 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", c.Port))
	}
	if len(c.Corridors) == 0 {
		errs = append(errs, errors.New("RAILX_CORRIDORS must name at least one corridor"))
	}
	switch c.Recipient.KeySource {
	case KeySourceCaller:
	case KeySourceVault:
		if c.Vault.URL == "" {
			errs = append(errs, errors.New("VAULT_URL is required when RECIPIENT_KEY_SOURCE=vault"))
		}
		if c.Recipient.Identity == "" {
			errs = append(errs, errors.New("RECIPIENT_IDENTITY is required when RECIPIENT_KEY_SOURCE=vault"))
		}
	default:
		errs = append(errs, fmt.Errorf("RECIPIENT_KEY_SOURCE must be %q or %q", KeySourceCaller, KeySourceVault))
	}
	if c.S3.URL != "" && (c.S3.AccessKeyId == "" || c.S3.SecretAccessKey == "") {
		errs = append(errs, errors.New("S3 credentials are required when S3_URL is set"))
	}
	if c.Ledger.RPCURL != "" {
		if c.Ledger.ContractAddress == "" {
			errs = append(errs, errors.New("LEDGER_CONTRACT_ADDRESS is required when LEDGER_RPC_URL is set"))
		}
		if c.Recipient.Identity == "" {
			errs = append(errs, errors.New("RECIPIENT_IDENTITY is required when LEDGER_RPC_URL is set"))
		}
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("KAFKA_AUDIT_TOPIC cannot be empty"))
	}
	return errors.Join(errs...)
}

// corridorsFromEnv reads RAILX_CORRIDORS=J_BANK,... and, per code,
// RAILX_CORRIDOR_<CODE>_ADDRESS plus either _PUBLIC_KEY_PEM or
// _PUBLIC_KEY_FILE.
func corridorsFromEnv() ([]Corridor, error) {
	var (
		corridors []Corridor
		errs      []error
	)
	for _, code := range envList("RAILX_CORRIDORS") {
		code = strings.ToUpper(code)
		prefix := "RAILX_CORRIDOR_" + code + "_"

		pem := os.Getenv(prefix + "PUBLIC_KEY_PEM")
		if pem == "" {
			if file := os.Getenv(prefix + "PUBLIC_KEY_FILE"); file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					errs = append(errs, fmt.Errorf("corridor %s: read public key: %w", code, err))
					continue
				}
				pem = string(raw)
			}
		}
		if pem == "" {
			errs = append(errs, fmt.Errorf("corridor %s: %sPUBLIC_KEY_PEM or %sPUBLIC_KEY_FILE is required", code, prefix, prefix))
			continue
		}

		corridors = append(corridors, Corridor{
			Code:         code,
			Address:      os.Getenv(prefix + "ADDRESS"),
			PublicKeyPEM: pem,
		})
	}
	return corridors, errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envInt(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envUint(key string, fallback uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
