package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultVirtualsAPIURL      = "https://api.virtuals.io"
	DefaultBackendURL          = "http://localhost:3001/api"
	DefaultVirtualTokenAddress = "0x0b3e328455c4059EEb9e3f84b5543F74E24e7E1b"
	DefaultChainID             = 8453
)

// Config holds every runtime setting. Values come from HASHNIPE_* environment variables
// layered over Default().
type Config struct {
	VirtualsAPIURL      string        `validate:"required,url"`
	BackendURL          string        `validate:"required,url"`
	ChainID             int64         `validate:"gt=0"`
	VirtualTokenAddress string        `validate:"required,eth_addr"`
	VirtualDecimals     int           `validate:"gte=0,lte=36"`
	Slippage            float64       `validate:"gte=0,lte=50"`
	QuoteDebounce       time.Duration `validate:"gt=0"`
	RequestTimeout      time.Duration `validate:"gt=0"`
	PageSize            int           `validate:"gte=1,lte=100"`
	TopSnipeCount       int           `validate:"gte=1"`
	ActivePoolSize      int           `validate:"gte=1,lte=100"`
	TokenomicsTTL       time.Duration `validate:"gte=0"`

	BearerToken   string
	WalletAddress string `validate:"omitempty,eth_addr"`

	DBPath      string
	PostgresURL string
	Port        int `validate:"gte=0,lte=65535"`

	JwksURI       string `validate:"omitempty,url"`
	AuthAudience  string
	AuthServerURL string `validate:"omitempty,url"`

	Debug bool
}

// Default returns the built-in configuration
func Default() *Config {
	dbPath := "hashnipe.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, "hashnipe.db")
	}
	return &Config{
		VirtualsAPIURL:      DefaultVirtualsAPIURL,
		BackendURL:          DefaultBackendURL,
		ChainID:             DefaultChainID,
		VirtualTokenAddress: DefaultVirtualTokenAddress,
		VirtualDecimals:     18,
		Slippage:            1,
		QuoteDebounce:       time.Second,
		RequestTimeout:      15 * time.Second,
		PageSize:            10,
		TopSnipeCount:       6,
		ActivePoolSize:      100,
		TokenomicsTTL:       time.Hour,
		DBPath:              dbPath,
		Port:                8080,
	}
}

// Load reads configuration from the process environment
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads configuration using lookup and validates the result
func LoadFrom(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	r := envReader{lookup: lookup}

	r.asString("HASHNIPE_VIRTUALS_API_URL", &cfg.VirtualsAPIURL)
	r.asString("HASHNIPE_BACKEND_URL", &cfg.BackendURL)
	r.asInt64("HASHNIPE_CHAIN_ID", &cfg.ChainID)
	r.asString("HASHNIPE_VIRTUAL_TOKEN_ADDRESS", &cfg.VirtualTokenAddress)
	r.asInt("HASHNIPE_VIRTUAL_DECIMALS", &cfg.VirtualDecimals)
	r.asFloat("HASHNIPE_SLIPPAGE", &cfg.Slippage)
	r.asDuration("HASHNIPE_QUOTE_DEBOUNCE", &cfg.QuoteDebounce)
	r.asDuration("HASHNIPE_REQUEST_TIMEOUT", &cfg.RequestTimeout)
	r.asInt("HASHNIPE_PAGE_SIZE", &cfg.PageSize)
	r.asInt("HASHNIPE_TOP_SNIPE_COUNT", &cfg.TopSnipeCount)
	r.asInt("HASHNIPE_ACTIVE_POOL_SIZE", &cfg.ActivePoolSize)
	r.asDuration("HASHNIPE_TOKENOMICS_TTL", &cfg.TokenomicsTTL)
	r.asString("HASHNIPE_BEARER_TOKEN", &cfg.BearerToken)
	r.asString("HASHNIPE_WALLET_ADDRESS", &cfg.WalletAddress)
	r.asString("HASHNIPE_DB_PATH", &cfg.DBPath)
	r.asBool("HASHNIPE_DEBUG", &cfg.Debug)
	r.asInt("PORT", &cfg.Port)
	r.asString("POSTGRES_URL", &cfg.PostgresURL)
	r.asString("JWKS_URI", &cfg.JwksURI)
	r.asString("AUTH_AUDIENCE", &cfg.AuthAudience)
	r.asString("AUTH_SERVER_URL", &cfg.AuthServerURL)

	if r.err != nil {
		return nil, r.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// envReader records the first parse failure and ignores the rest
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *envReader) get(key string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (r *envReader) fail(key, value string, err error) {
	r.err = fmt.Errorf("invalid value %q for %s: %w", value, key, err)
}

func (r *envReader) asString(key string, dst *string) {
	if v, ok := r.get(key); ok {
		*dst = v
	}
}

func (r *envReader) asInt(key string, dst *int) {
	if v, ok := r.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (r *envReader) asInt64(key string, dst *int64) {
	if v, ok := r.get(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			r.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (r *envReader) asFloat(key string, dst *float64) {
	if v, ok := r.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			r.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (r *envReader) asBool(key string, dst *bool) {
	if v, ok := r.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			r.fail(key, v, err)
			return
		}
		*dst = b
	}
}

func (r *envReader) asDuration(key string, dst *time.Duration) {
	if v, ok := r.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			r.fail(key, v, err)
			return
		}
		*dst = d
	}
}
