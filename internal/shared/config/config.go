package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Safe2Pay  Safe2PayConfig
	Safeweb   SafewebConfig
	RateLimit RateLimitConfig
	Status    StatusConfig
	Redis     RedisConfig
	Firebase  FirebaseConfig
	Telemetry TelemetryConfig
	Debug     bool
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type Safe2PayConfig struct {
	Token         string
	BaseURL       string
	Application   string
	Vendor        string
	CallbackURL   string
	Sandbox       bool
	PIXExpiration time.Duration
	Timeout       time.Duration
}

type SafewebConfig struct {
	Username          string
	Password          string
	BaseURL           string
	AuthURL           string
	CNPJAR            string
	PartnerCode       string
	ProductECPFA1     string
	HopeURL           string
	AttendancePlaceID int
	Timeout           time.Duration
}

type RateLimitConfig struct {
	// APIMax requests per APIWindow per client IP, across all routes.
	APIMax    int
	APIWindow time.Duration
	// DocumentMax requests per DocumentWindow per CPF, on the Safeweb
	// lookup routes.
	DocumentMax    int
	DocumentWindow time.Duration
}

type StatusConfig struct {
	MaxEntries int
	TTL        time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	CredentialsFile string
	Topic           string
	MessagesFile    string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
}

func Load() (*Config, error) {

	pixExpiration, err := time.ParseDuration(getEnv("SAFE2PAY_PIX_EXPIRATION", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SAFE2PAY_PIX_EXPIRATION: %w", err)
	}
	safe2payTimeout, err := time.ParseDuration(getEnv("SAFE2PAY_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SAFE2PAY_TIMEOUT: %w", err)
	}
	safewebTimeout, err := time.ParseDuration(getEnv("SAFEWEB_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SAFEWEB_TIMEOUT: %w", err)
	}
	attendancePlaceID, err := strconv.Atoi(getEnv("SAFEWEB_ATTENDANCE_PLACE_ID", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid SAFEWEB_ATTENDANCE_PLACE_ID: %w", err)
	}

	apiMax, err := strconv.Atoi(getEnv("RATE_LIMIT_API_MAX", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_API_MAX: %w", err)
	}
	apiWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_API_WINDOW", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_API_WINDOW: %w", err)
	}
	docMax, err := strconv.Atoi(getEnv("RATE_LIMIT_DOCUMENT_MAX", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_DOCUMENT_MAX: %w", err)
	}
	docWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_DOCUMENT_WINDOW", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_DOCUMENT_WINDOW: %w", err)
	}

	statusMaxEntries, err := strconv.Atoi(getEnv("STATUS_STORE_MAX_ENTRIES", "10000"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATUS_STORE_MAX_ENTRIES: %w", err)
	}
	statusTTL, err := time.ParseDuration(getEnv("STATUS_STORE_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATUS_STORE_TTL: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	// Parse allowed hosts (comma-separated list)
	allowedHostsStr := getEnv("ALLOWED_HOSTS", "")
	var allowedHosts []string
	if allowedHostsStr != "" {
		for _, host := range strings.Split(allowedHostsStr, ",") {
			host = strings.TrimSpace(host)
			if host != "" {
				allowedHosts = append(allowedHosts, host)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			AllowedHosts: allowedHosts,
		},
		Safe2Pay: Safe2PayConfig{
			Token:         getEnv("SAFE2PAY_TOKEN", ""),
			BaseURL:       getEnv("SAFE2PAY_BASE_URL", ""),
			Application:   getEnv("SAFE2PAY_APPLICATION", ""),
			Vendor:        getEnv("SAFE2PAY_VENDOR", ""),
			CallbackURL:   getEnv("SAFE2PAY_CALLBACK_URL", ""),
			Sandbox:       getBoolEnv("SAFE2PAY_SANDBOX", false),
			PIXExpiration: pixExpiration,
			Timeout:       safe2payTimeout,
		},
		Safeweb: SafewebConfig{
			Username:          getEnv("SAFEWEB_USERNAME", ""),
			Password:          getEnv("SAFEWEB_PASSWORD", ""),
			BaseURL:           getEnv("SAFEWEB_BASE_URL", ""),
			AuthURL:           getEnv("SAFEWEB_AUTH_URL", ""),
			CNPJAR:            getEnv("SAFEWEB_CNPJ_AR", ""),
			PartnerCode:       getEnv("SAFEWEB_PARTNER_CODE", ""),
			ProductECPFA1:     getEnv("SAFEWEB_PRODUCT_ECPF_A1", ""),
			HopeURL:           getEnv("SAFEWEB_HOPE_URL", ""),
			AttendancePlaceID: attendancePlaceID,
			Timeout:           safewebTimeout,
		},
		RateLimit: RateLimitConfig{
			APIMax:         apiMax,
			APIWindow:      apiWindow,
			DocumentMax:    docMax,
			DocumentWindow: docWindow,
		},
		Status: StatusConfig{
			MaxEntries: statusMaxEntries,
			TTL:        statusTTL,
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
			Topic:           getEnv("FIREBASE_TOPIC", "pagamentos-aprovados"),
			MessagesFile:    getEnv("FIREBASE_MESSAGES_FILE", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "checkout-api"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4318"),
		},
		Debug: getBoolEnv("DEBUG", false),
	}

	// Validate required fields
	if cfg.Safe2Pay.Token == "" {
		return nil, fmt.Errorf("SAFE2PAY_TOKEN is required")
	}
	if cfg.Safeweb.Username == "" || cfg.Safeweb.Password == "" {
		return nil, fmt.Errorf("SAFEWEB_USERNAME and SAFEWEB_PASSWORD are required")
	}
	if cfg.Safeweb.BaseURL == "" || cfg.Safeweb.AuthURL == "" {
		return nil, fmt.Errorf("SAFEWEB_BASE_URL and SAFEWEB_AUTH_URL are required")
	}
	if cfg.RateLimit.APIMax <= 0 || cfg.RateLimit.DocumentMax <= 0 {
		return nil, fmt.Errorf("rate limit maximums must be positive")
	}
	if cfg.Status.MaxEntries <= 0 {
		return nil, fmt.Errorf("STATUS_STORE_MAX_ENTRIES must be positive")
	}

	return cfg, nil
}

// SafewebReady reports whether every credential needed by the Safeweb flows
// is present. Used by the health endpoint.
func (c *Config) SafewebReady() bool {
	return c.Safeweb.Username != "" && c.Safeweb.Password != "" &&
		c.Safeweb.BaseURL != "" && c.Safeweb.AuthURL != ""
}

// Safe2PayReady reports whether the payment gateway can be called.
func (c *Config) Safe2PayReady() bool {
	return c.Safe2Pay.Token != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
