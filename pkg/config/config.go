package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEmergencyFeedURL = "http://apis.data.go.kr/B552657/ErmctInfoInqireService/getEmrrmRltmUsefulSckbdInfoInqire"
	defaultPharmacyFeedURL  = "http://apis.data.go.kr/B552657/ErmctInsttInfoInqireService/getParmacyListInfoInqire"
)

// Config holds all application configuration
type Config struct {
	Env        string
	Server     ServerConfig
	Registry   RegistryConfig
	PublicData PublicDataConfig
	Maps       MapsConfig
	OpenAI     OpenAIConfig
	CORS       CORSConfig
	OTEL       OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	// Timezone is used for wall-clock checks such as pharmacy opening hours.
	Timezone string
}

// RegistryConfig points at the static facility dataset
type RegistryConfig struct {
	CSVPath string
}

// PublicDataConfig holds the live public-data feed configuration
type PublicDataConfig struct {
	EmergencyURL string
	EmergencyKey string
	PharmacyURL  string
	PharmacyKey  string
	Region       string
	District     string
	NumOfRows    int
	Format       string
	Timeout      time.Duration
}

// MapsConfig holds the map display configuration handed to clients
type MapsConfig struct {
	Provider string
	APIKey   string
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	Timeout        time.Duration
	RateLimitRPM   int
	RateLimitBurst int
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	sharedKey := getEnv("PUBLIC_DATA_API_KEY", "")

	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			Port:     getEnvAsInt("SERVER_PORT", 5000),
			Timezone: getEnv("SERVICE_TIMEZONE", ""),
		},
		Registry: RegistryConfig{
			CSVPath: getEnv("REGISTRY_CSV_PATH", "data/hospitals.csv"),
		},
		PublicData: PublicDataConfig{
			EmergencyURL: getEnv("PUBLIC_DATA_EMERGENCY_URL", defaultEmergencyFeedURL),
			EmergencyKey: getEnv("PUBLIC_DATA_EMERGENCY_KEY", sharedKey),
			PharmacyURL:  getEnv("PUBLIC_DATA_PHARMACY_URL", defaultPharmacyFeedURL),
			PharmacyKey:  getEnv("PUBLIC_DATA_PHARMACY_KEY", sharedKey),
			Region:       getEnv("PUBLIC_DATA_REGION", "인천광역시"),
			District:     getEnv("PUBLIC_DATA_DISTRICT", ""),
			NumOfRows:    getEnvAsInt("PUBLIC_DATA_ROWS", 100),
			Format:       strings.ToLower(getEnv("PUBLIC_DATA_FORMAT", "xml")),
			Timeout:      getEnvAsDuration("PUBLIC_DATA_TIMEOUT", 5*time.Second),
		},
		Maps: MapsConfig{
			Provider: getEnv("MAP_PROVIDER", "kakao"),
			APIKey:   getEnv("KAKAO_MAP_API_KEY", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Timeout:        getEnvAsDuration("OPENAI_TIMEOUT", 10*time.Second),
			RateLimitRPM:   getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("OPENAI_RATE_LIMIT_BURST", 5),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "carefinder"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads variables from a dotenv file without overriding ones
// already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ServerAddr returns the HTTP listen address
func (c *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Location resolves the configured time zone, falling back to the process local zone.
func (c *ServerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) validate() error {
	switch c.PublicData.Format {
	case "xml", "json":
	default:
		return fmt.Errorf("PUBLIC_DATA_FORMAT must be xml or json, got %q", c.PublicData.Format)
	}
	if c.PublicData.NumOfRows <= 0 {
		return fmt.Errorf("PUBLIC_DATA_ROWS must be positive, got %d", c.PublicData.NumOfRows)
	}
	if c.Server.Timezone != "" {
		if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
			return fmt.Errorf("invalid SERVICE_TIMEZONE %q: %w", c.Server.Timezone, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
