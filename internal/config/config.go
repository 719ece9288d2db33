package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the process needs at startup.
type Config struct {
	Port           string        `mapstructure:"PORT"`
	DBDriver       string        `mapstructure:"DB_DRIVER"`
	DSN            string        `mapstructure:"DSN"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	TokenTTL       time.Duration `mapstructure:"TOKEN_TTL"`
	AllowedOrigins []string      `mapstructure:"ALLOWED_ORIGINS"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	LogFormat      string        `mapstructure:"LOG_FORMAT"`
	TrendingLimit  int           `mapstructure:"TRENDING_LIMIT"`

	UploadDir      string `mapstructure:"UPLOAD_DIR"`
	PublicBaseURL  string `mapstructure:"PUBLIC_BASE_URL"`
	MaxUploadBytes int64  `mapstructure:"MAX_UPLOAD_BYTES"`
	SupabaseURL    string `mapstructure:"SUPABASE_URL"`
	SupabaseKey    string `mapstructure:"SUPABASE_KEY"`
	SupabaseBucket string `mapstructure:"SUPABASE_BUCKET"`

	MidtransServerKey  string `mapstructure:"MIDTRANS_SERVER_KEY"`
	MidtransProduction bool   `mapstructure:"MIDTRANS_PRODUCTION"`
}

var defaults = map[string]any{
	"PORT":                "8080",
	"DB_DRIVER":           "pgx",
	"DSN":                 "",
	"JWT_SECRET":          "",
	"TOKEN_TTL":           "168h",
	"ALLOWED_ORIGINS":     "http://localhost:5173",
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "json",
	"TRENDING_LIMIT":      6,
	"UPLOAD_DIR":          "uploads",
	"PUBLIC_BASE_URL":     "http://localhost:8080",
	"MAX_UPLOAD_BYTES":    5 << 20,
	"SUPABASE_URL":        "",
	"SUPABASE_KEY":        "",
	"SUPABASE_BUCKET":     "documents",
	"MIDTRANS_SERVER_KEY": "",
	"MIDTRANS_PRODUCTION": false,
}

// Load reads dir/.env into the environment, then dir/config.env, then the
// environment itself. Neither file is required.
func Load(dir string) (Config, error) {
	var config Config

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: read config.env: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: decode: %w", err)
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.DSN == "" {
		errs = append(errs, errors.New("DSN is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DBDriver != "pgx" && c.DBDriver != "sqlite" {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be pgx or sqlite, got %q", c.DBDriver))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if (c.SupabaseURL == "") != (c.SupabaseKey == "") {
		errs = append(errs, errors.New("SUPABASE_URL and SUPABASE_KEY must be set together"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c Config) PaymentsEnabled() bool {
	return c.MidtransServerKey != ""
}

func (c Config) SupabaseEnabled() bool {
	return c.SupabaseURL != ""
}
