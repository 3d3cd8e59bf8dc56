package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	DatabaseURL string
	SslCertPath string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	UploadPrefix string

	RedactionVersion int
	AIAPIKey         string
	NERModel         string
	NERLocation      bool
	RedactEntities   bool

	JWTSecret     string
	RequiredScope string
	CORSOrigins   []string

	Workers         int
	KickoffInterval time.Duration
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:   getEnv("APP_ENV", "local"),
		LogLevel: getEnv("LOG_LEVEL", ""),
		Port:     getEnv("PORT", "8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SslCertPath: getEnv("SSL_CERT_PATH", ""),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_DEFAULT_REGION", "us-east-2"),
		BucketName:   getEnv("AWS_S3_RESUME_BUCKET_NAME", ""),
		UploadPrefix: getEnv("AWS_S3_UPLOAD_PREFIX", ""),

		RedactionVersion: getEnvInt("REDACTION_VERSION", 2),
		AIAPIKey:         getEnv("GEMINI_API_KEY", ""),
		NERModel:         getEnv("NER_MODEL", "gemini-1.5-flash"),
		NERLocation:      getEnvBool("NER_ENABLE_LOCATION", false),
		RedactEntities:   getEnvBool("REDACT_ENTITIES", false),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		RequiredScope: getEnv("REQUIRED_SCOPE", "Student"),
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),

		Workers:         getEnvInt("WORKERS", 2),
		KickoffInterval: getEnvDuration("KICKOFF_INTERVAL", time.Minute),
	}
}

// Validate reports every required setting that is missing or out of range.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL not set"))
	}
	if c.BucketName == "" {
		errs = append(errs, errors.New("AWS_S3_RESUME_BUCKET_NAME not set"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET not set"))
	}
	if c.RedactionVersion < 1 {
		errs = append(errs, fmt.Errorf("REDACTION_VERSION must be positive, got %d", c.RedactionVersion))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("WORKERS must be positive, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// Helper to read environment variables with a default fallback; an empty
// value counts as unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
