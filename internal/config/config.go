package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Verification store backends.
const (
	StoreMemory = "memory"
	StoreDynamo = "dynamo"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      bool
	SNSRegion    string

	TwoFactor TwoFactor

	PasswordMinLength int
	RateLimitRPS      float64
	RateLimitBurst    int
	AllowedOrigins    []string // CORS allowed origins

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// TwoFactor configures one-time code issuance.
type TwoFactor struct {
	CodeLength int
	CodeTTL    time.Duration
	Store      string // "memory" | "dynamo"
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users             string
	Sessions          string
	Articles          string
	ArticleImages     string
	Categories        string
	Tags              string
	Comments          string
	Replies           string
	VerificationCodes string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:             getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:          getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Articles:          getEnv("DYNAMO_TABLE_ARTICLES", "articles"),
			ArticleImages:     getEnv("DYNAMO_TABLE_ARTICLE_IMAGES", "article_images"),
			Categories:        getEnv("DYNAMO_TABLE_CATEGORIES", "categories"),
			Tags:              getEnv("DYNAMO_TABLE_TAGS", "tags"),
			Comments:          getEnv("DYNAMO_TABLE_COMMENTS", "comments"),
			Replies:           getEnv("DYNAMO_TABLE_REPLIES", "replies"),
			VerificationCodes: getEnv("DYNAMO_TABLE_VERIFICATION_CODES", "verification_codes"),
		},
		S3BucketName:      getEnv("S3_BUCKET_NAME", "news-article-images"),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		SMTPHost:          getEnv("SMTP_HOST", "localhost"),
		SMTPPort:          getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:          getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPTLS:           getEnvBool("SMTP_TLS", false),
		SNSRegion:         getEnv("SNS_REGION", "us-east-1"),
		TwoFactor: TwoFactor{
			CodeLength: getEnvInt("TWOFA_CODE_LENGTH", 6),
			CodeTTL:    time.Duration(getEnvInt("TWOFA_CODE_TTL_MINUTES", 5)) * time.Minute,
			Store:      strings.ToLower(getEnv("VERIFICATION_STORE", StoreMemory)),
		},
		PasswordMinLength: getEnvInt("PASSWORD_MIN_LENGTH", 6),
		RateLimitRPS:      getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 10),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.TwoFactor.CodeLength < 4 || c.TwoFactor.CodeLength > 10 {
		return fmt.Errorf("TWOFA_CODE_LENGTH must be between 4 and 10, got %d", c.TwoFactor.CodeLength)
	}
	if c.TwoFactor.CodeTTL <= 0 {
		return fmt.Errorf("TWOFA_CODE_TTL_MINUTES must be positive")
	}
	switch c.TwoFactor.Store {
	case StoreMemory, StoreDynamo:
	default:
		return fmt.Errorf("VERIFICATION_STORE must be %q or %q, got %q", StoreMemory, StoreDynamo, c.TwoFactor.Store)
	}
	if c.PasswordMinLength < 1 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
