package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every externally injected setting. Secrets carry no defaults.
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	Port     string `envconfig:"PORT" default:"10000"`
	DemoMode bool   `envconfig:"DEMO_MODE" default:"false"`

	MongoURI             string        `envconfig:"MONGODB_URI" required:"true"`
	DBName               string        `envconfig:"DB_NAME" default:"enrollment"`
	DBConnectTimeout     time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
	DBConnectRetryDelay  time.Duration `envconfig:"DB_CONNECT_RETRY_DELAY" default:"5s"`
	DBConnectMaxAttempts int           `envconfig:"DB_CONNECT_MAX_ATTEMPTS" default:"0"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	OTPTTL         time.Duration `envconfig:"OTP_TTL" default:"5m"`
	OTPMaxAttempts int           `envconfig:"OTP_MAX_ATTEMPTS" default:"5"`
	OTPBcryptCost  int           `envconfig:"OTP_BCRYPT_COST" default:"10"`

	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	RazorpayKeyID     string `envconfig:"RAZORPAY_KEY_ID" required:"true"`
	RazorpayKeySecret string `envconfig:"RAZORPAY_KEY_SECRET" required:"true"`
	CourseAmount      int64  `envconfig:"COURSE_AMOUNT" default:"50000"`
	CourseCurrency    string `envconfig:"COURSE_CURRENCY" default:"INR"`
	CourseName        string `envconfig:"COURSE_NAME" default:"Introduction to Machine Learning"`

	HFAPIKey          string        `envconfig:"HF_API_KEY"`
	HFModel           string        `envconfig:"HF_MODEL" default:"facebook/bart-large-cnn"`
	HFBaseURL         string        `envconfig:"HF_BASE_URL" default:"https://api-inference.huggingface.co/models/"`
	SummarizerTimeout time.Duration `envconfig:"SUMMARIZER_TIMEOUT" default:"30s"`

	SMTPHost string `envconfig:"SMTP_HOST"`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"2525"`
	SMTPUser string `envconfig:"SMTP_USER"`
	SMTPPass string `envconfig:"SMTP_PASS"`
	MailFrom string `envconfig:"FROM_EMAIL"`

	SMSAPIURL   string `envconfig:"SMS_API_URL"`
	SMSUsername string `envconfig:"SMS_USERNAME"`
	SMSPassword string `envconfig:"SMS_PASSWORD"`
	SMSSenderID string `envconfig:"SMS_SENDER_ID"`

	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5001"`
	KeepAliveInterval  time.Duration `envconfig:"KEEPALIVE_INTERVAL" default:"0"`
}

// Load reads .env (if present) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	for key, val := range map[string]string{
		"MONGODB_URI":         c.MongoURI,
		"SESSION_SECRET":      c.SessionSecret,
		"RAZORPAY_KEY_ID":     c.RazorpayKeyID,
		"RAZORPAY_KEY_SECRET": c.RazorpayKeySecret,
	} {
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}
	if c.OTPTTL <= 0 {
		return fmt.Errorf("OTP_TTL must be positive")
	}
	if c.CourseAmount <= 0 {
		return fmt.Errorf("COURSE_AMOUNT must be positive")
	}
	if c.DBConnectMaxAttempts < 0 {
		return fmt.Errorf("DB_CONNECT_MAX_ATTEMPTS must be >= 0")
	}
	if !c.DemoMode && c.SMSAPIURL == "" {
		return fmt.Errorf("SMS_API_URL is required when DEMO_MODE is off")
	}
	return nil
}

// IsProduction reports whether the service runs with production behavior.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SummarizerEnabled reports whether a summarization token was supplied.
func (c *Config) SummarizerEnabled() bool {
	return c.HFAPIKey != ""
}

// MailEnabled reports whether SMTP settings are complete.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}

// RetryPolicy is the connection retry schedule for the document store.
func (c *Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		Delay:       c.DBConnectRetryDelay,
		MaxAttempts: c.DBConnectMaxAttempts,
	}
}
