package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration values.
type Config struct {
	AppPort     string `envconfig:"APP_PORT" default:"5000"`
	AppHost     string `envconfig:"APP_HOST" default:"127.0.0.1"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:"unihome.db"`

	SessionSecret string        `envconfig:"SESSION_SECRET" default:"unihome_secret_key"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	TokenExpires  time.Duration `envconfig:"JWT_TTL" default:"24h"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`

	StaticDir    string `envconfig:"STATIC_DIR" default:"static"`
	UploadDir    string `envconfig:"UPLOAD_DIR" default:"static/uploads"`
	MaxUploadMB  int    `envconfig:"MAX_UPLOAD_MB" default:"64"`
	CORSOrigins  string `envconfig:"CORS_ORIGINS" default:"*"`
	SeedDemoData bool   `envconfig:"SEED_DEMO_DATA" default:"true"`

	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@unihome.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"465"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM"`
	SMTPFromName string `envconfig:"SMTP_FROM_NAME" default:"UniHome平台"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	VerificationTTL time.Duration `envconfig:"VERIFICATION_TTL" default:"5m"`
	CleanupSchedule string        `envconfig:"CLEANUP_SCHEDULE" default:"@every 30m"`

	TelegramBotToken  string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChat string `envconfig:"TELEGRAM_ADMIN_CHAT_ID"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"unihome.events"`
}

// Load reads environment variables and returns a populated Config.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.AppPort == "" {
		log.Fatal("APP_PORT must be set")
	}

	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET must be set")
	}

	return cfg
}

// Parse processes the environment without touching .env files.
func Parse() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ListenAddr returns the host:port pair the server binds to.
func (c *Config) ListenAddr() string {
	return c.AppHost + ":" + c.AppPort
}

// MailEnabled reports whether SMTP delivery is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUsername != ""
}
