package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración del servicio.
type Config struct {
	App        AppConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	RabbitMQ   RabbitMQConfig
	Auth       AuthConfig
	Nearby     NearbyConfig
	Greetings  GreetingsConfig
	Moderation ModerationConfig
	Upload     UploadConfig
	CORS       CORSConfig
	Log        LogConfig
}

type AppConfig struct {
	Name string
	Env  string
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig: DSN vacío => storage in-memory.
type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	MaxIdleTime  time.Duration
	ConnTimeout  time.Duration
}

// RedisConfig: Addr vacío => sesiones in-memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RabbitMQConfig: URL vacía => sin publicación de recordatorios.
type RabbitMQConfig struct {
	URL      string
	Exchange string
	Queue    string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	LoginCode string

	// DevMode desactiva la verificación de tokens y acepta X-Debug-User-ID.
	DevMode bool

	RemoteURL    string
	RemoteAPIKey string
}

type NearbyConfig struct {
	ScanLimit int
	Window    time.Duration
}

type GreetingsConfig struct {
	Cooldown time.Duration
}

type ModerationConfig struct {
	WordListPath string
	RemoteURL    string
	RemoteAPIKey string
}

type UploadConfig struct {
	MaxBytes int64
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

type LogConfig struct {
	Level  string
	Format string
}

// Load lee .env (si existe) y luego variables de entorno.
func Load() (*Config, error) {
	// .env es opcional; en contenedores todo viene por env.
	_ = godotenv.Load(".env")

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "pawpals"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", getEnv("PORT", "8080")),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:          getEnv("DB_DSN", ""),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 30*time.Minute),
			MaxIdleTime:  getDurationEnv("DB_MAX_IDLE_TIME", 5*time.Minute),
			ConnTimeout:  getDurationEnv("DB_CONN_TIMEOUT", 3*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      getEnv("RABBITMQ_URL", ""),
			Exchange: getEnv("RABBITMQ_REMINDER_EXCHANGE", "reminder_due_exchange"),
			Queue:    getEnv("RABBITMQ_REMINDER_QUEUE", "reminder_due_queue"),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", "change-me-in-production"),
			TokenTTL:     getDurationEnv("JWT_TTL", 30*24*time.Hour),
			LoginCode:    getEnv("LOGIN_CODE", "123456"),
			DevMode:      getBoolEnv("AUTH_DEV_MODE", false),
			RemoteURL:    getEnv("AUTH_REMOTE_URL", ""),
			RemoteAPIKey: getEnv("AUTH_REMOTE_API_KEY", ""),
		},
		Nearby: NearbyConfig{
			ScanLimit: getIntEnv("NEARBY_SCAN_LIMIT", 200),
			Window:    getDurationEnv("NEARBY_WINDOW", 30*time.Minute),
		},
		Greetings: GreetingsConfig{
			Cooldown: getDurationEnv("GREETING_COOLDOWN", 3*time.Minute),
		},
		Moderation: ModerationConfig{
			WordListPath: getEnv("MODERATION_WORDLIST", ""),
			RemoteURL:    getEnv("MODERATION_REMOTE_URL", ""),
			RemoteAPIKey: getEnv("MODERATION_API_KEY", ""),
		},
		Upload: UploadConfig{
			MaxBytes: int64(getIntEnv("UPLOAD_MAX_BYTES", 5<<20)),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getStringSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getStringSliceEnv("CORS_ALLOWED_HEADERS", []string{"*"}),
			AllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", false),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate revisa combinaciones inválidas.
func (c *Config) Validate() error {
	if !c.Auth.DevMode && strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET is required unless AUTH_DEV_MODE=true")
	}
	if c.Greetings.Cooldown < 0 {
		return errors.New("config: GREETING_COOLDOWN must not be negative")
	}
	if c.Nearby.ScanLimit <= 0 {
		return errors.New("config: NEARBY_SCAN_LIMIT must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("config: UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getIntEnv(key string, def int) int {
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

func getBoolEnv(key string, def bool) bool {
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

func getDurationEnv(key string, def time.Duration) time.Duration {
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

func getStringSliceEnv(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
