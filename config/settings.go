package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Settings is the typed view of the environment used by every command.
type Settings struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	DBType       string
	DSN          string
	ReplicaDSN   string
	SQLitePath   string
	DBLogQueries bool

	SessionStore  string
	SessionTTL    time.Duration
	SecureCookies bool
	CSRFEnabled   bool
	CSRFSecret    string

	AdminBootstrap bool

	MediaBackend   string
	UploadRoot     string
	MaxUploadBytes int64
	S3Bucket       string
	S3PublicURL    string

	AcceptedOrigins []string

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present), resolves ssm: references and returns the settings.
func Load(ctx context.Context) (Settings, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	c := New()
	if err := ResolveSecrets(ctx, c, nil); err != nil {
		return Settings{}, err
	}
	return FromMap(c)
}

// FromMap builds Settings from an already resolved environment map.
func FromMap(c map[string]string) (Settings, error) {
	s := Settings{
		Port:         GetString(c, "PORT", "8080"),
		ReadTimeout:  GetDuration(c, "READ_TIMEOUT_SECONDS", 180*time.Second),
		WriteTimeout: GetDuration(c, "WRITE_TIMEOUT_SECONDS", 180*time.Second),
		IdleTimeout:  GetDuration(c, "IDLE_TIMEOUT_SECONDS", 180*time.Second),

		DBType:       GetString(c, "DB_TYPE", "sqlite"),
		ReplicaDSN:   GetString(c, "DB_REPLICA_DSN", ""),
		SQLitePath:   GetString(c, "SQLITE_PATH", "portfolio.db"),
		DBLogQueries: GetBool(c, "DB_LOG_QUERIES", false),

		SessionStore:  GetString(c, "SESSION_STORE", "database"),
		SessionTTL:    GetDuration(c, "SESSION_TTL", 24*time.Hour),
		SecureCookies: GetBool(c, "SECURE_COOKIES", false),
		CSRFEnabled:   GetBool(c, "CSRF_ENABLED", true),
		CSRFSecret:    GetString(c, "CSRF_SECRET", ""),

		AdminBootstrap: GetBool(c, "ADMIN_BOOTSTRAP", true),

		MediaBackend:   GetString(c, "MEDIA_BACKEND", "local"),
		UploadRoot:     GetString(c, "UPLOAD_ROOT", "."),
		MaxUploadBytes: int64(GetInt(c, "MAX_UPLOAD_BYTES", 5*1024*1024)),
		S3Bucket:       GetString(c, "S3_BUCKET", ""),
		S3PublicURL:    GetString(c, "S3_PUBLIC_URL", ""),

		AcceptedOrigins: GetList(c, "ACCEPTED_ORIGINS"),

		LogLevel:  GetString(c, "LOG_LEVEL", "info"),
		LogFormat: GetString(c, "LOG_FORMAT", "console"),
	}

	switch s.DBType {
	case "postgres", "supa":
		s.DBType = "postgres"
		s.DSN = GetString(c, "DATABASE_URL", "")
		if s.DSN == "" {
			s.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
				GetString(c, "DB_HOST", "localhost"),
				GetString(c, "DB_USER", "postgres"),
				GetString(c, "DB_PASSWORD", ""),
				GetString(c, "DB_NAME", "portfolio"),
				GetString(c, "DB_PORT", "5432"),
				GetString(c, "DB_SSLMODE", "disable"),
			)
		}
	case "sqlite":
	default:
		return Settings{}, fmt.Errorf("unsupported DB_TYPE %q", s.DBType)
	}

	switch s.SessionStore {
	case "memory", "database":
	default:
		return Settings{}, fmt.Errorf("unsupported SESSION_STORE %q", s.SessionStore)
	}

	switch s.MediaBackend {
	case "local":
	case "s3":
		if s.S3Bucket == "" {
			return Settings{}, fmt.Errorf("S3_BUCKET is required when MEDIA_BACKEND=s3")
		}
	default:
		return Settings{}, fmt.Errorf("unsupported MEDIA_BACKEND %q", s.MediaBackend)
	}

	return s, nil
}

// ValidateServe checks the settings only the HTTP server depends on.
func (s Settings) ValidateServe() error {
	if s.CSRFEnabled && s.CSRFSecret == "" {
		return fmt.Errorf("CSRF_SECRET is required when CSRF_ENABLED is true")
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

func (s Settings) Addr() string {
	return "0.0.0.0:" + s.Port
}
