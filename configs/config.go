package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Settings struct {
	Port      string
	AppEnv    string
	LogLevel  string
	LogPretty bool

	DBDriver    string // postgres|sqlite
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	AdminEmail    string
	AdminPassword string
	AdminFullName string

	CORSAllowedOrigins []string
	RateRPS            float64
	RateBurst          int

	PendingBookingTTL time.Duration // 0 disables the age rule
	ReminderLead      time.Duration

	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string

	CloudinaryURL string
	UploadFolder  string
}

// LoadEnv loads .env into the process environment if present.
func LoadEnv() {
	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Msg(".env file not found, reading from system environment variables")
	}
}

func MustLoad() Settings {
	s, err := Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return s
}

func Load() (Settings, error) {
	s := Settings{
		Port:      getenv("PORT", "8080"),
		AppEnv:    strings.ToLower(getenv("APP_ENV", "development")),
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DatabaseURL: getenv("DATABASE_URL", ""),

		JWTSecret: getenv("JWT_SECRET", ""),
		JWTTTL:    getdur("JWT_TTL", 72*time.Hour),

		AdminEmail:    getenv("ADMIN_EMAIL", ""),
		AdminPassword: getenv("ADMIN_PASSWORD", ""),
		AdminFullName: getenv("ADMIN_FULL_NAME", "Administrator"),

		CORSAllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "*")),
		RateRPS:            getfloat("RATE_RPS", 5),
		RateBurst:          getint("RATE_BURST", 10),

		PendingBookingTTL: getdur("PENDING_BOOKING_TTL", 48*time.Hour),
		ReminderLead:      getdur("REMINDER_LEAD", time.Hour),

		BrevoAPIKey:     getenv("BREVO_API_KEY", ""),
		EmailSender:     getenv("EMAIL_SENDER", ""),
		EmailSenderName: getenv("EMAIL_SENDER_NAME", "Tutor Marketplace"),

		CloudinaryURL: getenv("CLOUDINARY_URL", ""),
		UploadFolder:  getenv("UPLOAD_FOLDER", "profile_images"),
	}

	if s.LogLevel == "warning" {
		s.LogLevel = "warn"
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return s, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(s.Port) == "" {
		return s, errors.New("PORT must not be empty")
	}
	switch s.DBDriver {
	case "postgres":
		if s.DatabaseURL == "" {
			return s, errors.New("DATABASE_URL is required for the postgres driver")
		}
	case "sqlite":
		if s.DatabaseURL == "" {
			s.DatabaseURL = "tutor.db"
		}
	default:
		return s, errors.New("DB_DRIVER must be postgres or sqlite")
	}
	if s.JWTSecret == "" {
		return s, errors.New("JWT_SECRET must be set")
	}
	if s.JWTTTL <= 0 {
		return s, errors.New("JWT_TTL must be > 0")
	}
	if s.RateRPS < 0 {
		return s, errors.New("RATE_RPS must be >= 0")
	}
	if s.RateBurst < 1 {
		return s, errors.New("RATE_BURST must be >= 1")
	}
	if s.PendingBookingTTL < 0 {
		return s, errors.New("PENDING_BOOKING_TTL must be >= 0")
	}
	if s.ReminderLead <= 0 {
		return s, errors.New("REMINDER_LEAD must be > 0")
	}
	return s, nil
}

func (s Settings) IsProduction() bool { return s.AppEnv == "production" }

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
