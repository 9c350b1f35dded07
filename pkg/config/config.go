package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Cache     CacheConfig
	Timetable TimetableConfig
	Events    EventsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Configured reports whether a Redis endpoint is set. Generation locks need Redis even when grid caching is off.
func (c RedisConfig) Configured() bool {
	return c.Host != "" && c.Port > 0
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs Redis usage for grid caching and generation locks.
type CacheConfig struct {
	Enabled bool
	GridTTL time.Duration
}

// EventsConfig points at the RabbitMQ broker that receives timetable events. An empty URL disables publishing.
type EventsConfig struct {
	URL            string
	Exchange       string
	PublishTimeout time.Duration
}

// TimetableConfig holds the default grid window and workload policy used by generation runs.
type TimetableConfig struct {
	Weekdays       []string
	PeriodStart    int
	PeriodEnd      int
	MaxPerDay      int
	ConsecutiveGap int
	RestGap        int
	ExamMaxPerDay  int
	ExamGap        int
	LockTTL        time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		GridTTL: parseDuration(v.GetString("GRID_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Timetable = TimetableConfig{
		Weekdays:       splitAndTrim(v.GetString("TIMETABLE_WEEKDAYS")),
		PeriodStart:    v.GetInt("TIMETABLE_PERIOD_START"),
		PeriodEnd:      v.GetInt("TIMETABLE_PERIOD_END"),
		MaxPerDay:      v.GetInt("TIMETABLE_MAX_PER_DAY"),
		ConsecutiveGap: v.GetInt("TIMETABLE_CONSECUTIVE_GAP"),
		RestGap:        v.GetInt("TIMETABLE_REST_GAP"),
		ExamMaxPerDay:  v.GetInt("EXAM_MAX_PER_DAY"),
		ExamGap:        v.GetInt("EXAM_GAP"),
		LockTTL:        parseDuration(v.GetString("GENERATION_LOCK_TTL"), 2*time.Minute),
	}

	cfg.Events = EventsConfig{
		URL:            v.GetString("RABBITMQ_URL"),
		Exchange:       v.GetString("RABBITMQ_EXCHANGE"),
		PublishTimeout: parseDuration(v.GetString("RABBITMQ_PUBLISH_TIMEOUT"), 5*time.Second),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "uni_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("GRID_CACHE_TTL", "10m")

	v.SetDefault("TIMETABLE_WEEKDAYS", "MON,TUE,WED,THU,FRI")
	v.SetDefault("TIMETABLE_PERIOD_START", 1)
	v.SetDefault("TIMETABLE_PERIOD_END", 18)
	v.SetDefault("TIMETABLE_MAX_PER_DAY", 3)
	v.SetDefault("TIMETABLE_CONSECUTIVE_GAP", 1)
	v.SetDefault("TIMETABLE_REST_GAP", 1)
	v.SetDefault("EXAM_MAX_PER_DAY", 2)
	v.SetDefault("EXAM_GAP", 2)
	v.SetDefault("GENERATION_LOCK_TTL", "2m")

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "timetable.events")
	v.SetDefault("RABBITMQ_PUBLISH_TIMEOUT", "5s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
