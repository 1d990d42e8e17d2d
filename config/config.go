package config

import (
	"FamilyTime/models"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"google.golang.org/api/option"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	StorePostgres  = "postgres"
	StoreFirestore = "firestore"
	StoreMemory    = "memory"

	AuthModeJWT      = "jwt"
	AuthModeFirebase = "firebase"
)

var DB *gorm.DB

type Config struct {
	Port        string
	StoreDriver string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	FirebaseCredentialsPath string
	FirebaseProjectID       string

	AuthMode  string
	JWTSecret string

	Timezone             string
	DailyRequestLimit    int
	MaxRequestMinutes    int
	MaxDailyBudget       int
	DefaultBudgetMinutes int

	NotifyWebhookURL string
	GuardDebounce    time.Duration
	LogLevel         string
}

// SetDefaults регистрирует значения по умолчанию в viper
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("store_driver", StorePostgres)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "familytime")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_sslmode", "")
	v.SetDefault("firebase_credentials_path", "")
	v.SetDefault("firebase_project_id", "")
	v.SetDefault("auth_mode", AuthModeJWT)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("daily_request_limit", 3)
	v.SetDefault("max_request_minutes", 120)
	v.SetDefault("max_daily_budget", 240)
	v.SetDefault("default_budget_minutes", 120)
	v.SetDefault("notify_webhook_url", "")
	v.SetDefault("guard_debounce", "100ms")
	v.SetDefault("log_level", "info")
}

// LoadDotEnv подгружает .env, если он есть
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		Log.Debug("Error loading .env file, using environment variables")
	}
}

// Load собирает Config из viper (файл, переменные окружения, значения по умолчанию)
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		Port:                    v.GetString("port"),
		StoreDriver:             strings.ToLower(v.GetString("store_driver")),
		DBHost:                  v.GetString("db_host"),
		DBUser:                  v.GetString("db_user"),
		DBPassword:              v.GetString("db_password"),
		DBName:                  v.GetString("db_name"),
		DBPort:                  v.GetString("db_port"),
		DBSSLMode:               v.GetString("db_sslmode"),
		FirebaseCredentialsPath: v.GetString("firebase_credentials_path"),
		FirebaseProjectID:       v.GetString("firebase_project_id"),
		AuthMode:                strings.ToLower(v.GetString("auth_mode")),
		JWTSecret:               v.GetString("jwt_secret"),
		Timezone:                v.GetString("timezone"),
		DailyRequestLimit:       v.GetInt("daily_request_limit"),
		MaxRequestMinutes:       v.GetInt("max_request_minutes"),
		MaxDailyBudget:          v.GetInt("max_daily_budget"),
		DefaultBudgetMinutes:    v.GetInt("default_budget_minutes"),
		NotifyWebhookURL:        v.GetString("notify_webhook_url"),
		GuardDebounce:           v.GetDuration("guard_debounce"),
		LogLevel:                v.GetString("log_level"),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StorePostgres, StoreFirestore, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.AuthMode {
	case AuthModeJWT:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case AuthModeFirebase:
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}
	if c.DailyRequestLimit <= 0 {
		return errors.New("DAILY_REQUEST_LIMIT must be positive")
	}
	if c.MaxRequestMinutes <= 0 || c.MaxDailyBudget <= 0 {
		return errors.New("MAX_REQUEST_MINUTES and MAX_DAILY_BUDGET must be positive")
	}
	if c.DefaultBudgetMinutes < 0 || c.DefaultBudgetMinutes > c.MaxDailyBudget {
		return fmt.Errorf("DEFAULT_BUDGET_MINUTES must be between 0 and %d", c.MaxDailyBudget)
	}
	if c.GuardDebounce < 0 {
		return errors.New("GUARD_DEBOUNCE must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location часовой пояс, в котором считаются календарные дни
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// DSN строка подключения к Postgres
func (c Config) DSN() string {
	// Используем значение из DB_SSLMODE или "require" для Render
	sslmode := c.DBSSLMode
	if sslmode == "" {
		if strings.Contains(c.DBHost, "render.com") {
			sslmode = "require"
		} else {
			sslmode = "disable"
		}
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, sslmode, c.timezoneOrUTC())
}

func (c Config) timezoneOrUTC() string {
	if c.Timezone == "" {
		return "UTC"
	}
	return c.Timezone
}

func InitDatabase(cfg Config) (*gorm.DB, error) {
	Log.WithFields(logrus.Fields{
		"host":   cfg.DBHost,
		"user":   cfg.DBUser,
		"dbname": cfg.DBName,
		"port":   cfg.DBPort,
	}).Info("Connecting to database")

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	Log.Info("Successfully connected to database!")
	DB = db
	return db, nil
}

// Migrate создает и обновляет таблицы всех моделей
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Parent{},
		&models.Child{},
		&models.TimeRequest{},
		&models.DailyRequestCounter{},
		&models.ScreenTimeRecord{},
		&models.AuditEvent{},
		&models.Chore{},
		&models.Submission{},
	)
}

// FirebaseClients клиенты одного Firebase приложения
type FirebaseClients struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
}

func (f *FirebaseClients) Close() error {
	if f == nil || f.Firestore == nil {
		return nil
	}
	return f.Firestore.Close()
}

// InitFirebase инициализирует приложение; Firestore открывается только если нужен
func InitFirebase(ctx context.Context, cfg Config, withFirestore bool) (*FirebaseClients, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsPath))
	}
	var fbConfig *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Auth client: %w", err)
	}

	clients := &FirebaseClients{App: app, Auth: authClient}
	if withFirestore {
		clients.Firestore, err = app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting Firestore client: %w", err)
		}
	}
	return clients, nil
}
