package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Clinic    ClinicConfig
	Billing   BillingConfig
	Printer   PrinterConfig
	Auth      AuthConfig
	Kafka     KafkaConfig
	Tracing   TracingConfig
	Log       LogConfig
}

type AppConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
	Debug   bool
	// Location is the clinic's time zone; "today" is computed in it.
	Location *time.Location
}

type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	SSLMode     string
	Timezone    string
	AutoMigrate bool
	Seed        bool
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

// StorageConfig selects where flattened form images are kept
type StorageConfig struct {
	Driver        string // local | s3 | memory
	Path          string
	UploadMaxSize int64
	S3Region      string
	S3Bucket      string
	S3Prefix      string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type ClinicConfig struct {
	Name     string
	Address  string
	LogoPath string
	LogoURL  string
}

type BillingConfig struct {
	DueDays            int
	MaxNumberAttempts  int
	DefaultCategory    string
	DefaultDepartment  string
	CreatedByStaffName string
}

type PrinterConfig struct {
	Type       string // usb | network | none
	DevicePath string
	Address    string
	PaperWidth int
}

// AuthConfig configures the external identity provider used when a doctor
// has no local password
type AuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
}

func (c AuthConfig) Enabled() bool {
	return c.TokenURL != ""
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type TracingConfig struct {
	OTLPEndpoint string
	SampleRate   float64
}

type LogConfig struct {
	Level string
}

// Load reads configuration from the environment. A .env file, when
// present, is loaded into the environment first.
func Load() *Config {
	_ = godotenv.Load()
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_NAME", "cura-doctors-portal")
	viper.SetDefault("APP_VERSION", "dev")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "cura")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("DB_SEED", false)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("STORAGE_DRIVER", "local")
	viper.SetDefault("STORAGE_PATH", "./storage")
	viper.SetDefault("UPLOAD_MAX_SIZE", 10485760)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("CLINIC_NAME", "Cura Hospitals")
	viper.SetDefault("CLINIC_ADDRESS", "Bengaluru, Karnataka")
	viper.SetDefault("CLINIC_LOGO_URL", "/ch-logo.png")
	viper.SetDefault("BILL_DUE_DAYS", 7)
	viper.SetDefault("BILL_NUMBER_ATTEMPTS", 5)
	viper.SetDefault("BILL_DEFAULT_CATEGORY", "consultation")
	viper.SetDefault("BILL_DEFAULT_DEPARTMENT", "OPD")
	viper.SetDefault("BILL_CREATED_BY", "Doctor Portal")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_PAPER_WIDTH", 48)
	viper.SetDefault("KAFKA_TOPIC", "doctor-portal.events")
	viper.SetDefault("OTEL_SAMPLE_RATE", 1.0)
	viper.SetDefault("LOG_LEVEL", "info")

	loc, err := time.LoadLocation(viper.GetString("APP_TIMEZONE"))
	if err != nil {
		loc = time.UTC
	}

	return &Config{
		App: AppConfig{
			Name:     viper.GetString("APP_NAME"),
			Version:  viper.GetString("APP_VERSION"),
			Env:      viper.GetString("APP_ENV"),
			Port:     viper.GetString("APP_PORT"),
			Debug:    viper.GetBool("APP_DEBUG"),
			Location: loc,
		},
		Database: DatabaseConfig{
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			Name:        viper.GetString("DB_NAME"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASSWORD"),
			SSLMode:     viper.GetString("DB_SSL_MODE"),
			Timezone:    viper.GetString("DB_TIMEZONE"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
			Seed:        viper.GetBool("DB_SEED"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		Storage: StorageConfig{
			Driver:        viper.GetString("STORAGE_DRIVER"),
			Path:          viper.GetString("STORAGE_PATH"),
			UploadMaxSize: viper.GetInt64("UPLOAD_MAX_SIZE"),
			S3Region:      viper.GetString("S3_REGION"),
			S3Bucket:      viper.GetString("S3_BUCKET"),
			S3Prefix:      viper.GetString("S3_PREFIX"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Clinic: ClinicConfig{
			Name:     viper.GetString("CLINIC_NAME"),
			Address:  viper.GetString("CLINIC_ADDRESS"),
			LogoPath: viper.GetString("CLINIC_LOGO_PATH"),
			LogoURL:  viper.GetString("CLINIC_LOGO_URL"),
		},
		Billing: BillingConfig{
			DueDays:            viper.GetInt("BILL_DUE_DAYS"),
			MaxNumberAttempts:  viper.GetInt("BILL_NUMBER_ATTEMPTS"),
			DefaultCategory:    viper.GetString("BILL_DEFAULT_CATEGORY"),
			DefaultDepartment:  viper.GetString("BILL_DEFAULT_DEPARTMENT"),
			CreatedByStaffName: viper.GetString("BILL_CREATED_BY"),
		},
		Printer: PrinterConfig{
			Type:       viper.GetString("PRINTER_TYPE"),
			DevicePath: viper.GetString("PRINTER_DEVICE_PATH"),
			Address:    viper.GetString("PRINTER_ADDRESS"),
			PaperWidth: viper.GetInt("PRINTER_PAPER_WIDTH"),
		},
		Auth: AuthConfig{
			TokenURL:     viper.GetString("AUTH_TOKEN_URL"),
			ClientID:     viper.GetString("AUTH_CLIENT_ID"),
			ClientSecret: viper.GetString("AUTH_CLIENT_SECRET"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(viper.GetString("KAFKA_BROKERS")),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		Tracing: TracingConfig{
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			SampleRate:   viper.GetFloat64("OTEL_SAMPLE_RATE"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// splitList splits a comma or space separated list, dropping empty entries
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
}
