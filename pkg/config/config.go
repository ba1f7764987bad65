package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "DEALDESK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "DEALDESK_DB_DSN"
	EnvDBHost = "DEALDESK_DB_HOST"
	EnvDBUser = "DEALDESK_DB_USER"
	EnvDBName = "DEALDESK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Storage      StorageConfig
	GCP          GCPConfig
	CORS         CORSConfig
	Realtime     RealtimeConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DEALDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"DEALDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DEALDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DEALDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DEALDESK_DB_DSN"`
	Driver string `envconfig:"DEALDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DEALDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"DEALDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DEALDESK_DB_USER"`
	LegacyPassword string `envconfig:"DEALDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"DEALDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"DEALDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DEALDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DEALDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DEALDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DEALDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DEALDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DEALDESK_REDIS_ADDR"`
	Password     string        `envconfig:"DEALDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"DEALDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DEALDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DEALDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DEALDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DEALDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DEALDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DEALDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DEALDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DEALDESK_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DEALDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DEALDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DEALDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DEALDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DEALDESK_ARGON_KEY_LEN" default:"32"`
}

type StorageConfig struct {
	BucketName  string `envconfig:"DEALDESK_GCS_BUCKET_NAME" required:"true"`
	MaxUploadMB int    `envconfig:"DEALDESK_MAX_UPLOAD_MB" default:"10"`
}

type GCPConfig struct {
	CredentialsJSON        string `envconfig:"DEALDESK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DEALDESK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"DEALDESK_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type RealtimeConfig struct {
	WriteTimeout   time.Duration `envconfig:"DEALDESK_REALTIME_WRITE_TIMEOUT" default:"10s"`
	PongTimeout    time.Duration `envconfig:"DEALDESK_REALTIME_PONG_TIMEOUT" default:"60s"`
	MaxMessageSize int64         `envconfig:"DEALDESK_REALTIME_MAX_MESSAGE_BYTES" default:"4096"`
	SendBuffer     int           `envconfig:"DEALDESK_REALTIME_SEND_BUFFER" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DEALDESK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
