package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "TASKHIVE_DB_DSN"
	EnvDBHost = "TASKHIVE_DB_HOST"
	EnvDBUser = "TASKHIVE_DB_USER"
	EnvDBName = "TASKHIVE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Feed          FeedConfig
	Cron          CronConfig
	Eventing      EventingConfig
	Outbox        OutboxConfig
	GCP           GCPConfig
	GCS           GCSConfig
	PubSub        PubSubConfig
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
	Env          string `envconfig:"TASKHIVE_APP_ENV" required:"true"`
	Port         string `envconfig:"TASKHIVE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TASKHIVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TASKHIVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TASKHIVE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TASKHIVE_DB_DSN"`
	Driver string `envconfig:"TASKHIVE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TASKHIVE_DB_HOST"`
	LegacyPort     int    `envconfig:"TASKHIVE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TASKHIVE_DB_USER"`
	LegacyPassword string `envconfig:"TASKHIVE_DB_PASSWORD"`
	LegacyName     string `envconfig:"TASKHIVE_DB_NAME"`
	LegacySSLMode  string `envconfig:"TASKHIVE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TASKHIVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TASKHIVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TASKHIVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TASKHIVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TASKHIVE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TASKHIVE_REDIS_ADDR"`
	Password     string        `envconfig:"TASKHIVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TASKHIVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TASKHIVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TASKHIVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TASKHIVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TASKHIVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TASKHIVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TASKHIVE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TASKHIVE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"TASKHIVE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"TASKHIVE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TASKHIVE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TASKHIVE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TASKHIVE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TASKHIVE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TASKHIVE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"TASKHIVE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit       int           `envconfig:"TASKHIVE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"TASKHIVE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"TASKHIVE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit    int           `envconfig:"TASKHIVE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"TASKHIVE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TASKHIVE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TASKHIVE_AUTO_MIGRATE" default:"false"`
}

// FeedConfig tunes the notification snapshot watcher.
type FeedConfig struct {
	ResyncInterval time.Duration `envconfig:"TASKHIVE_FEED_RESYNC_INTERVAL" default:"30s"`
	SendBuffer     int           `envconfig:"TASKHIVE_FEED_SEND_BUFFER" default:"16"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"TASKHIVE_CRON_INTERVAL" default:"15m"`
}

type EventingConfig struct {
	ConsumerIdempotencyTTL time.Duration `envconfig:"TASKHIVE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TASKHIVE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TASKHIVE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TASKHIVE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TASKHIVE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"TASKHIVE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TASKHIVE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"TASKHIVE_GCS_BUCKET_NAME"`
	UploadURLExpiry   time.Duration `envconfig:"TASKHIVE_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"TASKHIVE_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"TASKHIVE_PUBSUB_DOMAIN_TOPIC" default:"taskhive-domain-events"`
	DomainSubscription string `envconfig:"TASKHIVE_PUBSUB_DOMAIN_SUBSCRIPTION"`
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
