// internal/config/config.go
package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	URL         string `mapstructure:"url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"` // 確認メールのリンク生成に使う
}

// AuthConfig はセッションとパスワードハッシュの設定
// SecretKey と PasswordSalt は必ず外部 (環境変数か設定ファイル) から与える
type AuthConfig struct {
	SecretKey       string        `mapstructure:"secret_key"`
	PasswordSalt    string        `mapstructure:"password_salt"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	CookieName      string        `mapstructure:"cookie_name"`
	CookieSecure    bool          `mapstructure:"cookie_secure"`
	RegisterEnabled bool          `mapstructure:"register_enabled"`
	ConfirmRequired bool          `mapstructure:"confirm_required"`
	ConfirmTokenTTL time.Duration `mapstructure:"confirm_token_ttl"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type MailerConfig struct {
	Type string `mapstructure:"type"` // "log" or "ses"
}

type SESConfig struct {
	Region          string `mapstructure:"region"`
	From            string `mapstructure:"from"`
	AuthType        string `mapstructure:"auth_type"` // "static_credentials" or "iam_role"
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// RedisConfig が空 (Addr なし) の場合、セッションは失効管理なしのステートレスになる
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	App      AppConfig      `mapstructure:"app"`
	Auth     AuthConfig     `mapstructure:"auth"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Mailer   MailerConfig   `mapstructure:"mailer"`
	SES      SESConfig      `mapstructure:"ses"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

var Cfg Config

var (
	ErrMissingSecretKey    = errors.New("auth.secret_key is not set (APP_AUTH_SECRET_KEY)")
	ErrMissingPasswordSalt = errors.New("auth.password_salt is not set (APP_AUTH_PASSWORD_SALT)")
)

func LoadConfig(path string) error {
	// .env があれば環境変数として読み込む (なくてもよい)
	if err := godotenv.Load(); err == nil {
		log.Println(".env loaded")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	// APP_AUTH_SECRET_KEY -> auth.secret_key
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	Cfg = cfg

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Register Enabled: %t, Confirm Required: %t", Cfg.Auth.RegisterEnabled, Cfg.Auth.ConfirmRequired)
	return nil
}

// setDefaults は AutomaticEnv で拾えるように全キーを登録する役割もある
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("database.url", DefaultDatabaseURL)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("app.name", AppName)
	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("auth.secret_key", "")
	v.SetDefault("auth.password_salt", "")
	v.SetDefault("auth.session_ttl", DefaultSessionTTL)
	v.SetDefault("auth.cookie_name", DefaultSessionCookie)
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.register_enabled", true)
	v.SetDefault("auth.confirm_required", false)
	v.SetDefault("auth.confirm_token_ttl", DefaultConfirmTokenTTL)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:8080"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type"})
	v.SetDefault("cors.exposed_headers", []string{})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 300)
	v.SetDefault("mailer.type", DefaultMailerType)
	v.SetDefault("ses.region", "")
	v.SetDefault("ses.from", "")
	v.SetDefault("ses.auth_type", "iam_role")
	v.SetDefault("ses.access_key_id", "")
	v.SetDefault("ses.secret_access_key", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("metrics.enabled", true)
}

// Validate は起動に必須の値をチェックします
func (c *Config) Validate() error {
	if c.Auth.SecretKey == "" {
		return ErrMissingSecretKey
	}
	if c.Auth.PasswordSalt == "" {
		return ErrMissingPasswordSalt
	}
	if c.Auth.SessionTTL <= 0 {
		c.Auth.SessionTTL = DefaultSessionTTL
	}
	if c.Auth.ConfirmTokenTTL <= 0 {
		c.Auth.ConfirmTokenTTL = DefaultConfirmTokenTTL
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = DefaultSessionCookie
	}
	if c.Server.Port == "" {
		c.Server.Port = DefaultServerPort
	}
	return nil
}
