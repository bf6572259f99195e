// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "vocab_builder"
	AppVersion = "0.3.0"
)

// デフォルト設定値
const (
	DefaultServerPort      = ":8080"
	DefaultDatabaseURL     = "sqlite://vocabulary.db"
	DefaultLogLevel        = "info"
	DefaultSessionTTL      = 24 * time.Hour
	DefaultConfirmTokenTTL = 24 * time.Hour
	DefaultMailerType      = "log"
	DefaultSessionCookie   = "session"
)
