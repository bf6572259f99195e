package model

import (
	"time"
)

// UserConfirmationToken はメールアドレス確認用のトークン情報を保持します
type UserConfirmationToken struct {
	Token     string    `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
}

func (UserConfirmationToken) TableName() string {
	return "user_confirmation_tokens"
}
