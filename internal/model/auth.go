package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest は新規登録フォーム
type RegisterRequest struct {
	Email    string `form:"email" validate:"required,email,max=255"`
	Username string `form:"username" validate:"required,min=1,max=255"`
	Name     string `form:"name" validate:"max=255"`
	Password string `form:"password" validate:"required,min=8,max=72"`
}

// LoginRequest はログインフォーム。Login はメールアドレスかユーザー名
type LoginRequest struct {
	Login    string `form:"login" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

// Session はログイン成功時の結果
type Session struct {
	Token     string
	ID        string
	User      *User
	ExpiresAt time.Time
}

// SessionClaims はセッションCookieに入れるJWTのクレーム
// Subject にユーザーID、ID (jti) にセッションIDを入れる
type SessionClaims struct {
	jwt.RegisteredClaims
}
