package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// peppered はパスワードを salt (設定値) で HMAC-SHA256 してから base64 にします。
// bcrypt は72バイトまでしか見ないので、長いパスワードもここで固定長になる
func peppered(password, salt string) []byte {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// HashPassword は保存用のハッシュを返します
func HashPassword(password, salt string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(peppered(password, salt), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword は hash と password が一致するかを返します
func CheckPassword(hash, password, salt string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), peppered(password, salt)) == nil
}
