package model

import (
	"time"
)

// User はアカウント情報を表します
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Email       string     `gorm:"type:varchar(255);uniqueIndex:uq_users_email" json:"email"`
	Password    string     `gorm:"type:varchar(255)" json:"-"` // ハッシュ化済み。画面には出さない
	Name        string     `gorm:"type:varchar(255)" json:"name"`
	Username    string     `gorm:"type:varchar(255);uniqueIndex:uq_users_username" json:"username"`
	Active      bool       `json:"active"`
	ConfirmedAt *time.Time `json:"confirmed_at"`

	// GORM用のリレーション
	Roles []Role `gorm:"many2many:roles_users;" json:"roles"`
	Words []Word `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// HasRole はロール名の集合に name が含まれるかを返します (継承なし)
func (u *User) HasRole(name string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// IsAdmin は admin ロールを持つかどうか
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// RoleNames はロール名の一覧
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

type ContextKey string

const (
	CurrentUserKey ContextKey = "currentUser"
	SessionIDKey   ContextKey = "sessionID"
)

// 管理画面のユーザー編集フォーム
// Password は新規作成時のみ必須 (更新時は空ならそのまま)
type AdminUserForm struct {
	Email     string   `form:"email" validate:"required,email,max=255"`
	Username  string   `form:"username" validate:"required,min=1,max=255"`
	Name      string   `form:"name" validate:"max=255"`
	Password  string   `form:"password" validate:"omitempty,min=8,max=72"`
	Active    bool     `form:"active"`
	Confirmed bool     `form:"confirmed"`
	Roles     []string `form:"roles"`
}
