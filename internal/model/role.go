package model

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Role はユーザーに付与する名前付きの権限フラグ (階層なし)
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex:uq_roles_name" json:"name"`
	Description string `json:"description"`
}

func (Role) TableName() string {
	return "roles"
}

// 管理画面のロール編集フォーム
type RoleForm struct {
	Name        string `form:"name" validate:"required,max=80"`
	Description string `form:"description" validate:"max=255"`
}
