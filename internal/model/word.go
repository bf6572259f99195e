// internal/model/word.go
package model

// Word は単語とその連想・ヒント・訳を表します
// word カラムはユーザーをまたいで一意 (ユーザー単位ではない)
type Word struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Word        string `gorm:"uniqueIndex:uq_words_word" json:"word"`
	Assoc       string `json:"assoc"`
	Hint        string `json:"hint"`
	Translation string `json:"translation"`
	UserID      *uint  `gorm:"index" json:"user_id"` // usersテーブルへの外部キー

	// 関連 (Preload用)
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Word) TableName() string {
	return "words"
}

// OwnedBy は userID のユーザーが所有者かどうかを返します
func (w *Word) OwnedBy(userID uint) bool {
	return w.UserID != nil && *w.UserID == userID
}

// OwnerName は一覧表示用の所有者名 (所有者なしなら空)
func (w *Word) OwnerName() string {
	if w.User == nil {
		return ""
	}
	return w.User.Username
}

// 単語追加フォーム
type WordForm struct {
	Word        string `form:"word" validate:"required,max=255"`
	Assoc       string `form:"assoc" validate:"required,max=255"`
	Hint        string `form:"hint" validate:"required,max=255"`
	Translation string `form:"translation" validate:"required,max=255"`
}

// 単語削除フォーム
type RemoveWordForm struct {
	WordID uint `form:"word_id"`
}

// 管理画面の単語編集フォーム (所有者はユーザー名で指定、空なら所有者なし)
type AdminWordForm struct {
	Word          string `form:"word" validate:"required,max=255"`
	Assoc         string `form:"assoc" validate:"max=255"`
	Hint          string `form:"hint" validate:"max=255"`
	Translation   string `form:"translation" validate:"max=255"`
	OwnerUsername string `form:"owner" validate:"max=255"`
}
