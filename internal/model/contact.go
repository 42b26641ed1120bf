package model

import "time"

// Contact は問い合わせフォームから送信された内容です。
type Contact struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Age       int       `json:"age" gorm:"not null"`
	Gender    string    `json:"gender" gorm:"size:50;not null"`
	Address   string    `json:"address" gorm:"size:500;not null"`
	Email     string    `json:"email" gorm:"size:255;not null"`
	Phone     string    `json:"phone" gorm:"size:50;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName はテーブル名を返します。
func (Contact) TableName() string {
	return "contacts"
}
