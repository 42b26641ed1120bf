// Package model はデータベースに保存するエンティティを定義します。
package model

import "time"

// User は登録済みアカウントを表します。
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FirstName    string    `json:"fname" gorm:"column:fname;size:100;not null"`
	LastName     string    `json:"lname" gorm:"column:lname;size:100;not null"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	UserID       string    `json:"userid" gorm:"column:userid;uniqueIndex;size:255;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName はテーブル名を返します。
func (User) TableName() string {
	return "users"
}
