// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーのロールを表す。
type Role string

const (
	// RoleAdmin はすべての操作が可能な管理者ロール。
	RoleAdmin Role = "admin"
	// RoleManager は社員レコードの参照・作成・更新が可能なロール。
	RoleManager Role = "manager"
	// RoleEmployee は自分の社員レコードのみ参照・更新できるロール。
	RoleEmployee Role = "employee"
)

// Valid はロールが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	default:
		return false
	}
}

// User はログイン可能なアカウント（Identity）を表す。
// ロールは作成後に変更されない。
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary は社員レコードに埋め込むユーザー情報の抜粋。
type UserSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	Role      Role   `json:"role,omitempty"`
}

// Caller はリクエストを発行した認証済みユーザーを表す。
// 認証ミドルウェアがトークンから復元する。
type Caller struct {
	UserID string
	Role   Role
}
