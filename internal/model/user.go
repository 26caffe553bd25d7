// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限区分を表す。
type Role string

const (
	// RoleUser は一般ユーザー。
	RoleUser Role = "user"
	// RoleAdmin はコンテンツ管理が可能な管理者。
	RoleAdmin Role = "admin"
)

// User はサイト利用ユーザーを表す。
// OpenIDは外部IdPが発行する安定した識別子で、セッション解決の唯一のキーとなる。
type User struct {
	ID           int64
	OpenID       string
	Name         string
	Email        string
	LoginMethod  string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastSignedIn time.Time
}

// IsAdmin は管理者権限を持つかどうかを返す。
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserUpsert はログイン時のユーザーUPSERT入力を表す。
// nilフィールドは「指定なし」を意味し、既存行の値を変更しない部分更新となる。
type UserUpsert struct {
	OpenID       string
	Name         *string
	Email        *string
	LoginMethod  *string
	Role         *Role
	LastSignedIn *time.Time
}
