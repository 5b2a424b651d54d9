package model

import "time"

// Account はポータルの利用者アカウントを表す。
// シードデータとして投入され、このコアからは読み取り専用。
type Account struct {
	ID          int64
	Name        string
	Email       string
	Secret      string
	ProfileID   int64
	ProfileName string
}

// Principal はアカウントから認証済みプリンシパルを導出する。
func (a *Account) Principal() Principal {
	return Principal{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
		Role:  RoleFromProfile(a.ProfileName),
	}
}

// Session は管理コンソールのログインセッションを表す。
// IDは暗号的に推測不能な不透明文字列。プリンシパルのスナップショットを保持し、
// 共有のsessionsテーブルに永続化されるため、プロセス再起動・複数レプリカでも有効。
type Session struct {
	ID        string
	AccountID int64
	Name      string
	Email     string
	Role      Role
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Principal はセッションのスナップショットからプリンシパルを復元する。
func (s *Session) Principal() Principal {
	return Principal{
		ID:    s.AccountID,
		Name:  s.Name,
		Email: s.Email,
		Role:  s.Role,
	}
}
