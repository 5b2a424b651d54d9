package model

// Role はアカウントの権限レベルを表す。userとadminの2値のみ。
type Role string

const (
	// RoleUser は一般ユーザーを表す。
	RoleUser Role = "user"
	// RoleAdmin は管理者を表す。コンテンツの作成・更新・削除が可能。
	RoleAdmin Role = "admin"
)

// AdminProfileName は管理者ロールにマッピングされるプロファイル名。
// profilesテーブルでこの名前を持つプロファイルのみがadminになる。
const AdminProfileName = "administrator"

// IsAdmin はこのロールが管理者かどうかを返す。
// 権限チェックは必ずこの述語を経由し、呼び出し側でプロファイルIDを比較しない。
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// RoleFromProfile はプロファイル名を粗粒度ロールにマッピングする。
// 管理者プロファイルのみがadminになり、それ以外はすべてuser。
func RoleFromProfile(profileName string) Role {
	if profileName == AdminProfileName {
		return RoleAdmin
	}
	return RoleUser
}

// Principal は認証済みリクエストに付与される不変のアイデンティティ。
// 認証時にAccountから導出され、永続化はされない。
// ゲートミドルウェアが一度だけ構築し、コンテキスト経由で下流に渡す。
type Principal struct {
	ID    int64
	Name  string
	Email string
	Role  Role
}
