// Package auth は認証（資格情報検証・アクセストークン・セッション）を提供する。
package auth

import "golang.org/x/crypto/bcrypt"

// SecretComparer はパスワード照合方式の抽象。
// 照合方式は認証サービスに埋め込まず、この差し替え可能なコンポーネントの背後に置く。
type SecretComparer interface {
	// Compare は保存済みシークレットと入力パスワードを照合する。
	Compare(stored, supplied string) bool
}

// PlaintextComparer は平文比較。シードデータとの互換のためのデフォルト方式。
type PlaintextComparer struct{}

// Compare は定数時間比較ではなく単純比較を行う。
// 平文方式はデモ・シード互換運用専用であり、本番はbcryptを選択すること。
func (PlaintextComparer) Compare(stored, supplied string) bool {
	return stored == supplied
}

// BcryptComparer はbcryptハッシュとの照合を行う。
type BcryptComparer struct{}

// Compare はbcryptハッシュ照合を行う。
func (BcryptComparer) Compare(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}
