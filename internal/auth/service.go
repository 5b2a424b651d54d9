package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/hitoshi/campushub/internal/model"
)

// AccountFinder はアカウント検索に必要なインターフェース。
// repository.AccountRepoの部分集合として定義する。
type AccountFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
}

// Service は資格情報の検証を提供する。
// 副作用を持たない純粋な読み取りであり、トークン発行・セッション作成は
// 呼び出し側（APIログイン・コンソールログイン）が合成する。
type Service struct {
	accounts AccountFinder
	comparer SecretComparer
}

// NewService はServiceを生成する。
func NewService(accounts AccountFinder, comparer SecretComparer) *Service {
	return &Service{accounts: accounts, comparer: comparer}
}

// Authenticate は識別子とパスワードを検証し、正規化されたプリンシパルを返す。
// アカウント不存在とパスワード不一致は同一のInvalidCredentialsエラーを返し、
// アカウントの存在有無を漏らさない。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.Principal, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, model.NewValidationError("email", "メールアドレスとパスワードは必須です。")
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if !s.comparer.Compare(account.Secret, password) {
		return nil, model.NewInvalidCredentialsError()
	}

	principal := account.Principal()
	return &principal, nil
}
