package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/campushub/internal/model"
)

// AccountRepo はアカウントの読み取り専用リポジトリ。
// アカウントはシードデータとして投入され、このコアからは作成・更新しない。
type AccountRepo struct {
	db DBTX
}

// NewAccountRepo はAccountRepoを生成する。
func NewAccountRepo(db DBTX) *AccountRepo {
	return &AccountRepo{db: db}
}

// FindByEmail はメールアドレスでアカウントを検索する。
// 比較は小文字正規化で行い、プロファイル名を結合して取得する。
// 見つからない場合はnilを返す（存在有無を漏らさないため、エラーにしない）。
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx,
		`SELECT a.id, a.name, a.email, a.secret, a.profile_id, p.name
		 FROM accounts a
		 JOIN profiles p ON p.id = a.profile_id
		 WHERE lower(a.email) = lower($1)`,
		email,
	).Scan(&account.ID, &account.Name, &account.Email, &account.Secret, &account.ProfileID, &account.ProfileName)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}

	return account, nil
}

// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
func (r *AccountRepo) FindByID(ctx context.Context, id int64) (*model.Account, error) {
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx,
		`SELECT a.id, a.name, a.email, a.secret, a.profile_id, p.name
		 FROM accounts a
		 JOIN profiles p ON p.id = a.profile_id
		 WHERE a.id = $1`,
		id,
	).Scan(&account.ID, &account.Name, &account.Email, &account.Secret, &account.ProfileID, &account.ProfileName)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by ID: %w", err)
	}

	return account, nil
}
