package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/campushub/internal/model"
)

// SessionRepo はPostgreSQLを使用したセッションリポジトリ。
// 共有テーブルに永続化するため、プロセス再起動後・複数レプリカ間でも
// セッションの解決が可能。
type SessionRepo struct {
	db DBTX
}

// NewSessionRepo はSessionRepoを生成する。
func NewSessionRepo(db DBTX) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create はセッションを作成する。
func (r *SessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, account_id, name, email, role, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		session.ID, session.AccountID, session.Name, session.Email,
		string(session.Role), session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。
// 不存在・期限切れの場合はnilを返す。TTLの更新（スライディング延長）は行わない。
func (r *SessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session := &model.Session{}
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, name, email, role, expires_at, created_at
		 FROM sessions
		 WHERE id = $1 AND expires_at > now()`,
		id,
	).Scan(&session.ID, &session.AccountID, &session.Name, &session.Email,
		&role, &session.ExpiresAt, &session.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	session.Role = model.Role(role)
	return session, nil
}

// DeleteByID は指定IDのセッションを削除する。
// 冪等であり、すでに存在しないセッションの削除はエラーにしない。
func (r *SessionRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れセッションをまとめて削除し、削除件数を返す。
// サーバー起動時のハウスキーピングで使用する。
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}
