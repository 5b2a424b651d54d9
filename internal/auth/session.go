package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hitoshi/campushub/internal/model"
)

// SessionStore はセッションの永続化ストアのインターフェース。
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// SessionManager はサーバー側セッションのライフサイクルを管理する。
// セッションIDは暗号学的乱数から生成し、プリンシパルのスナップショットを
// ストアに保持する。失効はストアからの削除で即時に反映される。
type SessionManager struct {
	store  SessionStore
	maxAge time.Duration
	now    func() time.Time
}

// NewSessionManager はSessionManagerを生成する。
func NewSessionManager(store SessionStore, maxAge time.Duration) *SessionManager {
	return &SessionManager{
		store:  store,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Create は認証済みプリンシパルの新規セッションを発行する。
func (m *SessionManager) Create(ctx context.Context, principal model.Principal) (*model.Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := m.now()
	session := &model.Session{
		ID:        id,
		AccountID: principal.ID,
		Name:      principal.Name,
		Email:     principal.Email,
		Role:      principal.Role,
		ExpiresAt: now.Add(m.maxAge),
		CreatedAt: now,
	}

	if err := m.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return session, nil
}

// Resolve はセッションIDからプリンシパルを復元する。
// 不存在・期限切れの場合はSessionNotFoundを返す。
func (m *SessionManager) Resolve(ctx context.Context, id string) (*model.Principal, error) {
	if id == "" {
		return nil, model.NewSessionNotFoundError()
	}

	session, err := m.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewSessionNotFoundError()
	}

	principal := session.Principal()
	return &principal, nil
}

// Destroy はセッションを破棄する。存在しないIDでもエラーにしない。
func (m *SessionManager) Destroy(ctx context.Context, id string) error {
	if err := m.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// generateSessionID は256ビットの暗号学的乱数をhexエンコードしたIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
