package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/campushub/internal/model"
)

// InfoRepo は大学情報のリポジトリ。ジェネリックCRUDに自然キー検索を追加する。
type InfoRepo struct {
	*Generic[model.InfoEntry]
	db DBTX
}

// NewInfoRepo はInfoRepoを生成する。
func NewInfoRepo(db DBTX) *InfoRepo {
	return &InfoRepo{
		Generic: NewGeneric[model.InfoEntry](db, infoMapper{}),
		db:      db,
	}
}

// WithTx はこのリポジトリをトランザクションに束ねた複製を返す。
func (r *InfoRepo) WithTx(tx DBTX) *InfoRepo {
	return &InfoRepo{
		Generic: NewGeneric[model.InfoEntry](tx, infoMapper{}),
		db:      tx,
	}
}

// FindByKey は指定キーのエントリを返す。見つからない場合は (nil, nil)。
// 存在有無で分岐する上書き保存のため、不存在をエラーにしない。
func (r *InfoRepo) FindByKey(ctx context.Context, key string) (*model.InfoEntry, error) {
	mapper := infoMapper{}
	query := fmt.Sprintf(
		"SELECT id, key, title, content, address, phone, email, updated_at FROM %s WHERE key = $1",
		mapper.Table(),
	)

	entry, err := mapper.Scan(r.db.QueryRowContext(ctx, query, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, mapper.Table(), mapper.Field)
	}

	return entry, nil
}
