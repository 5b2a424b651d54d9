package repository

import (
	"context"

	"github.com/lib/pq"

	"github.com/hitoshi/campushub/internal/model"
)

// TagRepo はタグのリポジトリ。ジェネリックCRUDに集合取得を追加する。
type TagRepo struct {
	*Generic[model.Tag]
	db DBTX
}

// NewTagRepo はTagRepoを生成する。
func NewTagRepo(db DBTX) *TagRepo {
	return &TagRepo{
		Generic: NewGeneric[model.Tag](db, tagMapper{}),
		db:      db,
	}
}

// WithTx はこのリポジトリをトランザクションに束ねた複製を返す。
func (r *TagRepo) WithTx(tx DBTX) *TagRepo {
	return &TagRepo{
		Generic: NewGeneric[model.Tag](tx, tagMapper{}),
		db:      tx,
	}
}

// FindByIDs は指定ID集合に存在するタグを返す。
// 存在しないIDは結果に含まれない（存在検証は呼び出し側で行う）。
func (r *TagRepo) FindByIDs(ctx context.Context, ids []int64) ([]*model.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM tags WHERE id = ANY($1) ORDER BY name`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, translateError(err, "tags", tagMapper{}.Field)
	}
	defer rows.Close()

	var tags []*model.Tag
	for rows.Next() {
		t := &model.Tag{}
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, translateError(err, "tags", tagMapper{}.Field)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "tags", tagMapper{}.Field)
	}

	return tags, nil
}
