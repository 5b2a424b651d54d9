// Package repository はデータ永続化層を提供する。
// エンティティ非依存のジェネリックCRUDと、ストア例外から型付きエラーへの
// 変換はこのパッケージだけが行う。
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/hitoshi/campushub/internal/model"
)

// DBTX は*sql.DBと*sql.Txの共通インターフェース。
// リポジトリをトランザクションスコープに束ねるために使用する。
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RowScanner は*sql.Rowと*sql.Rowsの共通スキャンインターフェース。
type RowScanner interface {
	Scan(dest ...any) error
}

// Mapper はエンティティとテーブル行の対応を定義する。
// ジェネリックリポジトリはこの定義のみに依存し、エンティティ固有のSQLを持たない。
type Mapper[T any] interface {
	// Table はテーブル名を返す。
	Table() string
	// EntityName はエラーメッセージ用の表示名を返す。
	EntityName() string
	// Columns はid以外のカラム名を返す。
	Columns() []string
	// Values はColumnsと同順のカラム値を返す。
	Values(e *T) []any
	// Scan はid、Columnsの順で1行をスキャンしエンティティを返す。
	Scan(row RowScanner) (*T, error)
	// Field は制約名に対応するAPIフィールド名を返す。
	// 対応が無い場合は空文字列を返し、制約名からの規約ベース導出にフォールバックする。
	Field(constraint string) string
}

// Filter はカラム名→値の等値フィルタ。
type Filter map[string]any

// ListOptions は一覧取得のソート・件数オプション。
type ListOptions struct {
	OrderBy string // ソートカラム（Mapperのカラムに含まれること）
	Desc    bool
	Limit   int // 0は無制限
}

// Page はページネーション結果を表す。
type Page[T any] struct {
	Data     []*T
	Total    int
	Page     int
	PageSize int
	// PageCount = ceil(Total / PageSize)
	PageCount int
}

// Generic は1テーブルに対するエンティティ非依存のCRUDリポジトリ。
// すべての操作はコンテキストを受け取り、ドライバエラーを型付きエラーに変換して返す。
type Generic[T any] struct {
	db     DBTX
	mapper Mapper[T]
}

// NewGeneric はジェネリックリポジトリを生成する。
func NewGeneric[T any](db DBTX, mapper Mapper[T]) *Generic[T] {
	return &Generic[T]{db: db, mapper: mapper}
}

// WithTx はこのリポジトリをトランザクションに束ねた複製を返す。
// 元のリポジトリは変更されない。
func (r *Generic[T]) WithTx(tx *sql.Tx) *Generic[T] {
	return &Generic[T]{db: tx, mapper: r.mapper}
}

// selectClause はSELECT句のカラムリスト（id先頭）を返す。
func (r *Generic[T]) selectClause() string {
	return "id, " + strings.Join(r.mapper.Columns(), ", ")
}

// validColumn はカラム名がマッパー定義に含まれるか検証する。
// フィルタ・ソートキーはSQLに直接連結されるため、未知のカラムは拒否する。
func (r *Generic[T]) validColumn(name string) bool {
	if name == "id" {
		return true
	}
	for _, c := range r.mapper.Columns() {
		if c == name {
			return true
		}
	}
	return false
}

// buildWhere はフィルタからWHERE句とバインド値を構築する。
// 決定的な出力のためカラム名でソートする。
func (r *Generic[T]) buildWhere(filter Filter, argOffset int) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	cols := make([]string, 0, len(filter))
	for col := range filter {
		if !r.validColumn(col) {
			return "", nil, model.NewValidationError(col, fmt.Sprintf("不明なフィルタカラムです: %s", col))
		}
		cols = append(cols, col)
	}
	slices.Sort(cols)

	conds := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for i, col := range cols {
		conds = append(conds, fmt.Sprintf("%s = $%d", col, argOffset+i+1))
		args = append(args, filter[col])
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// buildOrder はListOptionsからORDER BY句とLIMIT句を構築する。
func (r *Generic[T]) buildOrder(opts ListOptions) (string, error) {
	var b strings.Builder

	if opts.OrderBy != "" {
		if !r.validColumn(opts.OrderBy) {
			return "", model.NewValidationError(opts.OrderBy, fmt.Sprintf("不明なソートカラムです: %s", opts.OrderBy))
		}
		b.WriteString(" ORDER BY " + opts.OrderBy)
		if opts.Desc {
			b.WriteString(" DESC")
		}
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", opts.Limit)
	}

	return b.String(), nil
}

// FindAll は全レコードを取得する。
func (r *Generic[T]) FindAll(ctx context.Context, opts ListOptions) ([]*T, error) {
	return r.FindWhere(ctx, nil, opts)
}

// FindWhere は等値フィルタに一致するレコードを取得する。
func (r *Generic[T]) FindWhere(ctx context.Context, filter Filter, opts ListOptions) ([]*T, error) {
	where, args, err := r.buildWhere(filter, 0)
	if err != nil {
		return nil, err
	}
	order, err := r.buildOrder(opts)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s%s", r.selectClause(), r.mapper.Table(), where, order)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.translate(err)
	}
	defer rows.Close()

	var result []*T
	for rows.Next() {
		entity, err := r.mapper.Scan(rows)
		if err != nil {
			return nil, r.translate(err)
		}
		result = append(result, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, r.translate(err)
	}

	return result, nil
}

// FindByID は指定IDのレコードを取得する。見つからない場合はNotFoundエラーを返す。
func (r *Generic[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", r.selectClause(), r.mapper.Table())

	entity, err := r.mapper.Scan(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(r.mapper.EntityName(), id)
	}
	if err != nil {
		return nil, r.translate(err)
	}

	return entity, nil
}

// Create は新規レコードを作成し、採番済みIDを含む作成結果を返す。
// 一意制約違反はConflict、外部キー違反はReferenceに変換される。
func (r *Generic[T]) Create(ctx context.Context, entity *T) (*T, error) {
	cols := r.mapper.Columns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		r.mapper.Table(),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		r.selectClause(),
	)

	created, err := r.mapper.Scan(r.db.QueryRowContext(ctx, query, r.mapper.Values(entity)...))
	if err != nil {
		return nil, r.translate(err)
	}

	return created, nil
}

// Update は指定IDのレコードに部分更新を適用する。
// 先にIDで存在確認を行い（NotFoundを伝播）、changesに含まれるカラムのみを更新する。
func (r *Generic[T]) Update(ctx context.Context, id int64, changes map[string]any) (*T, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return r.FindByID(ctx, id)
	}

	cols := make([]string, 0, len(changes))
	for col := range changes {
		if !r.validColumn(col) || col == "id" {
			return nil, model.NewValidationError(col, fmt.Sprintf("更新できないカラムです: %s", col))
		}
		cols = append(cols, col)
	}
	slices.Sort(cols)

	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, changes[col])
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		r.mapper.Table(),
		strings.Join(sets, ", "),
		len(cols)+1,
		r.selectClause(),
	)

	updated, err := r.mapper.Scan(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(r.mapper.EntityName(), id)
	}
	if err != nil {
		return nil, r.translate(err)
	}

	return updated, nil
}

// Delete は指定IDのレコードを削除する。存在しない場合はNotFoundエラーを返す。
func (r *Generic[T]) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.mapper.Table()), id)
	if err != nil {
		return r.translate(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return r.translate(err)
	}
	if affected == 0 {
		return model.NewNotFoundError(r.mapper.EntityName(), id)
	}

	return nil
}

// Count はフィルタに一致するレコード数を返す。
func (r *Generic[T]) Count(ctx context.Context, filter Filter) (int, error) {
	where, args, err := r.buildWhere(filter, 0)
	if err != nil {
		return 0, err
	}

	var count int
	query := fmt.Sprintf("SELECT count(*) FROM %s%s", r.mapper.Table(), where)
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, r.translate(err)
	}

	return count, nil
}

// Paginate は1始まりのページ番号でページネーション取得を行う。
// pageSize <= 0 および page < 1 はクエリ実行前に検証エラーとして拒否する。
func (r *Generic[T]) Paginate(ctx context.Context, page, pageSize int, filter Filter, opts ListOptions) (*Page[T], error) {
	if pageSize <= 0 {
		return nil, model.NewValidationError("pageSize", "ページサイズは1以上を指定してください。")
	}
	if page < 1 {
		return nil, model.NewValidationError("page", "ページ番号は1以上を指定してください。")
	}

	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	where, args, err := r.buildWhere(filter, 0)
	if err != nil {
		return nil, err
	}
	order, err := r.buildOrder(ListOptions{OrderBy: opts.OrderBy, Desc: opts.Desc})
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT %d OFFSET %d",
		r.selectClause(), r.mapper.Table(), where, order, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.translate(err)
	}
	defer rows.Close()

	var data []*T
	for rows.Next() {
		entity, err := r.mapper.Scan(rows)
		if err != nil {
			return nil, r.translate(err)
		}
		data = append(data, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, r.translate(err)
	}

	return &Page[T]{
		Data:      data,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
		PageCount: pageCount(total, pageSize),
	}, nil
}

// translate はドライバエラーをこのエンティティの型付きエラーに変換する。
func (r *Generic[T]) translate(err error) error {
	return translateError(err, r.mapper.Table(), r.mapper.Field)
}

// pageCount は総件数とページサイズから総ページ数を計算する。
func pageCount(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// RunInTransaction はトランザクションを開始してworkを実行し、
// 成功時にコミット、失敗時にロールバックしてエラーをそのまま返す。
// workからの部分書き込みが失敗後に残ることはない。
func RunInTransaction(ctx context.Context, db *sql.DB, work func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.NewInternalError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := work(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return model.NewInternalError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}
