package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/campushub/internal/model"
)

// PostgreSQLエラーコード
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateError はドライバの生エラーを型付きエラーに変換する。
// 変換はリポジトリ層でのみ行い、サービス層は型付きエラーを再ラップしない。
// fieldFnは制約名からAPIフィールド名への対応（空文字列で規約ベース導出に委譲）。
func translateError(err error, table string, fieldFn func(constraint string) string) error {
	if err == nil {
		return nil
	}
	// すでに変換済みのエラーはそのまま伝播する
	if appErr, ok := model.AsAppError(err); ok {
		return appErr
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		field := fieldFn(pqErr.Constraint)
		if field == "" {
			field = fieldFromConstraint(table, pqErr.Constraint, pqErr.Column)
		}

		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return model.NewConflictError(field, err)
		case pgForeignKeyViolation:
			return model.NewReferenceError(field, err)
		}
	}

	return model.NewInternalError(err)
}

// fieldFromConstraint はPostgreSQLのデフォルト制約名からフィールド名を導出する。
// 規約: <table>_<column>_key（一意制約）、<table>_<column>_fkey（外部キー）。
func fieldFromConstraint(table, constraint, column string) string {
	if column != "" {
		return column
	}

	name := strings.TrimPrefix(constraint, table+"_")
	name = strings.TrimSuffix(name, "_fkey")
	name = strings.TrimSuffix(name, "_key")
	if name == "" || name == constraint {
		return constraint
	}
	return name
}
