package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/campushub/internal/model"
)

// ErrorBody はAPIエラーレスポンスの統一フォーマット。
// StatusはHTTPステータスコードの複製で、ボディだけを見るクライアント向け。
type ErrorBody struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorEnvelope はエラーレスポンスの外側の封筒。
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// WriteError はエラーを統一フォーマットのJSONレスポンスに変換して書き込む。
// AppError以外のエラーは詳細をログのみに記録し、一般的な500メッセージを返す。
func WriteError(w http.ResponseWriter, err error) {
	appErr, ok := model.AsAppError(err)
	if !ok {
		slog.Error("unexpected error",
			slog.String("error", err.Error()),
		)
		appErr = model.NewInternalError(err)
	}
	if appErr.Kind == model.KindInternal && appErr.Unwrap() != nil {
		slog.Error("internal error",
			slog.String("error", appErr.Unwrap().Error()),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus())
	json.NewEncoder(w).Encode(ErrorEnvelope{
		Error: ErrorBody{
			Status:  appErr.HTTPStatus(),
			Code:    string(appErr.Kind),
			Message: appErr.Message,
			Field:   appErr.Field,
		},
	})
}
