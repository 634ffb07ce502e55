package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/hitoshi/ems/internal/model"
)

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 1 << 20

// decodeObject はJSONオブジェクトのボディをdstに読み込み、含まれていたキーを名前順で返す。
// 値はキーごとにデコードし、型が合わないキーはフィールド単位のバリデーションエラーにまとめる。
// dstに存在しないキーも返り値には含める（許可リスト判定のため）。
func decodeObject(w http.ResponseWriter, r *http.Request, dst any) ([]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, model.NewFieldError("body", "Request body is too large")
		}
		return nil, model.NewFieldError("body", "Request body must be a JSON object")
	}
	if raw == nil {
		return nil, model.NewFieldError("body", "Request body must be a JSON object")
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fields []model.FieldError
	for _, k := range keys {
		one, err := json.Marshal(map[string]json.RawMessage{k: raw[k]})
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(one, dst); err != nil {
			fields = append(fields, model.FieldError{Field: k, Message: invalidValueMessage(k, err)})
		}
	}
	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}
	return keys, nil
}

func invalidValueMessage(field string, err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return field + " must be of type " + typeErr.Type.String()
	}
	return field + " is invalid"
}
