// internal/domain/catalog/decode.go
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errUnexpectedShape = errors.New("unexpected response shape")

// decodeList accepts a bare array, {data:[...]} or {data:{...}} holding a
// single record.
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []T{}, nil
	}

	if isArray(body) {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return []T{}, err
		}
		return items, nil
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return []T{}, err
	}

	data := bytes.TrimSpace(env.Data)
	switch {
	case isArray(data):
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return []T{}, err
		}
		return items, nil
	case isObject(data):
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return []T{}, err
		}
		return []T{item}, nil
	default:
		return []T{}, errUnexpectedShape
	}
}

// decodeOne accepts {data:{...}} or the bare record. A response carrying
// success:false reports found=false.
func decodeOne[T any](body []byte, dest *T) (bool, error) {
	body = bytes.TrimSpace(body)
	if !isObject(body) {
		return false, errUnexpectedShape
	}

	var env struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return false, err
	}
	if env.Success != nil && !*env.Success {
		return false, nil
	}

	if data := bytes.TrimSpace(env.Data); isObject(data) {
		body = data
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return false, err
	}
	return true, nil
}
