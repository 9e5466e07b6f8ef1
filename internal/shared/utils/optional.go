package utils

import (
	"bytes"
	"encoding/json"
)

// Optional phân biệt ba trạng thái của một field JSON:
// vắng mặt (Set=false), null (Set=true, Value=nil) và có giá trị.
// Dùng cho PATCH/PUT khi "không gửi" khác với "gửi null".
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some trả về Optional đã set với giá trị v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null trả về Optional đã set với giá trị null
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON chỉ được gọi khi key có mặt trong payload
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// IsNull true khi field được gửi với giá trị null
func (o Optional[T]) IsNull() bool {
	return o.Set && o.Value == nil
}
