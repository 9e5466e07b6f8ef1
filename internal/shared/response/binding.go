package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BindingErrors chuyển lỗi decode JSON body thành validation.Errors để trả về
// cùng format với lỗi validation thông thường
func BindingErrors(err error) validation.Errors {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return validation.Errors{typeErr.Field: fmt.Errorf("must be a valid %s", typeErr.Type.String())}
	}

	if errors.Is(err, io.EOF) {
		return validation.Errors{"body": errors.New("request body is required")}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return validation.Errors{"body": errors.New("malformed JSON")}
	}

	return validation.Errors{"body": err}
}

// BindPartialJSON dùng cho PATCH: body rỗng được coi như {} (không đổi field nào)
func BindPartialJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
