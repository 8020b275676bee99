// Package request разбирает и проверяет тела HTTP-запросов.
package request

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
	"github.com/magabrotheeeer/tourbooking/internal/http/response"
)

// Сообщения об ошибках разбора тела.
const (
	MsgInvalidBody = "invalid request body"
	MsgTooLarge    = "request body is too large"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode читает JSON-тело запроса в dst.
func Decode(r *http.Request, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation(MsgTooLarge, nil)
		}
		if errors.Is(err, io.EOF) {
			return apperr.Validation(MsgInvalidBody, nil)
		}
		return &apperr.Error{Kind: apperr.KindValidation, Message: MsgInvalidBody, Err: err}
	}
	return nil
}

// Validate проверяет структуру по тегам validate.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return response.ValidationError(verrs)
		}
		return err
	}
	return nil
}

// DecodeValid читает тело запроса и проверяет его.
func DecodeValid(r *http.Request, dst any) error {
	if err := Decode(r, dst); err != nil {
		return err
	}
	return Validate(dst)
}
