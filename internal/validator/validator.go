package validator

import (
	"fmt"
	"net/http"
	"strings"

	"marketplace/internal/usecase"

	"github.com/go-playground/validator/v10"
)

// echoのValidatorとして使う（c.Validate）
type EchoValidator struct {
	v *validator.Validate
}

func New() *EchoValidator {
	return &EchoValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (ev *EchoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		return toInvalidInput(err)
	}
	return nil
}

// 400。どの項目がダメだったかだけをメッセージにする
func toInvalidInput(err error) error {
	msg := "invalid input"
	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", toSnake(fe.Field()), fe.Tag()))
		}
		msg += ": " + strings.Join(fields, ", ")
	}
	return &usecase.HTTPError{Status: http.StatusBadRequest, Message: msg, Err: ErrInvalidInput}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
