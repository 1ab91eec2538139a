package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator реализует echo.Validator поверх go-playground/validator.
// Подключается в main через e.Validator; обработчики вызывают c.Validate.
type RequestValidator struct {
	validate *validator.Validate
}

// Compile-time check
var _ echo.Validator = (*RequestValidator)(nil)

// NewRequestValidator создает валидатор тел запросов.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate проверяет структуру по ее validate-тегам.
func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
