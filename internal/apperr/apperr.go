// Package apperr описывает доменные ошибки приложения и их классификацию.
//
// Каждая ошибка несёт Kind, по которому единый HTTP-транслятор выбирает
// статус ответа. Нижние слои оборачивают ошибки через fmt.Errorf("%s: %w", op, err),
// поэтому Kind сохраняется при любом количестве обёрток.
package apperr

import (
	"errors"
	"fmt"
)

// Kind классифицирует ошибку.
type Kind int

const (
	// KindInternal: непредвиденная ошибка, значение по умолчанию.
	KindInternal Kind = iota
	// KindValidation: входные данные нарушают схему или правила.
	KindValidation
	// KindUnauthenticated: запрос без действующей сессии.
	KindUnauthenticated
	// KindForbidden: роль пользователя не допускает действие.
	KindForbidden
	// KindNotFound: документ не найден или деактивирован.
	KindNotFound
	// KindDuplicateKey: нарушено ограничение уникальности.
	KindDuplicateKey
	// KindInvalidToken: подпись, срок или формат токена некорректны.
	KindInvalidToken
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindDuplicateKey:
		return "duplicate_key"
	case KindInvalidToken:
		return "invalid_token"
	default:
		return "internal"
	}
}

// Error — ошибка с классификацией и безопасным для клиента сообщением.
// Fields содержит ошибки по отдельным полям (только для KindValidation).
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создаёт ошибку заданного вида.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap создаёт ошибку заданного вида, сохраняя причину.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validation возвращает ошибку валидации с подробностями по полям.
func Validation(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }

func Forbidden(msg string) *Error { return New(KindForbidden, msg) }

func NotFound(msg string) *Error { return New(KindNotFound, msg) }

func DuplicateKey(msg string) *Error { return New(KindDuplicateKey, msg) }

func InvalidToken(msg string, err error) *Error { return Wrap(KindInvalidToken, msg, err) }

func Internal(msg string, err error) *Error { return Wrap(KindInternal, msg, err) }

// As извлекает *Error из цепочки обёрток.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf возвращает вид ошибки; для посторонних ошибок KindInternal.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Is сообщает, относится ли err к виду kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
