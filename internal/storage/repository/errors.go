package repository

import (
	"errors"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
)

// Коды ошибок PostgreSQL, которые переводятся в ошибки клиента.
const (
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
	codeForeignKeyViolation = "23503"
	codeInvalidTextRepr     = "22P02"
)

type checkRule struct {
	field   string
	message string
}

var checkMessages = map[string]checkRule{
	"users_name_check":            {"name", "please tell us your name"},
	"users_email_check":           {"email", "please provide a valid email"},
	"users_role_check":            {"role", "role is either: user, guide, lead-guide, admin"},
	"tours_name_check":            {"name", "a tour name must have between 10 and 40 characters"},
	"tours_duration_check":        {"duration", "a tour must have a positive duration"},
	"tours_max_group_size_check":  {"maxGroupSize", "a tour must have a positive group size"},
	"tours_difficulty_check":      {"difficulty", "difficulty is either: easy, medium, difficult"},
	"tours_ratings_average_check": {"ratingsAverage", "rating must be between 1.0 and 5.0"},
	"tours_price_check":           {"price", "a tour must have a positive price"},
	"tours_price_discount_check":  {"priceDiscount", "discount price should be below regular price"},
	"reviews_review_check":        {"review", "review can not be empty"},
	"reviews_rating_check":        {"rating", "rating must be between 1 and 5"},
	"reviews_tour_id_fkey":        {"tour", "review must belong to an existing tour"},
	"reviews_user_id_fkey":        {"user", "review must belong to an existing user"},
	"reviews_tour_user_key":       {"tour", "you have already reviewed this tour"},
}

var duplicateDetail = regexp.MustCompile(`\(([^)]*)\)=\(([^)]*)\)`)

// mapError переводит ошибки драйвера в классифицированные ошибки.
// notFound задаёт сообщение для случая, когда строка не найдена.
func mapError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.Wrap(apperr.KindNotFound, notFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		if rule, ok := checkMessages[pgErr.ConstraintName]; ok {
			return apperr.Wrap(apperr.KindDuplicateKey, rule.message, err)
		}
		value := "value"
		if m := duplicateDetail.FindStringSubmatch(pgErr.Detail); m != nil {
			value = m[2]
		}
		return apperr.Wrap(apperr.KindDuplicateKey, "duplicate field value: "+value+". Please use another value!", err)
	case codeCheckViolation, codeForeignKeyViolation:
		msg, fields := "invalid input data", map[string]string(nil)
		if rule, ok := checkMessages[pgErr.ConstraintName]; ok {
			msg += ". " + rule.message
			fields = map[string]string{rule.field: rule.message}
		}
		return &apperr.Error{Kind: apperr.KindValidation, Message: msg, Fields: fields, Err: err}
	case codeNotNullViolation:
		msg := pgErr.ColumnName + " is required"
		return &apperr.Error{
			Kind:    apperr.KindValidation,
			Message: "invalid input data. " + msg,
			Fields:  map[string]string{pgErr.ColumnName: msg},
			Err:     err,
		}
	case codeInvalidTextRepr:
		return apperr.Wrap(apperr.KindValidation, "invalid id", err)
	}
	return err
}
