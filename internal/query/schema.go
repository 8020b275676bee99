// Package query переводит параметры строки запроса в типизированную спецификацию
// выборки (фильтр, сортировка, проекция, пагинация) и выполняет её в PostgreSQL.
package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
)

// Op — оператор сравнения в фильтре.
type Op string

// Поддерживаемые операторы. В строке запроса записываются как field[op]=value.
const (
	OpEq  Op = "eq"
	OpNe  Op = "ne"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

var sqlOps = map[Op]string{
	OpEq:  "=",
	OpNe:  "<>",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// ParseOp разбирает оператор; неизвестные операторы отклоняются.
func ParseOp(s string) (Op, error) {
	op := Op(s)
	if _, ok := sqlOps[op]; !ok {
		return "", apperr.Validation(fmt.Sprintf("unknown filter operator %q", s), nil)
	}
	return op, nil
}

// SQL возвращает оператор в синтаксисе PostgreSQL.
func (o Op) SQL() string {
	return sqlOps[o]
}

// ColumnType определяет, как разбирать значения фильтра для колонки.
type ColumnType int

const (
	String ColumnType = iota
	Int
	Float
	Bool
	Time
)

// Column связывает имя поля в API с выражением SQL.
type Column struct {
	Field string
	Expr  string
	Type  ColumnType
}

// Parse приводит строковое значение из запроса к типу колонки.
func (c Column) Parse(raw string) (any, error) {
	var (
		v   any
		err error
	)
	switch c.Type {
	case Int:
		v, err = strconv.Atoi(raw)
	case Float:
		v, err = strconv.ParseFloat(raw, 64)
	case Bool:
		v, err = strconv.ParseBool(raw)
	case Time:
		v, err = parseTime(raw)
	default:
		v = raw
	}
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("invalid %s: %s", c.Field, raw), map[string]string{c.Field: "invalid value"})
	}
	return v, nil
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

// Schema описывает коллекцию, доступную построителю запросов.
// Internal-поля можно использовать в Where, но клиент не может их
// фильтровать, сортировать или запрашивать в проекции.
type Schema struct {
	Table       string
	Columns     []Column
	Internal    []string
	DefaultSort []SortField

	byField  map[string]Column
	internal map[string]struct{}
}

// NewSchema собирает схему и индексирует колонки. Колонка id обязательна.
func NewSchema(table string, columns []Column, internal []string, defaultSort ...SortField) *Schema {
	s := &Schema{
		Table:       table,
		Columns:     columns,
		Internal:    internal,
		DefaultSort: defaultSort,
		byField:     make(map[string]Column, len(columns)),
		internal:    make(map[string]struct{}, len(internal)),
	}
	for _, c := range columns {
		s.byField[c.Field] = c
	}
	for _, f := range internal {
		s.internal[f] = struct{}{}
	}
	if _, ok := s.byField[IDField]; !ok {
		panic("query: schema " + table + " has no id column")
	}
	return s
}

// IDField — имя поля идентификатора во всех коллекциях.
const IDField = "id"

// Column ищет колонку по имени поля, включая служебные.
func (s *Schema) Column(field string) (Column, bool) {
	c, ok := s.byField[field]
	return c, ok
}

// Public ищет колонку, доступную клиенту.
func (s *Schema) Public(field string) (Column, bool) {
	if s.IsInternal(field) {
		return Column{}, false
	}
	return s.Column(field)
}

// IsInternal сообщает, что поле служебное.
func (s *Schema) IsInternal(field string) bool {
	_, ok := s.internal[field]
	return ok
}

// PublicFields возвращает поля проекции по умолчанию в порядке схемы.
func (s *Schema) PublicFields() []string {
	fields := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if !s.IsInternal(c.Field) {
			fields = append(fields, c.Field)
		}
	}
	return fields
}

func unknownField(field string) error {
	return apperr.Validation("unknown field: "+strings.TrimSpace(field), map[string]string{field: "unknown field"})
}
