package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
)

// Зарезервированные параметры управления выборкой.
const (
	ParamPage   = "page"
	ParamSort   = "sort"
	ParamLimit  = "limit"
	ParamFields = "fields"
)

var reserved = map[string]struct{}{
	ParamPage:   {},
	ParamSort:   {},
	ParamLimit:  {},
	ParamFields: {},
}

// IsReserved сообщает, что ключ управляет выборкой, а не фильтрует её.
func IsReserved(key string) bool {
	_, ok := reserved[key]
	return ok
}

// Condition условие фильтра field op value.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// SortField поле сортировки и направление.
type SortField struct {
	Field string
	Desc  bool
}

// Projection — набор полей ответа. Exclude=true означает «все публичные, кроме Fields».
type Projection struct {
	Fields  []string
	Exclude bool
}

// Limits — размер страницы по умолчанию и верхняя граница limit.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultLimits используются, если настройки не заданы.
var DefaultLimits = Limits{DefaultLimit: 100, MaxLimit: 1000}

// Spec — типизированная спецификация выборки.
// Page и Limit равны нулю, пока пагинация не запрошена.
type Spec struct {
	Filters    []Condition
	Sort       []SortField
	Projection Projection
	Page       int
	Limit      int
}

// Skip возвращает смещение первой записи страницы.
func (s Spec) Skip() int {
	if s.Page < 1 || s.Limit < 1 {
		return 0
	}
	return (s.Page - 1) * s.Limit
}

// Parse строит полную спецификацию из параметров запроса.
func Parse(values url.Values, schema *Schema, limits Limits) (Spec, error) {
	return New(nil, schema, values, limits).Filter().Sort().LimitFields().Paginate().Spec()
}

// parseFilters превращает незарезервированные ключи в условия.
// Ключ вида field[op] задаёт оператор, иначе используется равенство.
// Повторяющиеся ключи дают несколько условий, объединённых через AND.
func parseFilters(values url.Values, schema *Schema) ([]Condition, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		if !IsReserved(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var conds []Condition
	for _, key := range keys {
		field, op, err := splitFilterKey(key)
		if err != nil {
			return nil, err
		}
		col, ok := schema.Public(field)
		if !ok {
			return nil, unknownField(field)
		}
		for _, raw := range values[key] {
			v, err := col.Parse(raw)
			if err != nil {
				return nil, err
			}
			conds = append(conds, Condition{Field: field, Op: op, Value: v})
		}
	}
	return conds, nil
}

func splitFilterKey(key string) (string, Op, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq, nil
	}
	if open == 0 || !strings.HasSuffix(key, "]") {
		return "", "", apperr.Validation(fmt.Sprintf("malformed filter %q", key), nil)
	}
	op, err := ParseOp(key[open+1 : len(key)-1])
	if err != nil {
		return "", "", err
	}
	return key[:open], op, nil
}

func parseSort(raw string, schema *Schema) ([]SortField, error) {
	if raw == "" {
		return append([]SortField(nil), schema.DefaultSort...), nil
	}
	var out []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sf := SortField{Field: part}
		if strings.HasPrefix(part, "-") {
			sf = SortField{Field: part[1:], Desc: true}
		}
		if _, ok := schema.Public(sf.Field); !ok {
			return nil, unknownField(sf.Field)
		}
		out = append(out, sf)
	}
	if len(out) == 0 {
		return append([]SortField(nil), schema.DefaultSort...), nil
	}
	return out, nil
}

// withTiebreak дописывает id, чтобы порядок страниц был детерминированным.
func withTiebreak(fields []SortField) []SortField {
	for _, f := range fields {
		if f.Field == IDField {
			return fields
		}
	}
	return append(fields, SortField{Field: IDField})
}

func parseProjection(raw string, schema *Schema) (Projection, error) {
	var p Projection
	if raw == "" {
		return p, nil
	}
	seen := make(map[string]struct{})
	first := true
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		exclude := strings.HasPrefix(part, "-")
		if exclude {
			part = part[1:]
		}
		if first {
			p.Exclude = exclude
			first = false
		} else if exclude != p.Exclude {
			return Projection{}, apperr.Validation("cannot mix field inclusion and exclusion", nil)
		}
		if _, ok := schema.Column(part); !ok {
			return Projection{}, unknownField(part)
		}
		if schema.IsInternal(part) {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		p.Fields = append(p.Fields, part)
	}
	return p, nil
}

// resolve возвращает итоговый список полей ответа; id присутствует всегда.
func (p Projection) resolve(schema *Schema) []string {
	if len(p.Fields) == 0 {
		return schema.PublicFields()
	}
	listed := make(map[string]struct{}, len(p.Fields))
	for _, f := range p.Fields {
		listed[f] = struct{}{}
	}
	var out []string
	for _, f := range schema.PublicFields() {
		_, in := listed[f]
		if f == IDField || in != p.Exclude {
			out = append(out, f)
		}
	}
	return out
}

func parsePositive(values url.Values, key string, def int) (int, error) {
	raw := lastValue(values, key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperr.Validation(fmt.Sprintf("%s must be a positive integer", key), map[string]string{key: "must be a positive integer"})
	}
	return n, nil
}

// lastValue возвращает последнее значение параметра: при повторе управляющего
// ключа действует последнее вхождение.
func lastValue(values url.Values, key string) string {
	vs := values[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}
