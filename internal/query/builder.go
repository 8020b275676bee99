package query

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Querier — часть пула соединений, нужная для выполнения выборки.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Document — строка результата, ключи совпадают с именами полей API.
type Document map[string]any

// Builder последовательно накапливает спецификацию выборки.
// Каждая стадия возвращает тот же построитель; ошибка разбора запоминается
// и возвращается при выполнении. Запрос к базе уходит только в Find.
type Builder struct {
	db     Querier
	schema *Schema
	values url.Values
	limits Limits

	base  []Condition
	spec  Spec
	err   error
	paged bool
}

// New создаёт построитель над коллекцией schema и параметрами values.
func New(db Querier, schema *Schema, values url.Values, limits Limits) *Builder {
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = DefaultLimits.DefaultLimit
	}
	if limits.MaxLimit < limits.DefaultLimit {
		limits.MaxLimit = max(DefaultLimits.MaxLimit, limits.DefaultLimit)
	}
	return &Builder{db: db, schema: schema, values: values, limits: limits}
}

// Where добавляет обязательное условие равенства, заданное сервером.
// В отличие от Filter, допускает служебные поля.
func (b *Builder) Where(field string, value any) *Builder {
	if b.err != nil {
		return b
	}
	if _, ok := b.schema.Column(field); !ok {
		b.err = fmt.Errorf("query.Where: %w", unknownField(field))
		return b
	}
	b.base = append(b.base, Condition{Field: field, Op: OpEq, Value: value})
	return b
}

// Filter разбирает условия из незарезервированных параметров.
func (b *Builder) Filter() *Builder {
	if b.err != nil {
		return b
	}
	b.spec.Filters, b.err = parseFilters(b.values, b.schema)
	return b
}

// Sort разбирает параметр sort; без него используется порядок схемы по умолчанию.
func (b *Builder) Sort() *Builder {
	if b.err != nil {
		return b
	}
	var fields []SortField
	fields, b.err = parseSort(lastValue(b.values, ParamSort), b.schema)
	if b.err == nil {
		b.spec.Sort = withTiebreak(fields)
	}
	return b
}

// LimitFields разбирает параметр fields.
func (b *Builder) LimitFields() *Builder {
	if b.err != nil {
		return b
	}
	b.spec.Projection, b.err = parseProjection(lastValue(b.values, ParamFields), b.schema)
	return b
}

// Paginate разбирает page и limit. Limit больше максимального урезается.
func (b *Builder) Paginate() *Builder {
	if b.err != nil {
		return b
	}
	page, err := parsePositive(b.values, ParamPage, 1)
	if err != nil {
		b.err = err
		return b
	}
	limit, err := parsePositive(b.values, ParamLimit, b.limits.DefaultLimit)
	if err != nil {
		b.err = err
		return b
	}
	b.spec.Page, b.spec.Limit = page, min(limit, b.limits.MaxLimit)
	b.paged = true
	return b
}

// Spec возвращает накопленную спецификацию или первую ошибку разбора.
func (b *Builder) Spec() (Spec, error) {
	return b.spec, b.err
}

// Fields возвращает поля, которые попадут в документы результата.
func (b *Builder) Fields() []string {
	return b.spec.Projection.resolve(b.schema)
}

// SQL формирует текст запроса и аргументы.
func (b *Builder) SQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}

	var (
		sb   strings.Builder
		args []any
	)
	fields := b.Fields()
	sb.WriteString("SELECT ")
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		col, _ := b.schema.Column(f)
		sb.WriteString(col.Expr)
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.schema.Table)

	conds := append(append([]Condition(nil), b.base...), b.spec.Filters...)
	for i, c := range conds {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		col, _ := b.schema.Column(c.Field)
		args = append(args, c.Value)
		fmt.Fprintf(&sb, "%s %s $%d", col.Expr, c.Op.SQL(), len(args))
	}

	for i, s := range b.spec.Sort {
		if i == 0 {
			sb.WriteString(" ORDER BY ")
		} else {
			sb.WriteString(", ")
		}
		col, _ := b.schema.Column(s.Field)
		sb.WriteString(col.Expr)
		if s.Desc {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}

	if b.paged {
		args = append(args, b.spec.Limit, b.spec.Skip())
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args)))
	}
	return sb.String(), args, nil
}

// Find выполняет запрос. Страница за пределами данных даёт пустой результат.
func (b *Builder) Find(ctx context.Context) ([]Document, error) {
	const op = "query.Find"
	sql, args, err := b.SQL()
	if err != nil {
		return nil, err
	}

	rows, err := b.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	fields := b.Fields()
	docs := make([]Document, 0)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		doc := make(Document, len(fields))
		for i, f := range fields {
			if i < len(vals) {
				doc[f] = vals[i]
			}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return docs, nil
}
