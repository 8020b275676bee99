package repository

import (
	"strconv"
	"strings"
)

// setList собирает предложение SET для частичного обновления.
// Первый аргумент ($1) всегда id записи.
type setList struct {
	cols []string
	args []any
}

func newSetList(id string) *setList {
	return &setList{args: []any{id}}
}

// add добавляет колонку, если значение задано.
func add[T any](l *setList, col string, v *T) {
	if v == nil {
		return
	}
	l.args = append(l.args, *v)
	l.cols = append(l.cols, col+" = $"+strconv.Itoa(len(l.args)))
}

func (l *setList) sql() string {
	return strings.Join(l.cols, ", ")
}

func (l *setList) empty() bool {
	return len(l.cols) == 0
}
