// Package sl содержит вспомогательные функции для работы с логгером slog.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
// Для nil возвращается пустое значение, чтобы вызов в defer-ветках был безопасен.
//
// Пример:
//
//	log.Error("failed to load tour", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Op возвращает атрибут с именем операции, используемый во всех слоях.
func Op(op string) slog.Attr {
	return slog.String("op", op)
}
