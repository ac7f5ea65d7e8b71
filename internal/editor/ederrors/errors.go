// Пакет содержит определения ошибок ядра редактора. Каждая ошибка имеет числовой код и
// описание; внутренние сбои (устаревший курсор, некорректная вложенность) восстанавливаются
// на месте и никогда не прерывают сессию редактирования — худший исход любой команды это no-op.
//
// Основные возможности:
//   - Коды ошибок по диапазонам: 2*** команды, 3*** выделение, 4*** таблицы, 5*** ввод.
//   - Русские сообщения для отображения пользователю.
package ederrors

import "fmt"

type DefinedError struct {
	Code  int    `json:"code"`
	Err   string `json:"error"`
	RuErr string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

var (
	// 2*** - command errors
	ErrUnknownCommand = DefinedError{Code: 2001, Err: "unknown command", RuErr: "Неизвестная команда"}
	ErrPluginFailed   = DefinedError{Code: 2002, Err: "plugin command failed", RuErr: "Команда плагина завершилась с ошибкой"}

	// 3*** - selection errors
	ErrStaleSelection = DefinedError{Code: 3001, Err: "saved selection no longer resolves", RuErr: "Сохраненная позиция курсора устарела"}
	ErrNoSelection    = DefinedError{Code: 3002, Err: "no selection available", RuErr: "Нет активного выделения"}

	// 4*** - table errors
	ErrTableContextRequired = DefinedError{Code: 4001, Err: "command requires a table context", RuErr: "Команда доступна только внутри таблицы"}
	ErrLastRow              = DefinedError{Code: 4002, Err: "table must keep at least one row", RuErr: "В таблице должна остаться хотя бы одна строка"}
	ErrLastColumn           = DefinedError{Code: 4003, Err: "table must keep at least one column", RuErr: "В таблице должен остаться хотя бы один столбец"}

	// 5*** - input errors
	ErrLimitExceeded           = DefinedError{Code: 5001, Err: "character limit exceeded", RuErr: "Достигнут лимит символов"}
	ErrUnsupportedPasteContent = DefinedError{Code: 5002, Err: "clipboard content has no usable html or text", RuErr: "В буфере обмена нет подходящего содержимого"}
	ErrStructuralViolation     = DefinedError{Code: 5003, Err: "invalid block nesting", RuErr: "Недопустимая вложенность блоков"}
)

// Format возвращает копию ошибки с отформатированными сообщениями.
func (e DefinedError) Format(args ...interface{}) DefinedError {
	e.Err = fmt.Sprintf(e.Err, args...)
	e.RuErr = fmt.Sprintf(e.RuErr, args...)
	return e
}
