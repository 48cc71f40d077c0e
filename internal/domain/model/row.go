package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Cell — одна ячейка строки содержимого: имя колонки и исходное JSON-значение.
type Cell struct {
	Column string
	Value  json.RawMessage
}

// Row — строка разобранного содержимого файла (FileContentRow).
// Схема зависит от файла, поэтому строка хранит пары колонка/значение
// в том порядке, в котором они пришли от API.
type Row []Cell

// errRowNotObject — строка содержимого пришла не JSON-объектом.
var errRowNotObject = errors.New("строка содержимого должна быть JSON-объектом")

// UnmarshalJSON разбирает JSON-объект с сохранением порядка ключей.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("разбор строки содержимого: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errRowNotObject
	}

	row := make(Row, 0, 8)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("разбор ключа строки содержимого: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return errRowNotObject
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("разбор значения %q: %w", key, err)
		}
		row = append(row, Cell{Column: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("разбор строки содержимого: %w", err)
	}

	*r = row
	return nil
}

// Get возвращает значение колонки.
func (r Row) Get(column string) (json.RawMessage, bool) {
	for _, c := range r {
		if c.Column == column {
			return c.Value, true
		}
	}
	return nil, false
}

// Text возвращает отображаемое значение колонки (пустая строка, если колонки нет).
func (r Row) Text(column string) string {
	v, ok := r.Get(column)
	if !ok {
		return ""
	}
	return CellText(v)
}

// Columns возвращает колонки таблицы содержимого — ключи первой строки.
func Columns(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0]))
	for _, c := range rows[0] {
		cols = append(cols, c.Column)
	}
	return cols
}

// CellText форматирует значение ячейки: null → "", строка → как есть,
// число и bool → литерал, объект и массив → компактный JSON.
func CellText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err == nil {
			return buf.String()
		}
	}
	return string(trimmed)
}
