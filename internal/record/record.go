// Package record описывает запись каталога, полученную из JSON API loc.gov,
// и таблицу проекции: какое поле по какому пути извлекается и чем заменяется при отсутствии.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel подставляется вместо поля, отсутствующего на любом уровне вложенности
const Sentinel = "none"

// JSONSuffix запрашивает JSON-представление страницы каталога
const JSONSuffix = "?fo=json"

var (
	ErrInvalidJSON = errors.New("response body is not valid JSON")
	ErrNotObject   = errors.New("response JSON is not an object")
)

// Field одна строка таблицы проекции
type Field struct {
	Name    string
	Path    []string
	Default string
}

// Projection порядок полей совпадает с заголовком raw.csv
var Projection = []Field{
	{Name: "created_published", Path: []string{"item", "created_published"}, Default: Sentinel},
	{Name: "date", Path: []string{"item", "date"}, Default: Sentinel},
	{Name: "dates_of_publication", Path: []string{"item", "dates_of_publication"}, Default: Sentinel},
	{Name: "description", Path: []string{"item", "description"}, Default: Sentinel},
	{Name: "essay", Path: []string{"item", "essay"}, Default: Sentinel},
	{Name: "essay_contributor", Path: []string{"item", "essay_contributor"}, Default: Sentinel},
	{Name: "language", Path: []string{"item", "language"}, Default: Sentinel},
	{Name: "latlong", Path: []string{"item", "latlong"}, Default: Sentinel},
	{Name: "location", Path: []string{"item", "location"}, Default: Sentinel},
	{Name: "raw_lccn", Path: []string{"item", "raw_lccn"}, Default: Sentinel},
	{Name: "subjects", Path: []string{"item", "item", "subjects"}, Default: Sentinel},
	{Name: "title", Path: []string{"item", "item", "title"}, Default: Sentinel},
	{Name: "url", Path: []string{"item", "url"}, Default: Sentinel},
}

// Fields имена колонок raw.csv в фиксированном порядке
func Fields() []string {
	names := make([]string, len(Projection))
	for i, f := range Projection {
		names[i] = f.Name
	}
	return names
}

// Record плоская запись поле → строка. После создания не изменяется.
type Record struct {
	values map[string]string
}

// New собирает запись из готовых значений; недостающие поля получают значение по умолчанию
func New(values map[string]string) Record {
	r := Record{values: make(map[string]string, len(Projection))}
	for _, f := range Projection {
		if v, ok := values[f.Name]; ok {
			r.values[f.Name] = v
		} else {
			r.values[f.Name] = f.Default
		}
	}
	return r
}

// FromRow строит запись из строки CSV с заголовком header; лишние колонки игнорируются
func FromRow(header, row []string) Record {
	values := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(row) {
			values[name] = row[i]
		}
	}
	return New(values)
}

func (r Record) Get(field string) string {
	return r.values[field]
}

// Values значения в порядке Fields()
func (r Record) Values() []string {
	out := make([]string, len(Projection))
	for i, f := range Projection {
		out[i] = r.values[f.Name]
	}
	return out
}

// With возвращает копию записи с заменённым полем
func (r Record) With(field, value string) Record {
	values := make(map[string]string, len(r.values))
	for k, v := range r.values {
		values[k] = v
	}
	values[field] = value
	return Record{values: values}
}

// Map копия значений записи
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

func (r Record) LCCN() string {
	return r.values["raw_lccn"]
}

func (r Record) Essay() string {
	return r.values["essay"]
}

// Key ключ соединения стадий: raw_lccn без окружающих пробелов
func (r Record) Key() string {
	return NormalizeKey(r.LCCN())
}

// EssayMarkup разворачивает эссе, сохранённое как JSON-массив фрагментов разметки.
// Любое другое значение возвращается без изменений.
func EssayMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return raw
	}
	var parts []string
	if err := json.Unmarshal([]byte(trimmed), &parts); err != nil {
		return raw
	}
	return strings.Join(parts, "\n")
}

func NormalizeKey(lccn string) string {
	return strings.TrimSpace(lccn)
}

// DeriveURL единственное преобразование ссылки перед запросом
func DeriveURL(link string) string {
	return link + JSONSuffix
}

// ParseJSON разбирает тело ответа и проецирует поля.
// Ошибка только если тело не JSON-объект; отсутствие полей ошибкой не считается.
func ParseJSON(body []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if dec.More() {
		return Record{}, fmt.Errorf("%w: trailing data after document", ErrInvalidJSON)
	}

	obj, ok := doc.(map[string]interface{})
	if !ok {
		return Record{}, ErrNotObject
	}

	return Project(obj), nil
}

// Project применяет таблицу проекции к разобранному документу
func Project(doc map[string]interface{}) Record {
	values := make(map[string]string, len(Projection))
	for _, f := range Projection {
		if v, ok := lookup(doc, f.Path); ok {
			values[f.Name] = render(v)
		} else {
			values[f.Name] = f.Default
		}
	}
	return Record{values: values}
}

func lookup(doc map[string]interface{}, path []string) (interface{}, bool) {
	var current interface{} = doc
	for _, key := range path {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// render строки как есть, null → "", остальное компактным JSON
func render(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}
