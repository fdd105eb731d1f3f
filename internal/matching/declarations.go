package matching

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SkillDeclarations хранит навыки в формате "name: level".
// Исторически записи приходят в разных формах: массив строк, массив объектов
// {"name", "level"}, объект name → level (или name → {"level": ...}) либо одна
// строка с разделителями. Все формы сводятся к списку строк при разборе JSON.
type SkillDeclarations []string

// UnmarshalJSON приводит любую поддерживаемую форму к списку "name: level".
func (d *SkillDeclarations) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = nil
		return nil
	}

	switch data[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*d = splitDelimited(raw)
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(SkillDeclarations, 0, len(items))
		for _, item := range items {
			out = append(out, skillItemToString(item))
		}
		*d = out
		return nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		names := make([]string, 0, len(obj))
		for name := range obj {
			names = append(names, name)
		}
		sort.Strings(names)

		out := make(SkillDeclarations, 0, len(obj))
		for _, name := range names {
			out = append(out, name+": "+levelFromRaw(obj[name]))
		}
		*d = out
		return nil
	}

	return fmt.Errorf("skills: неподдерживаемый формат %q", truncate(string(data), 32))
}

// skillItemToString разбирает один элемент массива навыков.
// Неразборчивые элементы сохраняются как есть, чтобы читатель профиля
// отбросил их с предупреждением, а не уронил весь разбор.
func skillItemToString(item json.RawMessage) string {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return s
	}

	var obj struct {
		Name  string `json:"name"`
		Skill string `json:"skill"`
		Level string `json:"level"`
	}
	if err := json.Unmarshal(item, &obj); err == nil {
		name := obj.Name
		if name == "" {
			name = obj.Skill
		}
		return name + ": " + obj.Level
	}

	return string(item)
}

// levelFromRaw достаёт уровень из значения объекта: строка или {"level": ...}.
func levelFromRaw(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Level string `json:"level"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Level
	}

	return string(raw)
}

// splitDelimited режет строку "go: expert, sql: beginner" по ',' и ';'.
func splitDelimited(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExperienceDeclarations хранит прошлый опыт в формате "title: years".
// Поддерживаются массив строк, объект title → years и одно число (общий стаж).
type ExperienceDeclarations []string

// UnmarshalJSON приводит опыт к списку "title: years".
func (d *ExperienceDeclarations) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = nil
		return nil
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(ExperienceDeclarations, 0, len(items))
		for _, item := range items {
			var s string
			if err := json.Unmarshal(item, &s); err == nil {
				out = append(out, s)
				continue
			}
			out = append(out, string(item))
		}
		*d = out
		return nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		titles := make([]string, 0, len(obj))
		for title := range obj {
			titles = append(titles, title)
		}
		sort.Strings(titles)

		out := make(ExperienceDeclarations, 0, len(obj))
		for _, title := range titles {
			out = append(out, title+": "+strings.Trim(string(bytes.TrimSpace(obj[title])), `"`))
		}
		*d = out
		return nil
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*d = splitDelimited(raw)
		return nil
	}

	// Одно число трактуем как общий стаж.
	if _, err := strconv.ParseFloat(string(data), 64); err == nil {
		*d = ExperienceDeclarations{"total: " + string(data)}
		return nil
	}

	return fmt.Errorf("experience: неподдерживаемый формат %q", truncate(string(data), 32))
}

// Date: календарная дата без времени ("2006-01-02").
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate отбрасывает время суток.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf приводит момент времени к календарной дате в UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// After сравнивает только календарные даты.
func (d Date) After(other Date) bool {
	return DateOf(d.Time).Time.After(DateOf(other.Time).Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*d = Date{}
		return nil
	}

	if t, err := time.Parse(dateLayout, raw); err == nil {
		*d = DateOf(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("date: ожидается формат YYYY-MM-DD, получено %q", raw)
	}
	*d = DateOf(t)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
