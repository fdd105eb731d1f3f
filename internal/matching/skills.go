package matching

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Level: уровень владения навыком. Порядок строгий: beginner < intermediate < expert.
type Level int

const (
	LevelNone Level = iota
	LevelBeginner
	LevelIntermediate
	LevelExpert
)

var levelNames = map[string]Level{
	"beginner":     LevelBeginner,
	"intermediate": LevelIntermediate,
	"expert":       LevelExpert,
}

// ParseLevel распознаёт уровень без учёта регистра и пробелов.
// Нераспознанная строка даёт LevelBeginner и ok=false.
func ParseLevel(raw string) (Level, bool) {
	if lvl, ok := levelNames[normalizeToken(raw)]; ok {
		return lvl, true
	}
	return LevelBeginner, false
}

func (l Level) String() string {
	switch l {
	case LevelBeginner:
		return "beginner"
	case LevelIntermediate:
		return "intermediate"
	case LevelExpert:
		return "expert"
	}
	return "none"
}

// Numeric: вес уровня для оценки соответствия.
func (l Level) Numeric() float64 {
	return float64(l)
}

// Profile отображает навык (lowercase, trim) → уровень.
type Profile map[string]Level

// LevelOf возвращает уровень навыка; отсутствующий навык считается beginner.
func (p Profile) LevelOf(skill string) Level {
	if lvl, ok := p[skill]; ok {
		return lvl
	}
	return LevelBeginner
}

// RequiredSkill: требование роли к одному навыку.
type RequiredSkill struct {
	Name  string
	Level Level
}

// ReadSkillProfile нормализует навыки ресурса.
// Битые записи отбрасываются с предупреждением, остальной профиль остаётся рабочим.
func ReadSkillProfile(decls SkillDeclarations) (Profile, []Warning) {
	profile := make(Profile, len(decls))
	var warnings []Warning

	for _, entry := range decls {
		name, rawLevel, ok := splitPair(entry)
		if !ok {
			warnings = append(warnings, Warning{
				Code:    WarnMalformedSkill,
				Message: fmt.Sprintf("запись навыка %q отброшена: ожидается \"name: level\"", entry),
			})
			continue
		}

		lvl, known := ParseLevel(rawLevel)
		if !known {
			warnings = append(warnings, Warning{
				Code:    WarnUnknownLevel,
				Message: fmt.Sprintf("уровень %q навыка %q не распознан, принят beginner", rawLevel, name),
			})
		}

		// Повтор навыка: берём более высокий уровень.
		if prev, seen := profile[name]; !seen || lvl > prev {
			profile[name] = lvl
		}
	}

	return profile, warnings
}

// ReadRequirementSkills нормализует требования роли, сортируя их по имени.
func ReadRequirementSkills(decls SkillDeclarations) ([]RequiredSkill, []Warning) {
	profile, warnings := ReadSkillProfile(decls)

	required := make([]RequiredSkill, 0, len(profile))
	for name, lvl := range profile {
		required = append(required, RequiredSkill{Name: name, Level: lvl})
	}
	sort.Slice(required, func(i, j int) bool {
		return required[i].Name < required[j].Name
	})

	return required, warnings
}

// ReadExperience суммирует годы по всем прошлым позициям.
// Битая запись даёт ноль лет и предупреждение.
func ReadExperience(decls ExperienceDeclarations) (float64, []Warning) {
	total := 0.0
	var warnings []Warning

	for _, entry := range decls {
		_, rawYears, ok := splitPair(entry)
		if !ok {
			warnings = append(warnings, Warning{
				Code:    WarnMalformedExperience,
				Message: fmt.Sprintf("запись опыта %q отброшена: ожидается \"title: years\"", entry),
			})
			continue
		}

		years, err := strconv.ParseFloat(rawYears, 64)
		if err != nil || years < 0 {
			warnings = append(warnings, Warning{
				Code:    WarnMalformedExperience,
				Message: fmt.Sprintf("стаж %q в записи %q не распознан, принято 0 лет", rawYears, entry),
			})
			continue
		}
		total += years
	}

	return total, warnings
}

// splitPair разбирает "key: value" по первому двоеточию.
func splitPair(entry string) (string, string, bool) {
	key, value, found := strings.Cut(entry, ":")
	if !found {
		return "", "", false
	}
	key = normalizeToken(key)
	value = normalizeToken(value)
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
