package validation

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/patelvedant312/team-matching/internal/matching"
)

// Константы валидации
const (
	MinNameLength      = 2
	MaxNameLength      = 200
	MaxRoleNameLength  = 100
	MaxRolesPerProject = 100
	MaxRoleQuantity    = 100
	MinRate            = 0.0
	MaxRate            = 100000.0
	MaxProjectDays     = 3650
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateName проверяет название ресурса или проекта.
func ValidateName(fieldName, value string) error {
	if err := ValidateNonEmpty(fieldName, value); err != nil {
		return err
	}
	return ValidateLength(fieldName, strings.TrimSpace(value), MinNameLength, MaxNameLength)
}

// ValidateRate проверяет ставку ресурса.
func ValidateRate(rate float64) error {
	if rate < MinRate || rate > MaxRate {
		return fmt.Errorf("ставка должна быть в диапазоне от %.0f до %.0f", MinRate, MaxRate)
	}
	return nil
}

// ValidateProjectDays проверяет длительность проекта в днях.
func ValidateProjectDays(days int) error {
	if days < 0 || days > MaxProjectDays {
		return fmt.Errorf("длительность проекта должна быть от 0 до %d дней", MaxProjectDays)
	}
	return nil
}

// ParseRoleRequirements разбирает и проверяет потребность проекта в ролях.
// У роли с положительным количеством должны быть имя и хотя бы один навык.
func ParseRoleRequirements(raw []byte) ([]matching.RoleRequirement, error) {
	var roles []matching.RoleRequirement
	if err := json.Unmarshal(raw, &roles); err != nil {
		return nil, fmt.Errorf("required_resources: ожидается список ролей: %w", err)
	}
	if len(roles) > MaxRolesPerProject {
		return nil, fmt.Errorf("required_resources: не более %d ролей", MaxRolesPerProject)
	}

	for i, r := range roles {
		field := fmt.Sprintf("required_resources[%d]", i)
		if r.Quantity < 0 || r.Quantity > MaxRoleQuantity {
			return nil, fmt.Errorf("%s.quantity: должно быть от 0 до %d", field, MaxRoleQuantity)
		}
		if r.Quantity == 0 {
			continue
		}
		if err := ValidateNonEmpty(field+".role", r.Role); err != nil {
			return nil, err
		}
		if err := ValidateLength(field+".role", r.Role, 0, MaxRoleNameLength); err != nil {
			return nil, err
		}
		if len(r.Skills) == 0 {
			return nil, fmt.Errorf("%s.skills: нужен хотя бы один навык", field)
		}
	}
	return roles, nil
}

// ValidateSkills проверяет, что навыки ресурса читаются хотя бы частично.
func ValidateSkills(raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	var decls matching.SkillDeclarations
	if err := json.Unmarshal(raw, &decls); err != nil {
		return fmt.Errorf("skills: %w", err)
	}
	return nil
}

// ValidateExperience проверяет формат прошлого опыта.
func ValidateExperience(raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	var decls matching.ExperienceDeclarations
	if err := json.Unmarshal(raw, &decls); err != nil {
		return fmt.Errorf("past_job_titles: %w", err)
	}
	return nil
}
