// Package matching подбирает ресурсы на ролевые слоты проектов.
//
// Один запуск движка решает одну задачу оптимального назначения: спрос
// (роли с количеством) разворачивается в слоты, для каждой пары
// слот × кандидат проверяется допуск и считается оценка, после чего
// венгерский алгоритм находит глобально оптимальное паросочетание.
// Движок не делает ввода-вывода и не хранит состояние между запусками.
package matching

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// RoleRequirement описывает потребность проекта в одной роли.
type RoleRequirement struct {
	Role     string            `json:"role" yaml:"role"`
	Skills   SkillDeclarations `json:"skills" yaml:"skills"`
	Quantity int               `json:"quantity" yaml:"quantity" validate:"gte=0"`
}

// Project: входной снимок проекта.
type Project struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	OrgID     uuid.UUID         `json:"org_id"`
	StartDate Date              `json:"start_date"`
	Roles     []RoleRequirement `json:"roles" validate:"dive"`
}

// Resource: входной снимок кандидата. Committed читается один раз на старте
// запуска и внутри запуска не меняется.
type Resource struct {
	ID            uuid.UUID              `json:"id"`
	Name          string                 `json:"name"`
	Rate          float64                `json:"rate" validate:"gte=0"`
	Skills        SkillDeclarations      `json:"skills"`
	Experience    ExperienceDeclarations `json:"experience"`
	AvailableDate *Date                  `json:"available_date,omitempty"`
	Committed     bool                   `json:"committed"`
	OrgID         uuid.UUID              `json:"org_id"`
}

// Input: всё, что нужно для одного запуска.
type Input struct {
	Projects  []Project  `json:"projects" validate:"dive"`
	Resources []Resource `json:"resources" validate:"dive"`
}

// Assignment: заполненный слот.
type Assignment struct {
	ProjectID    uuid.UUID `json:"project_id"`
	ProjectName  string    `json:"project_name"`
	Role         string    `json:"role"`
	Seat         int       `json:"seat"`
	ResourceID   uuid.UUID `json:"resource_id"`
	ResourceName string    `json:"resource_name"`
	Score        float64   `json:"score"`
}

// Result содержит итог запуска: назначения, незаполненные роли и предупреждения.
type Result struct {
	RunID       uuid.UUID      `json:"run_id"`
	Assignments []Assignment   `json:"assignments"`
	Unfilled    map[string]int `json:"unfilled_roles"`
	Warnings    []Warning      `json:"warnings"`
	TotalSlots  int            `json:"total_slots"`
	Sentinel    float64        `json:"infeasible_cost"`
}

// UnfilledTotal суммирует незаполненные слоты по всем ролям.
func (r *Result) UnfilledTotal() int {
	total := 0
	for _, n := range r.Unfilled {
		total += n
	}
	return total
}

// WarningCode классифицирует аномалии данных, не прерывающие запуск.
type WarningCode string

const (
	WarnMalformedSkill      WarningCode = "malformed_skill_entry"
	WarnUnknownLevel        WarningCode = "unknown_skill_level"
	WarnMalformedExperience WarningCode = "malformed_experience_entry"
	WarnUnscorableRole      WarningCode = "unscorable_role"
	WarnDuplicateAssignment WarningCode = "duplicate_assignment"
	WarnSentinelRaised      WarningCode = "infeasible_cost_raised"
)

// Warning попадает в метаданные результата.
type Warning struct {
	Code       WarningCode `json:"code"`
	Message    string      `json:"message"`
	ResourceID *uuid.UUID  `json:"resource_id,omitempty"`
	Role       string      `json:"role,omitempty"`
}

var (
	// ErrInvalidInput: вход отклонён до запуска решателя.
	ErrInvalidInput = errors.New("matching: некорректные входные данные")
	// ErrSolver: решатель не смог построить паросочетание.
	ErrSolver = errors.New("matching: ошибка решателя")
)

// ValidationError описывает конкретное нарушение входного контракта.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrInvalidInput, e.Message)
	}
	return fmt.Sprintf("%v: %s: %s", ErrInvalidInput, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// SolverError: фатальная ошибка алгоритма для этого запуска.
type SolverError struct {
	Reason string
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("%v: %s", ErrSolver, e.Reason)
}

func (e *SolverError) Unwrap() error {
	return ErrSolver
}
