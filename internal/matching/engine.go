package matching

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Config: параметры одного запуска.
type Config struct {
	Weights Weights `json:"weights" yaml:"weights"`
	// InfeasibleCost: заглушка для недопустимых пар; 0, вычислить безопасную.
	InfeasibleCost float64 `json:"infeasible_cost" yaml:"infeasible_cost" validate:"gte=0"`
	OrgScoping     bool    `json:"org_scoping" yaml:"org_scoping"`
	// Ограничения размера входа; 0: без ограничения.
	MaxSlots      int `json:"max_slots" yaml:"max_slots" validate:"gte=0"`
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates" validate:"gte=0"`
}

// DefaultConfig: веса по умолчанию, заглушка вычисляется, организация учитывается.
func DefaultConfig() Config {
	return Config{
		Weights:    DefaultWeights(),
		OrgScoping: true,
	}
}

// Engine выполняет запуски подбора. Безопасен для параллельного
// использования: каждый запуск работает только со своими данными.
type Engine struct {
	cfg      Config
	log      logrus.FieldLogger
	validate *validator.Validate
}

// NewEngine создаёт движок; nil-логгер заменяется стандартным logrus.
func NewEngine(cfg Config, log logrus.FieldLogger) (*Engine, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	e := &Engine{cfg: cfg, log: log, validate: validator.New()}
	if err := e.checkConfig(cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// Config возвращает конфигурацию движка.
func (e *Engine) Config() Config {
	return e.cfg
}

// WithConfig возвращает копию движка с другой конфигурацией запуска.
func (e *Engine) WithConfig(cfg Config) (*Engine, error) {
	return NewEngine(cfg, e.log)
}

// Run выполняет один запуск: валидация, развёртка спроса, матрица стоимостей,
// решатель, разбор ответа. Возвращает либо полный результат, либо одну ошибку.
func (e *Engine) Run(in Input) (*Result, error) {
	demand, err := e.prepare(in)
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	log := e.log.WithField("run_id", runID)

	candidates, poolWarnings := ReadCandidates(in.Resources)

	result := &Result{
		RunID:    runID,
		Unfilled: demand.Unfilled,
		Warnings: append(demand.Warnings, poolWarnings...),
	}
	result.TotalSlots = len(demand.Slots) + result.UnfilledTotal()

	if len(demand.Slots) > 0 {
		matrix, raised := BuildCostMatrix(demand.Slots, candidates, e.cfg.Weights, e.cfg.OrgScoping, e.cfg.InfeasibleCost)
		if math.IsInf(matrix.Sentinel, 0) || math.IsNaN(matrix.Sentinel) {
			return nil, &ValidationError{
				Field:   "resources",
				Message: "оценки кандидатов выходят за пределы представимых чисел, проверьте ставки и опыт",
			}
		}
		result.Sentinel = matrix.Sentinel
		if raised {
			result.Warnings = append(result.Warnings, Warning{
				Code: WarnSentinelRaised,
				Message: fmt.Sprintf("заданная стоимость недопустимой пары %.2f ниже безопасной границы, использовано %.2f",
					e.cfg.InfeasibleCost, matrix.Sentinel),
			})
		}

		pairs, err := Solve(matrix.Numeric())
		if err != nil {
			log.WithError(err).Error("matching: решатель завершился с ошибкой")
			return nil, err
		}

		resolution := Resolve(matrix, pairs, demand.Slots, candidates)
		for role, n := range resolution.Unfilled {
			result.Unfilled[role] += n
		}
		result.Assignments = resolution.Assignments
		result.Warnings = append(result.Warnings, resolution.Warnings...)
	}

	if result.Assignments == nil {
		result.Assignments = []Assignment{}
	}
	if got := len(result.Assignments) + result.UnfilledTotal(); got != result.TotalSlots {
		return nil, &SolverError{Reason: fmt.Sprintf("учтено %d слотов из %d", got, result.TotalSlots)}
	}

	for _, w := range result.Warnings {
		entry := log.WithFields(logrus.Fields{"code": w.Code, "role": w.Role})
		if w.ResourceID != nil {
			entry = entry.WithField("resource_id", *w.ResourceID)
		}
		if w.Code == WarnDuplicateAssignment {
			entry.Warn("matching: нарушение целостности данных: " + w.Message)
			continue
		}
		entry.Warn(w.Message)
	}

	log.WithFields(logrus.Fields{
		"slots":       result.TotalSlots,
		"assignments": len(result.Assignments),
		"unfilled":    result.UnfilledTotal(),
		"candidates":  len(candidates),
	}).Info("matching: запуск завершён")

	return result, nil
}

// Validate проверяет вход так же, как Run, но не запускает подбор.
func (e *Engine) Validate(in Input) error {
	_, err := e.prepare(in)
	return err
}

// prepare проверяет вход и разворачивает спрос в слоты.
func (e *Engine) prepare(in Input) (Demand, error) {
	if err := e.checkInput(in); err != nil {
		return Demand{}, err
	}

	demand := ExpandDemand(in.Projects)
	if e.cfg.MaxSlots > 0 && len(demand.Slots) > e.cfg.MaxSlots {
		return Demand{}, &ValidationError{
			Field:   "projects",
			Message: fmt.Sprintf("слотов %d, допускается не более %d", len(demand.Slots), e.cfg.MaxSlots),
		}
	}
	return demand, nil
}

func (e *Engine) checkConfig(cfg Config) error {
	if err := e.validate.Struct(cfg); err != nil {
		return toValidationError("config", err)
	}
	w := cfg.Weights
	for name, v := range map[string]float64{
		"weights.rate":         w.Rate,
		"weights.experience":   w.Experience,
		"weights.skill":        w.Skill,
		"weights.rate_ceiling": w.RateCeiling,
		"infeasible_cost":      cfg.InfeasibleCost,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ValidationError{Field: name, Message: "должно быть конечным числом"}
		}
	}
	return nil
}

func (e *Engine) checkInput(in Input) error {
	if len(in.Projects) == 0 {
		return &ValidationError{Field: "projects", Message: "спрос пуст"}
	}
	if len(in.Resources) == 0 {
		return &ValidationError{Field: "resources", Message: "пул кандидатов пуст"}
	}
	if e.cfg.MaxCandidates > 0 && len(in.Resources) > e.cfg.MaxCandidates {
		return &ValidationError{
			Field:   "resources",
			Message: fmt.Sprintf("кандидатов %d, допускается не более %d", len(in.Resources), e.cfg.MaxCandidates),
		}
	}

	for pi, p := range in.Projects {
		if p.StartDate.IsZero() {
			return &ValidationError{Field: fmt.Sprintf("projects[%d].start_date", pi), Message: "дата начала обязательна"}
		}
		for ri, r := range p.Roles {
			if strings.TrimSpace(r.Role) == "" && r.Quantity > 0 {
				return &ValidationError{
					Field:   fmt.Sprintf("projects[%d].roles[%d].role", pi, ri),
					Message: "имя роли обязательно",
				}
			}
		}
	}
	for i, r := range in.Resources {
		if math.IsNaN(r.Rate) || math.IsInf(r.Rate, 0) {
			return &ValidationError{Field: fmt.Sprintf("resources[%d].rate", i), Message: "должно быть конечным числом"}
		}
	}

	if err := e.validate.Struct(in); err != nil {
		return toValidationError("input", err)
	}
	return nil
}

func toValidationError(scope string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field:   fe.Namespace(),
			Message: fmt.Sprintf("нарушено правило %s=%s", fe.Tag(), fe.Param()),
		}
	}
	return &ValidationError{Field: scope, Message: err.Error()}
}
