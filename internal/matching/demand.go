package matching

import (
	"fmt"
	"strings"
)

// Slot описывает одну позицию роли конкретного проекта.
// Живёт только в пределах одного запуска.
type Slot struct {
	Row      int
	Project  *Project
	Role     string
	Seat     int
	Required []RequiredSkill
}

// Demand: развёрнутый спрос.
type Demand struct {
	Slots    []Slot
	Unfilled map[string]int
	Warnings []Warning
}

// ExpandDemand разворачивает роли всех проектов в упорядоченный список слотов.
// Роль с quantity <= 0 пропускается целиком. Роль без имени или без
// распознанных навыков оценить нельзя: всё её количество сразу уходит в
// незаполненные, до решателя она не доходит.
func ExpandDemand(projects []Project) Demand {
	demand := Demand{Unfilled: make(map[string]int)}

	for pi := range projects {
		project := &projects[pi]
		for _, req := range project.Roles {
			if req.Quantity <= 0 {
				continue
			}

			role := strings.TrimSpace(req.Role)
			required, warnings := ReadRequirementSkills(req.Skills)
			for i := range warnings {
				warnings[i].Role = role
			}
			demand.Warnings = append(demand.Warnings, warnings...)

			if role == "" || len(required) == 0 {
				demand.Unfilled[role] += req.Quantity
				demand.Warnings = append(demand.Warnings, Warning{
					Code:    WarnUnscorableRole,
					Message: fmt.Sprintf("роль %q проекта %q не имеет имени или навыков: %d позиций не заполнено", role, project.Name, req.Quantity),
					Role:    role,
				})
				continue
			}

			for seat := 0; seat < req.Quantity; seat++ {
				demand.Slots = append(demand.Slots, Slot{
					Row:      len(demand.Slots),
					Project:  project,
					Role:     role,
					Seat:     seat,
					Required: required,
				})
			}
		}
	}

	return demand
}
