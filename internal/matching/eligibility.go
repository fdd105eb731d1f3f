package matching

// Candidate: ресурс с уже нормализованным профилем.
type Candidate struct {
	Column     int
	Resource   *Resource
	Profile    Profile
	TotalYears float64
}

// Reason объясняет, почему пара слот × кандидат недопустима.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonCommitted         Reason = "committed"
	ReasonOrgMismatch       Reason = "org_mismatch"
	ReasonUnavailable       Reason = "unavailable"
	ReasonInsufficientSkill Reason = "insufficient_skill"
)

// ReadCandidates нормализует пул один раз на запуск.
func ReadCandidates(pool []Resource) ([]Candidate, []Warning) {
	candidates := make([]Candidate, len(pool))
	var warnings []Warning

	for i := range pool {
		res := &pool[i]
		profile, skillWarnings := ReadSkillProfile(res.Skills)
		years, expWarnings := ReadExperience(res.Experience)

		for _, w := range append(skillWarnings, expWarnings...) {
			id := res.ID
			w.ResourceID = &id
			warnings = append(warnings, w)
		}

		candidates[i] = Candidate{
			Column:     i,
			Resource:   res,
			Profile:    profile,
			TotalYears: years,
		}
	}

	return candidates, warnings
}

// CheckEligibility проверяет жёсткие условия допуска кандидата на слот.
// Правила: кандидат не занят; организация совпадает (если включено);
// доступен не позже старта проекта; каждый требуемый навык не ниже нужного
// уровня (отсутствующий навык считается beginner).
func CheckEligibility(c *Candidate, s *Slot, orgScoping bool) (bool, Reason) {
	res := c.Resource

	if res.Committed {
		return false, ReasonCommitted
	}

	if orgScoping && res.OrgID != s.Project.OrgID {
		return false, ReasonOrgMismatch
	}

	// Проект без даты старта не ограничивает доступность.
	if res.AvailableDate != nil && !res.AvailableDate.IsZero() && !s.Project.StartDate.IsZero() &&
		res.AvailableDate.After(s.Project.StartDate) {
		return false, ReasonUnavailable
	}

	for _, req := range s.Required {
		if c.Profile.LevelOf(req.Name) < req.Level {
			return false, ReasonInsufficientSkill
		}
	}

	return true, ReasonNone
}
