package matching

// Веса по умолчанию.
const (
	DefaultRateWeight       = 0.5
	DefaultExperienceWeight = 1.0
	DefaultSkillWeight      = 1.0
	DefaultRateCeiling      = 100.0
)

// Weights задаёт вклад компонентов оценки. Переопределяется на каждый запуск.
type Weights struct {
	Rate        float64 `json:"rate" yaml:"rate" validate:"gte=0"`
	Experience  float64 `json:"experience" yaml:"experience" validate:"gte=0"`
	Skill       float64 `json:"skill" yaml:"skill" validate:"gte=0"`
	RateCeiling float64 `json:"rate_ceiling" yaml:"rate_ceiling" validate:"gt=0"`
}

// DefaultWeights возвращает 0.5 / 1.0 / 1.0 с потолком ставки 100.
func DefaultWeights() Weights {
	return Weights{
		Rate:        DefaultRateWeight,
		Experience:  DefaultExperienceWeight,
		Skill:       DefaultSkillWeight,
		RateCeiling: DefaultRateCeiling,
	}
}

// Score считает привлекательность допустимой пары; больше: лучше.
//
//	rate       = w.Rate * (ceiling - rate)      (ставка выше потолка даёт минус)
//	experience = w.Experience * сумма лет
//	skill      = w.Skill * среднее по требуемым навыкам (1/2/3, нет навыка: 0)
func Score(c *Candidate, s *Slot, w Weights) float64 {
	rate := w.Rate * (w.RateCeiling - c.Resource.Rate)
	experience := w.Experience * c.TotalYears

	skill := 0.0
	if len(s.Required) > 0 {
		sum := 0.0
		for _, req := range s.Required {
			sum += c.Profile[req.Name].Numeric()
		}
		skill = w.Skill * (sum / float64(len(s.Required)))
	}

	return rate + experience + skill
}
