package models

// Типы событий, рассылаемых подписчикам организации.
const (
	EventTeamFormed   = "team.formed"
	EventTeamReleased = "team.released"
)

// Лимиты страниц списков.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// ClampLimit приводит limit к допустимому диапазону.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageLimit
	case limit > MaxPageLimit:
		return MaxPageLimit
	}
	return limit
}
