package pets

import "time"

type decayBracket struct {
	minHours int
	delta    Delta
}

// Ordenados de mayor a menor: gana el primer bracket que matchea.
var decayBrackets = []decayBracket{
	{minHours: 12, delta: Delta{Happiness: -20, Energy: -10, Curiosity: -15}},
	{minHours: 6, delta: Delta{Happiness: -10, Energy: -5, Curiosity: -7}},
	{minHours: 3, delta: Delta{Happiness: -5, Energy: -3}},
}

// DecayFor mapea horas de inactividad a un delta. ok=false => sin cambios (< 3h).
func DecayFor(idleHours int) (Delta, bool) {
	for _, b := range decayBrackets {
		if idleHours >= b.minHours {
			return b.delta, true
		}
	}
	return Delta{}, false
}

// IdleHours son las horas completas entre last y now, nunca negativas.
func IdleHours(last, now time.Time) int {
	d := now.Sub(last)
	if d <= 0 {
		return 0
	}
	return int(d / time.Hour)
}
