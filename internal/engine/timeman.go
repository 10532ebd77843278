package engine

import "time"

// Time allocation for clock-based games. The optimum budget is what a
// normally behaving search spends; the maximum is a hard ceiling a single
// long iteration may not cross.

const (
	moveOverhead      = 30 * time.Millisecond
	defaultMovesToGo  = 30
	maxBudgetFraction = 4 // never spend more than 1/4 of the remaining clock
)

// allocateTime computes the soft and hard budgets for one move given the
// remaining clock, the increment, and moves to the next time control (0
// when the whole game runs on this clock).
func allocateTime(remaining, increment time.Duration, movesToGo int) (optimum, maximum time.Duration) {
	if movesToGo <= 0 {
		movesToGo = defaultMovesToGo
	}

	usable := remaining - moveOverhead
	if usable < 0 {
		usable = 0
	}

	optimum = usable/time.Duration(movesToGo) + increment*3/4
	maximum = optimum * 3

	if ceiling := usable / maxBudgetFraction; maximum > ceiling {
		maximum = ceiling
	}
	if optimum > maximum {
		optimum = maximum
	}
	if optimum < time.Millisecond {
		optimum = time.Millisecond
	}
	if maximum < time.Millisecond {
		maximum = time.Millisecond
	}
	return optimum, maximum
}
