// Package dice holds the table of the 21 distinguishable rolls of two dice.
package dice

import (
	"errors"
	"fmt"
	"strconv"

	"lukechampine.com/frand"

	"github.com/domino14/bearoff/prob"
)

const (
	Sides = 6
	// TotalWeight is the number of equally likely ordered rolls. The weights
	// in the outcome table must add up to exactly this, since the solver
	// takes a mean without normalizing.
	TotalWeight = Sides * Sides
	// MaxDice is the number of dice played on a double.
	MaxDice = 4
)

var (
	ErrInvalidDie = errors.New("dice: die value must be 1 through 6")
	ErrNoDice     = errors.New("dice: no dice given")
	ErrTooMany    = errors.New("dice: at most four dice may be played")
)

// An Outcome is one distinguishable roll. Doubles are played four times and
// happen one way in 36; mixed rolls are played once each and happen two ways.
type Outcome struct {
	Dice   []int
	Weight uint64
}

func (o Outcome) IsDouble() bool {
	return len(o.Dice) == MaxDice
}

func (o Outcome) String() string {
	return fmt.Sprintf("%d-%d", o.Dice[0], o.Dice[1])
}

var outcomes = buildOutcomes()

func buildOutcomes() []Outcome {
	table := make([]Outcome, 0, 21)
	for a := 1; a <= Sides; a++ {
		table = append(table, Outcome{Dice: []int{a, a, a, a}, Weight: 1})
		for b := a + 1; b <= Sides; b++ {
			table = append(table, Outcome{Dice: []int{a, b}, Weight: 2})
		}
	}
	return table
}

// Outcomes returns the outcome table. The returned slice is shared and must
// not be modified.
func Outcomes() []Outcome {
	return outcomes
}

// Probability returns Weight/36 in the caller's numeric type.
func Probability[P prob.Number[P]](o Outcome) P {
	var p P
	return p.FromUint64(o.Weight).Quo(p.FromUint64(TotalWeight))
}

// FromRoll returns the table entry for two physical dice.
func FromRoll(a, b int) Outcome {
	if a > b {
		a, b = b, a
	}
	for _, o := range outcomes {
		if o.Dice[0] == a && o.Dice[1] == b {
			return o
		}
	}
	panic(fmt.Errorf("%w: %d-%d", ErrInvalidDie, a, b))
}

// Roll throws two dice.
func Roll() Outcome {
	return FromRoll(frand.Intn(Sides)+1, frand.Intn(Sides)+1)
}

// Validate checks a dice list handed to the move generator.
func Validate(ds []int) error {
	if len(ds) == 0 {
		return ErrNoDice
	}
	if len(ds) > MaxDice {
		return ErrTooMany
	}
	for _, d := range ds {
		if d < 1 || d > Sides {
			return fmt.Errorf("%w: %d", ErrInvalidDie, d)
		}
	}
	return nil
}

// Parse reads die values from command arguments.
func Parse(fields []string) ([]int, error) {
	ds := make([]int, 0, len(fields))
	for _, f := range fields {
		d, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDie, f)
		}
		ds = append(ds, d)
	}
	if err := Validate(ds); err != nil {
		return nil, err
	}
	return ds, nil
}
