// Package game holds the pure match rules: card comparison and the
// match-ending trio patterns. Nothing in here touches the database.
package game

import "card-jitsu-system/models"

// Outcome is the result of comparing the two cards of a round.
type Outcome int

const (
	Draw Outcome = iota
	FirstWins
	SecondWins
)

func (o Outcome) String() string {
	switch o {
	case FirstWins:
		return "first_wins"
	case SecondWins:
		return "second_wins"
	default:
		return "draw"
	}
}

// beats is the cyclic element relation: the key defeats the value.
var beats = map[string]string{
	models.ElementFire:  models.ElementGrass,
	models.ElementGrass: models.ElementWater,
	models.ElementWater: models.ElementFire,
}

// Compare applies the element relation first and falls back to power when
// both cards share an element. A missing card counts as a draw; that case
// never happens once a round has both slots filled.
func Compare(a, b *models.Card) Outcome {
	if a == nil || b == nil {
		return Draw
	}

	if a.Element == b.Element {
		switch {
		case a.Power == b.Power:
			return Draw
		case a.Power > b.Power:
			return FirstWins
		default:
			return SecondWins
		}
	}

	if beats[a.Element] == b.Element {
		return FirstWins
	}
	if beats[b.Element] == a.Element {
		return SecondWins
	}

	// Unreachable while the relation is a 3-cycle; kept so an extended
	// element set degrades to a draw instead of a wrong winner.
	return Draw
}
