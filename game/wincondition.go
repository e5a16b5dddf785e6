package game

import "card-jitsu-system/models"

// HasWinningTrio reports whether any three cards among a player's won cards
// form one of the match-ending patterns:
//
//  1. same element, three different colours
//  2. three different elements, three different colours
//  3. three different elements, same colour
//
// Every 3-combination is checked, not just trios containing the newest card:
// a winning trio can be assembled from any rounds won so far. The list is
// bounded by deck size, so the full scan stays cheap and obviously correct.
func HasWinningTrio(cards []models.Card) bool {
	if len(cards) < 3 {
		return false
	}

	for i := 0; i < len(cards)-2; i++ {
		for j := i + 1; j < len(cards)-1; j++ {
			for k := j + 1; k < len(cards); k++ {
				if isWinningTrio(&cards[i], &cards[j], &cards[k]) {
					return true
				}
			}
		}
	}
	return false
}

func isWinningTrio(a, b, c *models.Card) bool {
	elements := distinct(a.Element, b.Element, c.Element)
	colours := distinct(a.Colour, b.Colour, c.Colour)

	switch {
	case elements == 1 && colours == 3:
		return true
	case elements == 3 && colours == 3:
		return true
	case elements == 3 && colours == 1:
		return true
	}
	return false
}

// distinct counts the unique values among three strings.
func distinct(a, b, c string) int {
	switch {
	case a == b && b == c:
		return 1
	case a == b || b == c || a == c:
		return 2
	default:
		return 3
	}
}
