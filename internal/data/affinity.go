// Package data holds the static content tables: techniques, beasts and the
// elemental matchup graph. Tables are Go literals compiled into the binary
// and resolved into registries by the LoadX functions at server start.
package data

import "github.com/udisondev/qiankun/internal/model"

// counterTable lists which elements an element overcomes. The five phases
// follow the classical overcoming cycle; the outer elements form a second
// triangle plus two opposed pairs.
var counterTable = map[model.Element][]model.Element{
	model.ElementWood:    {model.ElementEarth},
	model.ElementEarth:   {model.ElementWater},
	model.ElementWater:   {model.ElementFire},
	model.ElementFire:    {model.ElementMetal},
	model.ElementMetal:   {model.ElementWood},
	model.ElementWind:    {model.ElementThunder},
	model.ElementThunder: {model.ElementFrost},
	model.ElementFrost:   {model.ElementWind},
	model.ElementLight:   {model.ElementShadow},
	model.ElementShadow:  {model.ElementLight},
	model.ElementSound:   {model.ElementVenom},
	model.ElementVenom:   {model.ElementSound},
}

// Counters reports whether attacker overcomes defender in the matchup graph.
func Counters(attacker, defender model.Element) bool {
	for _, victim := range counterTable[attacker] {
		if victim == defender {
			return true
		}
	}
	return false
}

// resistScore rates a single defender attunement against one attack element:
// full attunement 1.0, an attunement that overcomes the attack 0.5, one the
// attack overcomes -1.0, unrelated 0.
func resistScore(resist, attack model.Element) float64 {
	switch {
	case resist == attack:
		return 1.0
	case Counters(resist, attack):
		return 0.5
	case Counters(attack, resist):
		return -1.0
	default:
		return 0
	}
}

// ResistanceReduction returns the fraction in [0,1] by which the defender's
// attunements blunt an attack carrying the given element tags. Each tag is
// scored as the clamped sum of the defender's attunement scores against it;
// the attack is only blunted as much as its least-resisted tag, so the result
// is the minimum over tags. An attack with no tags is never blunted.
func ResistanceReduction(tags []model.Element, resists model.ElementSet) float64 {
	if len(tags) == 0 {
		return 0
	}

	fraction := 1.0
	for _, tag := range tags {
		score := 0.0
		for _, resist := range resists.Elements() {
			score += resistScore(resist, tag)
		}
		score = max(0, min(1, score))
		fraction = min(fraction, score)
	}
	return fraction
}
