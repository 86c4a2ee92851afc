package model

import "strings"

// Element is a spiritual affinity tag carried by skills and resisted by
// fighters. The set is closed: content tables reference elements by name and
// are resolved to this enum once at load time.
type Element int8

const (
	ElementWood Element = iota
	ElementFire
	ElementEarth
	ElementMetal
	ElementWater
	ElementWind
	ElementThunder
	ElementFrost
	ElementLight
	ElementShadow
	ElementVenom
	ElementSound

	elementCount
)

var elementNames = [...]string{
	ElementWood:    "wood",
	ElementFire:    "fire",
	ElementEarth:   "earth",
	ElementMetal:   "metal",
	ElementWater:   "water",
	ElementWind:    "wind",
	ElementThunder: "thunder",
	ElementFrost:   "frost",
	ElementLight:   "light",
	ElementShadow:  "shadow",
	ElementVenom:   "venom",
	ElementSound:   "sound",
}

func (e Element) String() string {
	if e < 0 || int(e) >= len(elementNames) {
		return "unknown"
	}
	return elementNames[e]
}

// ParseElement resolves an element name to its enum value.
// Returns false for unknown names.
func ParseElement(s string) (Element, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range elementNames {
		if n == name {
			return Element(i), true
		}
	}
	return 0, false
}

// ElementSet is a small bitset of elements. The zero value is the empty set.
type ElementSet uint16

// NewElementSet builds a set from the given elements.
func NewElementSet(elems ...Element) ElementSet {
	var s ElementSet
	for _, e := range elems {
		s = s.With(e)
	}
	return s
}

// With returns the set including e.
func (s ElementSet) With(e Element) ElementSet {
	if e < 0 || e >= elementCount {
		return s
	}
	return s | 1<<uint(e)
}

// Has reports whether e is in the set.
func (s ElementSet) Has(e Element) bool {
	if e < 0 || e >= elementCount {
		return false
	}
	return s&(1<<uint(e)) != 0
}

// Len returns the number of elements in the set.
func (s ElementSet) Len() int {
	n := 0
	for e := Element(0); e < elementCount; e++ {
		if s.Has(e) {
			n++
		}
	}
	return n
}

// Elements returns the members in enum order.
func (s ElementSet) Elements() []Element {
	out := make([]Element, 0, s.Len())
	for e := Element(0); e < elementCount; e++ {
		if s.Has(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s ElementSet) String() string {
	elems := s.Elements()
	names := make([]string, len(elems))
	for i, e := range elems {
		names[i] = e.String()
	}
	return strings.Join(names, ",")
}
