package physics

import "fmt"

// Category tags a fixture for collision filtering and scoring.
type Category int

const (
	Environment Category = iota
	Architecture
	Penalty
	Goal
	EnemyWeapon
	Sound
	NoiseMaker
	Item
	Stink
	numCategories
)

var categoryNames = [...]string{
	Environment:  "environment",
	Architecture: "architecture",
	Penalty:      "penalty",
	Goal:         "goal",
	EnemyWeapon:  "enemyWeapon",
	Sound:        "sound",
	NoiseMaker:   "noiseMaker",
	Item:         "item",
	Stink:        "stink",
}

func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Bit is the filter bit of c. Bit 0 is left unused.
func (c Category) Bit() uint16 {
	return 1 << uint(c+1)
}

func (c Category) MarshalText() ([]byte, error) {
	if c < 0 || c >= numCategories {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	for i, n := range categoryNames {
		if n == string(b) {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", string(b))
}

// MakeBitMask ORs the bits of cats.
func MakeBitMask(cats ...Category) uint16 {
	var m uint16
	for _, c := range cats {
		m |= c.Bit()
	}
	return m
}

// CategoriesOf expands a bit mask back into its categories.
func CategoriesOf(mask uint16) []Category {
	var out []Category
	for c := Environment; c < numCategories; c++ {
		if mask&c.Bit() != 0 {
			out = append(out, c)
		}
	}
	return out
}
