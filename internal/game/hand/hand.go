// Package hand classifies a set of held dice into a poker-dice hand type and
// computes the color grouping used by the color modifier.
package hand

import (
	"fmt"
	"sort"
)

// Type is a classified hand. Values are stable identifiers used in catalogue
// and save files.
type Type string

const (
	Nothing       Type = "nothing"
	Pair          Type = "pair"
	TwoPair       Type = "two_pair"
	ThreeOfAKind  Type = "three_of_a_kind"
	SmallStraight Type = "small_straight"
	LargeStraight Type = "large_straight"
	FullHouse     Type = "full_house"
	FourOfAKind   Type = "four_of_a_kind"
	FiveOfAKind   Type = "five_of_a_kind"
)

// All lists every hand type from weakest to strongest precedence.
var All = []Type{
	Nothing, Pair, TwoPair, ThreeOfAKind, SmallStraight,
	LargeStraight, FullHouse, FourOfAKind, FiveOfAKind,
}

var names = map[Type]string{
	Nothing:       "Nothing",
	Pair:          "Pair",
	TwoPair:       "2 Pair",
	ThreeOfAKind:  "3 of a Kind",
	SmallStraight: "Small Straight",
	LargeStraight: "Large Straight",
	FullHouse:     "Full House",
	FourOfAKind:   "4 of a Kind",
	FiveOfAKind:   "5 of a Kind",
}

// Name returns the display name, e.g. "5 of a Kind".
func (t Type) Name() string {
	if n, ok := names[t]; ok {
		return n
	}
	return string(t)
}

// Valid reports whether t is a known hand type.
func (t Type) Valid() bool {
	_, ok := names[t]
	return ok
}

// Rank returns the precedence of t; higher ranks win. Unknown types rank -1.
func (t Type) Rank() int {
	for i, x := range All {
		if x == t {
			return i
		}
	}
	return -1
}

// ParseType resolves a hand identifier.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("hand: unknown hand type %q", s)
	}
	return t, nil
}

// Options alter classification. The zero value is standard rules.
type Options struct {
	// WildFace, when in [1,6], makes any die showing that value wild.
	WildFace int
	// ShortStraights accepts 4-die runs as Large and 3-die runs as Small.
	ShortStraights bool
}

// Facts is the classification of a held set, exposed to charm effects.
type Facts struct {
	Type Type
	// Size is the number of held dice.
	Size int
	// Counts holds the per-value counts after wild folding; index 0 is unused.
	Counts [7]int
	// Distinct is the sorted set of non-wild values plus the majority value.
	Distinct []int
	// Run is the straight run that was detected. When no run qualified it
	// falls back to Distinct.
	Run []int
	// Majority is the value wild dice were folded into, 0 if none were held.
	Majority int
	// WildCount is the number of dice treated as wild values.
	WildCount int
}

// Classify determines the hand type of values. wild[i] marks die i as a wild
// value independent of its face; dice showing opts.WildFace are also wild.
// Wild dice are folded into the most common non-wild value (ties go to the
// higher value) before the hand is ranked.
//
// Precondition: len(wild) == len(values) or wild is nil; values in [1,6].
// Postcondition: an empty values slice yields Type Nothing.
func Classify(values []int, wild []bool, opts Options) Facts {
	f := Facts{Type: Nothing, Size: len(values)}
	if len(values) == 0 {
		return f
	}

	var counts [7]int
	maxWild := 0
	for i, v := range values {
		isWild := (i < len(wild) && wild[i]) || (opts.WildFace >= 1 && opts.WildFace <= 6 && v == opts.WildFace)
		if isWild {
			f.WildCount++
			if v > maxWild {
				maxWild = v
			}
			continue
		}
		counts[v]++
	}

	if f.WildCount > 0 {
		majority := 0
		for v := 6; v >= 1; v-- {
			if counts[v] > counts[majority] {
				majority = v
			}
		}
		if majority == 0 {
			// Every held die is wild.
			majority = maxWild
			if opts.WildFace >= 1 && opts.WildFace <= 6 {
				majority = opts.WildFace
			}
		}
		counts[majority] += f.WildCount
		f.Majority = majority
	}
	f.Counts = counts

	var groups []int
	for v := 1; v <= 6; v++ {
		if counts[v] > 0 {
			f.Distinct = append(f.Distinct, v)
			groups = append(groups, counts[v])
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(groups)))
	first, second := groups[0], 0
	if len(groups) > 1 {
		second = groups[1]
	}

	largeNeed, smallNeed := 5, 4
	if opts.ShortStraights {
		largeNeed, smallNeed = 4, 3
	}
	large := findRun(f.Distinct, largeNeed)
	small := findRun(f.Distinct, smallNeed)
	f.Run = large
	if f.Run == nil {
		f.Run = small
	}
	if f.Run == nil {
		f.Run = f.Distinct
	}

	switch {
	case first >= 5:
		f.Type = FiveOfAKind
	case first == 4:
		f.Type = FourOfAKind
	case first == 3 && second >= 2:
		f.Type = FullHouse
	case large != nil:
		f.Type = LargeStraight
	case small != nil:
		f.Type = SmallStraight
	case first == 3:
		f.Type = ThreeOfAKind
	case first == 2 && second == 2:
		f.Type = TwoPair
	case first == 2:
		f.Type = Pair
	}
	return f
}

// findRun returns the first run of at least need consecutive values in the
// sorted distinct slice, or nil.
func findRun(distinct []int, need int) []int {
	if need <= 0 || len(distinct) < need {
		return nil
	}
	start := 0
	for i := 1; i <= len(distinct); i++ {
		if i == len(distinct) || distinct[i] != distinct[i-1]+1 {
			if i-start >= need {
				return append([]int(nil), distinct[start:i]...)
			}
			start = i
		}
	}
	return nil
}
