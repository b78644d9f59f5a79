package padseq

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Scale is an ordered list of semitone offsets within one octave. A Scale
// used for pitch lookup must not be empty.
type Scale []int

// Scales lists the named scales selectable in the preferences.
var Scales = map[string]Scale{
	"major":            {0, 2, 4, 5, 7, 9, 11},
	"minor":            {0, 2, 3, 5, 7, 8, 10},
	"harmonic minor":   {0, 2, 3, 5, 7, 8, 11},
	"melodic minor":    {0, 2, 3, 5, 7, 9, 11},
	"dorian":           {0, 2, 3, 5, 7, 9, 10},
	"phrygian":         {0, 1, 3, 5, 7, 8, 10},
	"lydian":           {0, 2, 4, 6, 7, 9, 11},
	"mixolydian":       {0, 2, 4, 5, 7, 9, 10},
	"locrian":          {0, 1, 3, 5, 6, 8, 10},
	"pentatonic":       {0, 2, 4, 7, 9},
	"minor pentatonic": {0, 3, 5, 7, 10},
	"blues":            {0, 3, 5, 6, 7, 10},
	"whole tone":       {0, 2, 4, 6, 8, 10},
	"chromatic":        {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

// ScaleNames is a list of the keys of Scales, sorted alphabetically.
var ScaleNames []string

func init() {
	ScaleNames = make([]string, 0, len(Scales))
	for k := range Scales {
		ScaleNames = append(ScaleNames, k)
	}
	sort.Strings(ScaleNames)
}

// Arpeggiator patterns understood by ArpeggiatedScale.
const (
	ArpeggioUp     = "up"
	ArpeggioDown   = "down"
	ArpeggioUpDown = "up-down"
)

var noteNames = [...]string{"A", "A#/Bb", "B", "C", "C#/Db", "D", "D#/Eb", "E", "F", "F#/Gb", "G", "G#/Ab"}

// PitchFromRatio maps ratio, normally in [0, 1), onto the scale. The ratio
// selects one of len(scale)+1 positions, so the top of the range reaches the
// octave above the root; ratios beyond 1 keep climbing octaves.
func PitchFromRatio(scale Scale, ratio float64) (int, error) {
	if len(scale) == 0 {
		return 0, &EmptyScaleError{}
	}
	i := int(math.Floor(float64(len(scale)+1) * ratio))
	return PitchFromScaleIndex(scale, i)
}

// PitchFromScaleIndex returns the pitch of the i-th degree of the scale,
// adding an octave for every full wrap. Negative indices fold downwards.
func PitchFromScaleIndex(scale Scale, i int) (int, error) {
	n := len(scale)
	if n == 0 {
		return 0, &EmptyScaleError{}
	}
	return scale[(i%n+n)%n] + 12*floorDiv(i, n), nil
}

// PitchToFrequency converts a semitone offset from A4 into Hz, in equal
// temperament. Fractional pitches are allowed.
func PitchToFrequency(pitch float64) float64 {
	return 440 * math.Pow(2, pitch/12)
}

// NoteName returns the scientific pitch name of the pitch, e.g. "A4" for 0 and
// "C#/Db5" for 4. Octave numbers change at C.
func NoteName(pitch int) string {
	name := noteNames[(pitch%12+12)%12]
	return fmt.Sprintf("%s%d", name, floorDiv(pitch+9, 12)+4)
}

// ArpeggiatedScale returns the finite list of semitone steps an arpeggiator
// cycles through for the given pattern. The steps span the scale and the
// octave on top of it; "up-down" does not repeat the turning points.
func ArpeggiatedScale(scale Scale, pattern string) ([]int, error) {
	if len(scale) == 0 {
		return nil, &EmptyScaleError{}
	}
	up := append(slices.Clone([]int(scale)), scale[0]+12)
	switch pattern {
	case ArpeggioDown:
		slices.Reverse(up)
		return up, nil
	case ArpeggioUpDown:
		ret := slices.Clone(up)
		for i := len(up) - 2; i > 0; i-- {
			ret = append(ret, up[i])
		}
		return ret, nil
	case ArpeggioUp, "":
		return up, nil
	}
	return nil, fmt.Errorf("unknown arpeggiator pattern %q", pattern)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
