package tracker

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// Preferences are the user settings read at startup. Pad settings, tempo and
// scale are the initial values of the Model.
type Preferences struct {
	BPM                float64
	Scale              string
	RootNote           int
	Octave             int
	Range              float64
	Instrument         string
	Arpeggiator        bool
	ArpeggiatorPattern string
	NoScale            bool
	Portamento         bool
	SampleRate         int
	Lookahead          float64       // seconds
	TickInterval       time.Duration // how often the engine polls the clock
	MIDIInput          string        // open the first MIDI input whose name starts with this

	YmlError error `yaml:"-"`
}

//go:embed preferences.yml
var defaultPreferencesYaml []byte

func DefaultPreferences() Preferences {
	var p Preferences
	if err := yaml.UnmarshalStrict(defaultPreferencesYaml, &p); err != nil {
		panic(fmt.Errorf("failed to unmarshal preferences: %w", err))
	}
	return p
}

// ReadCustomConfigYml reads filename from os.UserConfigDir()/padseq into
// target, which should be a pointer.
func ReadCustomConfigYml(filename string, target any) (exists bool, err error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return false, err
	}
	bytes, err := os.ReadFile(filepath.Join(configDir, "padseq", filename))
	if err != nil {
		return false, err
	}
	return true, yaml.UnmarshalStrict(bytes, target)
}

// MakePreferences returns the defaults overlaid with the user's
// preferences.yml. A broken user file is kept in YmlError and the defaults are
// used for the fields it could not set.
func MakePreferences() Preferences {
	p := DefaultPreferences()
	if exists, err := ReadCustomConfigYml("preferences.yml", &p); exists {
		p.YmlError = err
	}
	return p
}
