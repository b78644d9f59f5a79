package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/padseq/padseq"
	"github.com/padseq/padseq/cmd"
	"github.com/padseq/padseq/instrument"
	"github.com/padseq/padseq/oto"
	"github.com/padseq/padseq/tracker"
	"github.com/padseq/padseq/version"
)

const (
	renderBlock       = 256 // frames
	alertDrainTimeout = 50 * time.Millisecond
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	bpm := flag.Float64("bpm", 0, "Tempo in beats per minute. Defaults to the preferences.")
	scale := flag.String("scale", "", "Scale, one of: "+strings.Join(padseq.ScaleNames, ", ")+". Defaults to the preferences.")
	instrumentName := flag.String("i", "", "Instrument preset for the pad and the MIDI keyboard. Defaults to the preferences.")
	arp := flag.String("arp", "", "Arpeggiate held notes with this pattern: up, down or up-down.")
	demo := flag.Bool("demo", false, "Play a demo pattern.")
	midiIn := flag.String("midi", "", "Open the first MIDI input whose name starts with this. Defaults to the preferences.")
	duration := flag.Duration("t", 0, "Stop after this long. Required when rendering to a file.")
	wavOut := flag.String("w", "", "Do not play; render into this .wav file instead.")
	rawOut := flag.String("r", "", "Do not play; render into this .raw file instead. By default, saves stereo float32 samples.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when rendering.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	prefs := tracker.MakePreferences()
	if prefs.YmlError != nil {
		fmt.Fprintf(os.Stderr, "could not read preferences.yml, using defaults: %v\n", prefs.YmlError)
	}
	if *bpm > 0 {
		prefs.BPM = *bpm
	}
	if *scale != "" {
		if _, ok := padseq.Scales[*scale]; !ok {
			fmt.Fprintf(os.Stderr, "unknown scale %q\n", *scale)
			os.Exit(1)
		}
		prefs.Scale = *scale
	}
	if *instrumentName != "" {
		prefs.Instrument = *instrumentName
	}
	if *arp != "" {
		prefs.Arpeggiator, prefs.ArpeggiatorPattern = true, *arp
	}
	if *midiIn != "" {
		prefs.MIDIInput = *midiIn
	}
	broker := tracker.NewBroker()
	rack := instrument.NewPresetRack(prefs.SampleRate, instrument.LoadPresets(broker), broker)
	model := tracker.NewModel(prefs)
	engine := tracker.NewEngine(model, rack, rack, broker, prefs)
	if *demo {
		for _, msg := range demoMessages() {
			engine.Handle(msg)
		}
	}
	offline := *wavOut != "" || *rawOut != ""
	if offline {
		if *duration <= 0 {
			fmt.Fprintf(os.Stderr, "rendering to a file needs a duration (-t)\n")
			os.Exit(1)
		}
		if err := render(engine, rack, broker, prefs.SampleRate, *duration, *wavOut, *rawOut, *pcm); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}
	if err := play(engine, rack, broker, prefs, *duration); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// demoMessages builds a two bar arpeggio on the default synth pattern.
func demoMessages() []any {
	var ret []any
	for x, y := range []int{15, 13, 11, 8, 11, 13, 15, 8} {
		ret = append(ret, tracker.ToggleCell{PatternID: 0, X: x, Y: y})
	}
	return append(ret, tracker.PlayPattern{PatternID: 0})
}

func play(engine *tracker.Engine, rack *instrument.Rack, broker *tracker.Broker, prefs tracker.Preferences, duration time.Duration) error {
	audioContext, err := oto.NewContext(prefs.SampleRate)
	if err != nil {
		return fmt.Errorf("could not acquire oto AudioContext: %w", err)
	}
	defer audioContext.Close()
	player, err := audioContext.Play(rack)
	if err != nil {
		return err
	}
	defer player.Close()
	midiContext := cmd.NewMidiContext(broker)
	defer midiContext.Close()
	if prefs.MIDIInput != "" {
		if input, err := tracker.OpenMIDIInput(midiContext, prefs.MIDIInput); err != nil {
			fmt.Fprintf(os.Stderr, "could not open MIDI input %q: %v\n", prefs.MIDIInput, err)
		} else {
			defer input.Close()
		}
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}
	go engine.Run(ctx)
	for {
		select {
		case msg := <-broker.ToModel:
			if msg.HasAlert {
				log.Println(msg.Alert)
			}
		case <-broker.FinishedEngine:
			// alerts sent while the engine was closing
			for msg, ok := tracker.TimeoutReceive(broker.ToModel, alertDrainTimeout); ok; msg, ok = tracker.TimeoutReceive(broker.ToModel, alertDrainTimeout) {
				if msg.HasAlert {
					log.Println(msg.Alert)
				}
			}
			return nil
		}
	}
}

// render runs the engine against the rack's frame clock, ticking it once per
// block.
func render(engine *tracker.Engine, rack *instrument.Rack, broker *tracker.Broker, sampleRate int, duration time.Duration, wavOut, rawOut string, pcm bool) error {
	frames := int(duration.Seconds() * float64(sampleRate))
	buffer := make([]float32, 2*frames)
	for i := 0; i < frames; i += renderBlock {
		engine.Tick()
		n := min(renderBlock, frames-i)
		rack.Process(buffer[2*i : 2*(i+n)])
		printAlerts(broker)
	}
	engine.StopAll()
	if wavOut != "" {
		wav, err := padseq.Wav(buffer, sampleRate, pcm)
		if err != nil {
			return fmt.Errorf("could not generate .wav file: %v", err)
		}
		if err := output(wavOut, wav); err != nil {
			return err
		}
	}
	if rawOut != "" {
		raw, err := padseq.Raw(buffer, pcm)
		if err != nil {
			return fmt.Errorf("could not generate .raw file: %v", err)
		}
		if err := output(rawOut, raw); err != nil {
			return err
		}
	}
	return nil
}

func printAlerts(broker *tracker.Broker) {
	for {
		select {
		case msg := <-broker.ToModel:
			if msg.HasAlert {
				log.Println(msg.Alert)
			}
		default:
			return
		}
	}
}

func output(filename string, contents []byte) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
	}
	if err := os.WriteFile(filename, contents, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %v", filename, err)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "padseq player. Plays the instrument presets from a MIDI keyboard or a demo pattern, or renders them into a file.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}
