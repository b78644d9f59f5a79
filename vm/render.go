package vm

import (
	"math"

	"github.com/padseq/padseq"
	"github.com/viterin/vek/vek32"
)

var (
	oscType      = paramIndex(padseq.Oscillator, "type")
	oscFrequency = paramIndex(padseq.Oscillator, "frequency")
	oscDetune    = paramIndex(padseq.Oscillator, "detune")
	gainGain     = paramIndex(padseq.Gain, "gain")
	filterType   = paramIndex(padseq.Filter, "type")
	filterFreq   = paramIndex(padseq.Filter, "frequency")
	filterQ      = paramIndex(padseq.Filter, "q")
	constOffset  = paramIndex(padseq.Constant, "offset")
)

// Render adds the output of the graph into dst, which is interleaved stereo.
// frame is the absolute frame number of dst[0], so that frame / sample rate is
// the time of the first sample on the same clock as the start and stop times.
func (g *Graph) Render(dst []float32, frame int64) {
	frames := len(dst) / 2
	for done := 0; done < frames; {
		n := min(blockSize, frames-done)
		g.renderBlock(n, frame+int64(done))
		out := dst[2*done : 2*(done+n)]
		for _, i := range g.mix {
			for k, v := range g.units[i].out[:n] {
				out[2*k] += v
				out[2*k+1] += v
			}
		}
		done += n
	}
}

func (g *Graph) renderBlock(n int, frame int64) {
	for i := range g.units {
		u := &g.units[i]
		for p, mods := range u.mods {
			if len(mods) == 0 {
				continue
			}
			c := vek32.Zeros_Into(u.ctrl[p], n)
			for _, m := range mods {
				vek32.Add_Inplace(c, g.units[m].out[:n])
			}
			vek32.AddNumber_Inplace(c, float32(u.values[p]))
		}
		out := vek32.Zeros_Into(u.out, n)
		for _, in := range u.inputs {
			vek32.Add_Inplace(out, g.units[in].out[:n])
		}
		switch u.kind {
		case padseq.Gain:
			if len(u.mods[gainGain]) > 0 {
				vek32.Mul_Inplace(out, u.ctrl[gainGain][:n])
			} else {
				vek32.MulNumber_Inplace(out, float32(u.values[gainGain]))
			}
		case padseq.Filter:
			g.filter(u, out)
		case padseq.Oscillator:
			g.oscillate(u, out, frame)
		case padseq.Constant:
			for k := range out {
				if u.sounding(g.time(frame, k)) {
					out[k] = float32(u.param(constOffset, k))
				}
			}
		}
	}
}

func (g *Graph) time(frame int64, k int) float64 {
	return float64(frame+int64(k)) / g.sampleRate
}

func (u *unit) sounding(t float64) bool {
	return t >= u.start && t < u.stop
}

func (u *unit) param(p, k int) float64 {
	if u.ctrl[p] != nil && len(u.mods[p]) > 0 {
		return float64(u.ctrl[p][k])
	}
	return u.values[p]
}

func (g *Graph) oscillate(u *unit, out []float32, frame int64) {
	waveform := int(u.values[oscType])
	for k := range out {
		if !u.sounding(g.time(frame, k)) {
			continue
		}
		freq := u.param(oscFrequency, k) * math.Exp2(u.param(oscDetune, k)/1200)
		out[k] = float32(waveformAt(waveform, u.phase))
		u.phase += freq / g.sampleRate
		u.phase -= math.Floor(u.phase)
	}
}

func waveformAt(waveform int, phase float64) float64 {
	switch waveform {
	case padseq.Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case padseq.Sawtooth:
		return 2*phase - 1
	case padseq.Triangle:
		return 1 - 4*math.Abs(phase-0.5)
	}
	return math.Sin(2 * math.Pi * phase)
}

// filter runs a biquad over out in place. Coefficients are computed once per
// block from the first sample of the frequency and q parameters.
func (g *Graph) filter(u *unit, out []float32) {
	freq := math.Max(1, math.Min(u.param(filterFreq, 0), 0.49*g.sampleRate))
	q := math.Max(1e-4, u.param(filterQ, 0))
	w0 := 2 * math.Pi * freq / g.sampleRate
	cos, alpha := math.Cos(w0), math.Sin(w0)/(2*q)
	var b0, b1, b2 float64
	switch int(u.values[filterType]) {
	case padseq.Highpass:
		b0, b1, b2 = (1+cos)/2, -(1 + cos), (1+cos)/2
	case padseq.Bandpass:
		b0, b1, b2 = alpha, 0, -alpha
	default:
		b0, b1, b2 = (1-cos)/2, 1-cos, (1-cos)/2
	}
	a0 := 1 + alpha
	a1, a2 := -2*cos/a0, (1-alpha)/a0
	b0, b1, b2 = b0/a0, b1/a0, b2/a0
	for k, v := range out {
		x := float64(v)
		y := b0*x + u.s1
		u.s1 = b1*x - a1*y + u.s2
		u.s2 = b2*x - a2*y
		out[k] = float32(y)
	}
}
