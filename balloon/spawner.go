package balloon

import (
	"math"
	"math/rand/v2"
)

const (
	DefaultMaxWidth  = 160
	DefaultMaxActive = 40

	startPadding = 24.0
	// edgeGap is how far past the edge a balloon starts.
	edgeGap = 12.0
	// bandFraction is the share of the usable width balloons launch from.
	bandFraction = 0.35

	WobbleAmplitudeMin = 5.0
	WobbleAmplitudeMax = 28.0
	WobbleFreqMin      = 1.2
	WobbleFreqMax      = 2.6
)

// Launch is the initial state chosen for a new balloon.
type Launch struct {
	X, Y   float64
	VX, VY float64
	Speed  float64
	Wobble Wobble
}

// Spawner picks launch parameters. It is not safe for concurrent use; the
// scheduler owns one.
type Spawner struct {
	rng       *rand.Rand
	amplitude [2]float64
	frequency [2]float64
}

// NewSpawner returns a spawner drawing from rng, or from a randomly seeded
// source when rng is nil.
func NewSpawner(rng *rand.Rand) *Spawner {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Spawner{
		rng:       rng,
		amplitude: [2]float64{WobbleAmplitudeMin, WobbleAmplitudeMax},
		frequency: [2]float64{WobbleFreqMin, WobbleFreqMax},
	}
}

// SetWobble overrides the amplitude and frequency ranges.
func (s *Spawner) SetWobble(ampMin, ampMax, freqMin, freqMax float64) {
	s.amplitude = [2]float64{ampMin, ampMax}
	s.frequency = [2]float64{freqMin, freqMax}
}

func (s *Spawner) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Plan chooses where and how a w x h image enters a surfaceW x surfaceH
// surface under cfg.
func (s *Spawner) Plan(surfaceW, surfaceH, w, h int, cfg Config) Launch {
	left, top := cfg.Corner.Left(), cfg.Corner.Top()

	halfW := float64(w) / 2
	minX := startPadding + halfW
	maxX := math.Max(minX+1, float64(surfaceW)-minX)
	span := math.Max(1, (maxX-minX)*bandFraction)
	var x0, x1 float64
	if left {
		x0, x1 = minX, math.Min(maxX, minX+span)
	} else {
		x0, x1 = math.Max(minX, maxX-span), maxX
	}

	var l Launch
	l.X = s.uniform(x0, x1)
	yOff := float64(h)/2 + edgeGap
	if top {
		l.Y = -yOff
	} else {
		l.Y = float64(surfaceH) + yOff
	}

	lo, hi := cfg.SpeedRange()
	l.Speed = s.uniform(lo, hi)

	horizontal, vertical := -1.0, -1.0
	if left {
		horizontal = 1
	}
	if top {
		vertical = 1
	}
	l.VX = s.uniform(-0.15*l.Speed, 0.15*l.Speed) + horizontal*s.uniform(0.05*l.Speed, 0.25*l.Speed)
	l.VY = vertical * l.Speed

	l.Wobble = Wobble{
		Phase:     s.uniform(0, 2*math.Pi),
		Amplitude: s.uniform(s.amplitude[0], s.amplitude[1]),
		Frequency: s.uniform(s.frequency[0], s.frequency[1]),
	}
	return l
}
