package ember

import (
	"math"
	"math/rand/v2"
	"time"
)

// GameMath bundles the game's seeded random source with small numeric
// helpers. A nil *GameMath draws from the process-wide source.
type GameMath struct {
	seed uint64
	rng  *rand.Rand
}

func newGameMath(seed uint64, now func() time.Time) *GameMath {
	if seed == 0 {
		seed = uint64(now().UnixNano())
	}
	return NewGameMath(seed)
}

// NewGameMath creates a deterministic source for seed.
func NewGameMath(seed uint64) *GameMath {
	return &GameMath{seed: seed, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Seed returns the seed the source was created with.
func (m *GameMath) Seed() uint64 {
	if m == nil {
		return 0
	}
	return m.seed
}

// Frac returns a value in [0, 1).
func (m *GameMath) Frac() float64 {
	if m == nil {
		return rand.Float64()
	}
	return m.rng.Float64()
}

// Integer returns a non-negative pseudo-random int.
func (m *GameMath) Integer() int {
	if m == nil {
		return rand.Int()
	}
	return m.rng.Int()
}

// IntBetween returns an int in [min, max].
func (m *GameMath) IntBetween(min, max int) int {
	if max < min {
		min, max = max, min
	}
	n := max - min + 1
	if m == nil {
		return min + rand.IntN(n)
	}
	return min + m.rng.IntN(n)
}

// FloatBetween returns a float64 in [min, max).
func (m *GameMath) FloatBetween(min, max float64) float64 {
	return min + m.Frac()*(max-min)
}

// ChanceRoll reports true with the given percentage (0..100) chance.
func (m *GameMath) ChanceRoll(percent float64) bool {
	switch {
	case percent <= 0:
		return false
	case percent >= 100:
		return true
	}
	return m.Frac()*100 < percent
}

// Pick returns a random index into a collection of length n, or -1 when n is 0.
func (m *GameMath) Pick(n int) int {
	if n <= 0 {
		return -1
	}
	return m.IntBetween(0, n-1)
}

// Clamp limits v to [min, max].
func Clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(v, max))
}

// Wrap wraps v into [min, max).
func Wrap(v, min, max float64) float64 {
	r := max - min
	if r == 0 {
		return min
	}
	v = math.Mod(v-min, r)
	if v < 0 {
		v += r
	}
	return v + min
}

// WrapAngle wraps an angle in radians into [-Pi, Pi).
func WrapAngle(a float64) float64 {
	return Wrap(a, -math.Pi, math.Pi)
}

// SnapTo rounds v to the nearest multiple of gap. A zero gap returns v.
func SnapTo(v, gap float64) float64 {
	if gap == 0 {
		return v
	}
	return math.Round(v/gap) * gap
}

// Distance returns the distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// AngleBetween returns the angle in radians from (x1, y1) to (x2, y2).
func AngleBetween(x1, y1, x2, y2 float64) float64 {
	return math.Atan2(y2-y1, x2-x1)
}

// DegToRad converts degrees to radians.
func DegToRad(d float64) float64 { return d * math.Pi / 180 }

// RadToDeg converts radians to degrees.
func RadToDeg(r float64) float64 { return r * 180 / math.Pi }

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
