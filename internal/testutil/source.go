package testutil

// ScriptedSource is a dice.Source that replays fixed values so tests can force
// specific generator and combat draws.
//
// Intn returns the next scripted int reduced modulo n; Float64 returns the next
// scripted float. When a script is exhausted Intn returns 0 and Float64 returns
// FloatDefault.
type ScriptedSource struct {
	Ints         []int
	Floats       []float64
	FloatDefault float64

	intPos   int
	floatPos int
}

// NewScriptedSource returns a ScriptedSource replaying ints and floats in order.
func NewScriptedSource(ints []int, floats []float64) *ScriptedSource {
	return &ScriptedSource{Ints: ints, Floats: floats, FloatDefault: 0.5}
}

// Intn returns the next scripted int modulo n.
//
// Precondition: n > 0.
func (s *ScriptedSource) Intn(n int) int {
	if n <= 0 {
		panic("testutil: Intn called with n <= 0")
	}
	if s.intPos >= len(s.Ints) {
		return 0
	}
	v := s.Ints[s.intPos]
	s.intPos++
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Float64 returns the next scripted float.
func (s *ScriptedSource) Float64() float64 {
	if s.floatPos >= len(s.Floats) {
		return s.FloatDefault
	}
	v := s.Floats[s.floatPos]
	s.floatPos++
	return v
}

// PushInts appends values to the int script.
func (s *ScriptedSource) PushInts(vals ...int) {
	s.Ints = append(s.Ints, vals...)
}

// PushFloats appends values to the float script.
func (s *ScriptedSource) PushFloats(vals ...float64) {
	s.Floats = append(s.Floats, vals...)
}

// IntsConsumed reports how many scripted ints have been drawn.
func (s *ScriptedSource) IntsConsumed() int { return s.intPos }
