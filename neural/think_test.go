package neural

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

type fixedSenses map[Sensor]float64

func (f fixedSenses) Sense(s Sensor) (float64, error) {
	v, ok := f[s]
	if !ok {
		return 0, ErrUnknownSensor
	}
	return v, nil
}

type move struct {
	dir      Rotation
	strength float64
}

type fakeBody struct {
	heading Rotation
	queued  *move
	moves   int
	period  int
}

func (f *fakeBody) Heading() Rotation { return f.heading }

func (f *fakeBody) Move(dir Rotation, strength float64) {
	f.moves++
	if f.queued == nil || f.queued.strength < strength {
		f.queued = &move{dir, strength}
	}
}

func (f *fakeBody) SetOscillator(c float64) error {
	p, err := OscillatorPeriod(c)
	if err != nil {
		return err
	}
	f.period = p
	return nil
}

// certaintyConn builds a single-input connection that yields tanh(bias) when
// the input senses zero.
func certaintyConn(action Action, certainty float64) Connection {
	return Connection{
		Inputs:  []Sensor{SensorAge},
		Weights: []float64{1},
		Bias:    math.Atanh(certainty),
		Output:  action,
	}
}

func TestThinkDirectionalActions(t *testing.T) {
	tests := []struct {
		name      string
		action    Action
		heading   Rotation
		certainty float64
		want      Rotation
		fires     bool
	}{
		{"forward", ActionMoveForward, Left, 0.5, Left, true},
		{"forward negative", ActionMoveForward, Left, -0.5, 0, false},
		{"reverse", ActionMoveReverse, Up, 0.5, Down, true},
		{"reverse negative", ActionMoveReverse, Up, -0.1, 0, false},
		{"left of up", ActionMoveLeftRight, Up, -0.3, Left, true},
		{"right of up", ActionMoveLeftRight, Up, 0.3, Right, true},
		{"right of left", ActionMoveLeftRight, Left, 0.9, Up, true},
		{"x negative", ActionMoveX, Down, -0.2, Left, true},
		{"x positive", ActionMoveX, Down, 0.2, Right, true},
		{"y negative", ActionMoveY, Right, -0.6, Up, true},
		{"y positive", ActionMoveY, Right, 0.6, Down, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Brain{Connections: []Connection{certaintyConn(tt.action, tt.certainty)}, Params: DefaultParams()}
			body := &fakeBody{heading: tt.heading}
			err := b.Think(rand.New(rand.NewSource(1)), fixedSenses{SensorAge: 0}, body)
			if err != nil {
				t.Fatalf("Think: %v", err)
			}
			if !tt.fires {
				if body.queued != nil {
					t.Fatalf("unexpected move %+v", *body.queued)
				}
				return
			}
			if body.queued == nil {
				t.Fatal("expected a queued move")
			}
			if body.queued.dir != tt.want {
				t.Errorf("direction = %s, want %s", body.queued.dir, tt.want)
			}
			if math.Abs(body.queued.strength-math.Abs(tt.certainty)) > 1e-9 {
				t.Errorf("strength = %v, want %v", body.queued.strength, math.Abs(tt.certainty))
			}
		})
	}
}

func TestThinkDeadZone(t *testing.T) {
	params := DefaultParams()
	params.DirectionalDeadZone = 0.8

	for _, c := range []float64{-0.5, 0, 0.79} {
		b := &Brain{Connections: []Connection{certaintyConn(ActionMoveX, c)}, Params: params}
		body := &fakeBody{}
		if err := b.Think(rand.New(rand.NewSource(1)), fixedSenses{SensorAge: 0}, body); err != nil {
			t.Fatal(err)
		}
		if body.queued != nil {
			t.Errorf("certainty %v inside dead zone fired", c)
		}
	}

	for _, c := range []float64{-0.85, 0.85} {
		b := &Brain{Connections: []Connection{certaintyConn(ActionMoveX, c)}, Params: params}
		body := &fakeBody{}
		if err := b.Think(rand.New(rand.NewSource(1)), fixedSenses{SensorAge: 0}, body); err != nil {
			t.Fatal(err)
		}
		if body.queued == nil {
			t.Errorf("certainty %v outside dead zone did not fire", c)
		}
	}
}

func TestThinkStrongestMoveWins(t *testing.T) {
	b := &Brain{
		Connections: []Connection{
			certaintyConn(ActionMoveX, 0.3),
			certaintyConn(ActionMoveY, -0.7),
			certaintyConn(ActionMoveForward, 0.5),
		},
		Params: DefaultParams(),
	}
	body := &fakeBody{heading: Right}
	if err := b.Think(rand.New(rand.NewSource(1)), fixedSenses{SensorAge: 0}, body); err != nil {
		t.Fatal(err)
	}
	if body.moves != 3 {
		t.Errorf("moves requested = %d, want 3", body.moves)
	}
	if body.queued == nil || body.queued.dir != Up {
		t.Fatalf("queued = %+v, want up", body.queued)
	}
}

func TestThinkClampsSensoryValues(t *testing.T) {
	// Weight 1, bias 0: a clamped input of 1 yields tanh(1).
	b := &Brain{
		Connections: []Connection{{Inputs: []Sensor{SensorPositionX}, Weights: []float64{1}, Output: ActionMoveForward}},
		Params:      DefaultParams(),
	}
	body := &fakeBody{heading: Down}
	if err := b.Think(rand.New(rand.NewSource(1)), fixedSenses{SensorPositionX: 7}, body); err != nil {
		t.Fatal(err)
	}
	if body.queued == nil || math.Abs(body.queued.strength-math.Tanh(1)) > 1e-12 {
		t.Fatalf("queued = %+v, want strength tanh(1)", body.queued)
	}

	// Negative input clamps to zero, leaving only the negative bias.
	b.Connections[0].Bias = -0.1
	body = &fakeBody{heading: Down}
	if err := b.Think(rand.New(rand.NewSource(1)), fixedSenses{SensorPositionX: -3}, body); err != nil {
		t.Fatal(err)
	}
	if body.queued != nil {
		t.Errorf("clamped negative input still moved: %+v", *body.queued)
	}
}

func TestThinkSetOscillator(t *testing.T) {
	b := &Brain{Connections: []Connection{certaintyConn(ActionSetOscillator, 0.5)}, Params: DefaultParams()}
	body := &fakeBody{period: 20}
	if err := b.Think(rand.New(rand.NewSource(1)), fixedSenses{SensorAge: 0}, body); err != nil {
		t.Fatal(err)
	}
	want, _ := OscillatorPeriod(0.5)
	if body.period != want {
		t.Errorf("period = %d, want %d", body.period, want)
	}
}

func TestThinkPropagatesFaults(t *testing.T) {
	b := &Brain{Connections: []Connection{{Inputs: []Sensor{SensorOscillator}, Weights: []float64{1}, Output: ActionMoveX}}}
	err := b.Think(rand.New(rand.NewSource(1)), fixedSenses{}, &fakeBody{})
	if !errors.Is(err, ErrUnknownSensor) {
		t.Errorf("missing sensor error = %v", err)
	}

	b = &Brain{Connections: []Connection{{Inputs: []Sensor{SensorAge}, Weights: []float64{1}, Output: NumActions}}}
	err = b.Think(rand.New(rand.NewSource(1)), fixedSenses{SensorAge: 0}, &fakeBody{})
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("unknown action error = %v", err)
	}

	b = &Brain{Connections: []Connection{{Inputs: []Sensor{SensorAge, SensorAge}, Weights: []float64{1}, Output: ActionMoveX}}}
	err = b.Think(rand.New(rand.NewSource(1)), fixedSenses{SensorAge: 0}, &fakeBody{})
	if !errors.Is(err, ErrArityMismatch) {
		t.Errorf("arity error = %v", err)
	}
}

func TestOscillatorPeriodRange(t *testing.T) {
	for c := -1.0; c <= 1.0; c += 0.01 {
		p, err := OscillatorPeriod(c)
		if err != nil {
			t.Fatalf("OscillatorPeriod(%v): %v", c, err)
		}
		if p < MinOscillatorPeriod || p > MaxOscillatorPeriod {
			t.Fatalf("OscillatorPeriod(%v) = %d outside range", c, p)
		}
	}
	for _, c := range []float64{math.Inf(1), math.Inf(-1), 100, -100} {
		if _, err := OscillatorPeriod(c); err != nil {
			t.Errorf("OscillatorPeriod(%v): %v", c, err)
		}
	}
	if _, err := OscillatorPeriod(math.NaN()); !errors.Is(err, ErrOscillatorRange) {
		t.Errorf("NaN certainty error = %v", err)
	}
}

func TestRotationHelpers(t *testing.T) {
	for r := Rotation(0); r < NumRotations; r++ {
		if r.Reverse().Reverse() != r {
			t.Errorf("%s reversed twice = %s", r, r.Reverse().Reverse())
		}
		if r.TurnLeft().TurnRight() != r {
			t.Errorf("%s left then right = %s", r, r.TurnLeft().TurnRight())
		}
		dx, dy, err := r.Delta()
		if err != nil || dx*dx+dy*dy != 1 {
			t.Errorf("%s delta = (%d, %d), %v", r, dx, dy, err)
		}
	}
	if _, _, err := Rotation(4).Delta(); !errors.Is(err, ErrInvalidRotation) {
		t.Errorf("invalid rotation error = %v", err)
	}
}
