package scenario

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/tip/errors"
)

// Step is one parsed scenario step
type Step struct {
	// Index is the 1-based position in the scenario
	Index int
	Op    string
	// Selector is the element the step acts on, for ops that take one
	Selector string
	Args     []string
	// Wait is the duration of a wait step
	Wait time.Duration
	// X and Y are the client point of a mousemove step
	X, Y float64
}

// opSpec says how many arguments an op takes and whether the first is a selector
type opSpec struct {
	args     int
	selector bool
}

var ops = map[string]opSpec{
	"mouseenter": {1, true},
	"mouseleave": {0, false},
	"mousemove":  {2, false},
	"click":      {1, true},
	"focus":      {1, true},
	"blur":       {0, false},
	"touchstart": {1, true},
	"wait":       {1, false},
	"attr":       {3, true},
	"detach":     {1, true},
	"show":       {1, true},
	"hide":       {1, true},
	"destroy":    {1, true},
	"state":      {1, true},
}

// Ops lists the step operations in alphabetical order
func Ops() []string {
	out := make([]string, 0, len(ops))
	for op := range ops {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

// ParseStep tokenises a step line with shell quoting rules:
//
//	attr "#a" title 'Two words'
func ParseStep(line string) (Step, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return Step{}, errors.Mark(errors.Wrapf(err, "failed to tokenise %q", line), errors.ErrConfiguration)
	}
	if len(words) == 0 {
		return Step{}, errors.NewConfigurationError("empty step")
	}

	op := strings.ToLower(words[0])
	def, ok := ops[op]
	if !ok {
		err := errors.NewConfigurationError("unknown step %q", words[0])
		return Step{}, errors.WithHintf(err, "steps: %s", strings.Join(Ops(), ", "))
	}
	args := words[1:]
	if len(args) != def.args {
		return Step{}, errors.NewConfigurationError("%s takes %d argument(s), got %d", op, def.args, len(args))
	}

	step := Step{Op: op, Args: args}
	if def.selector {
		step.Selector = args[0]
	}
	switch op {
	case "wait":
		d, err := parseWait(args[0])
		if err != nil {
			return Step{}, err
		}
		step.Wait = d
	case "mousemove":
		x, errX := strconv.ParseFloat(args[0], 64)
		y, errY := strconv.ParseFloat(args[1], 64)
		if errX != nil || errY != nil {
			return Step{}, errors.NewConfigurationError("mousemove needs numeric x y, got %q %q", args[0], args[1])
		}
		step.X, step.Y = x, y
	}
	return step, nil
}

// parseWait accepts Go durations and bare numbers of milliseconds
func parseWait(s string) (time.Duration, error) {
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		if ms < 0 {
			return 0, errors.NewConfigurationError("wait must not be negative, got %s", s)
		}
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "invalid wait %q", s), errors.ErrConfiguration)
	}
	if d < 0 {
		return 0, errors.NewConfigurationError("wait must not be negative, got %s", s)
	}
	return d, nil
}

func (s Step) String() string {
	return shellquote.Join(append([]string{s.Op}, s.Args...)...)
}
