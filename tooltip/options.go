package tooltip

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/errors"
	"github.com/teranos/tip/internal/util"
)

// Options is a resolved, immutable option set
type Options struct {
	A11y              bool             `mapstructure:"a11y"`
	AppendTo          AppendTarget     `mapstructure:"appendTo"`
	Aria              string           `mapstructure:"aria"`
	Content           Content          `mapstructure:"content"`
	Delay             Pair             `mapstructure:"delay"`
	Distance          float64          `mapstructure:"distance"`
	Duration          Pair             `mapstructure:"duration"`
	DynamicTitle      bool             `mapstructure:"dynamicTitle"`
	FollowCursor      FollowCursorMode `mapstructure:"followCursor"`
	HideOnClick       HideOnClickMode  `mapstructure:"hideOnClick"`
	IgnoreAttributes  bool             `mapstructure:"ignoreAttributes"`
	Interactive       bool             `mapstructure:"interactive"`
	InteractiveBorder float64          `mapstructure:"interactiveBorder"`
	Multiple          bool             `mapstructure:"multiple"`
	Placement         string           `mapstructure:"placement"`
	ShowOnInit        bool             `mapstructure:"showOnInit"`
	Sticky            bool             `mapstructure:"sticky"`
	Target            string           `mapstructure:"target"`
	Touch             bool             `mapstructure:"touch"`
	TouchHold         bool             `mapstructure:"touchHold"`
	Trigger           Triggers         `mapstructure:"trigger"`

	OnTrigger func(*Instance, *dom.Event) `mapstructure:"onTrigger"`
	// OnShow and OnHide cancel the transition by returning false
	OnShow   func(*Instance) bool `mapstructure:"onShow"`
	OnMount  func(*Instance)      `mapstructure:"onMount"`
	OnShown  func(*Instance)      `mapstructure:"onShown"`
	OnHide   func(*Instance) bool `mapstructure:"onHide"`
	OnHidden func(*Instance)      `mapstructure:"onHidden"`
}

// BasePlacement returns the placement side without its -start/-end variation
func (o Options) BasePlacement() string {
	return basePlacement(o.Placement)
}

func basePlacement(p string) string {
	side, _, _ := strings.Cut(p, "-")
	return side
}

// Pair holds an in/out duration. A single number applies to both.
type Pair struct {
	In  time.Duration
	Out time.Duration
}

// Symmetric returns a pair with the same value in and out
func Symmetric(d time.Duration) Pair {
	return Pair{In: d, Out: d}
}

// At returns In for index 0 and Out otherwise
func (p Pair) At(i int) time.Duration {
	if i == 0 {
		return p.In
	}
	return p.Out
}

// HideOnClickMode is true, false or "persistent"
type HideOnClickMode int

const (
	HideOnClickEnabled HideOnClickMode = iota
	HideOnClickDisabled
	// HideOnClickPersistent keeps click-triggered tooltips open on reference clicks
	HideOnClickPersistent
)

// IsTrue reports the plain true mode
func (m HideOnClickMode) IsTrue() bool { return m == HideOnClickEnabled }

func (m HideOnClickMode) String() string {
	switch m {
	case HideOnClickDisabled:
		return "false"
	case HideOnClickPersistent:
		return "persistent"
	}
	return "true"
}

// FollowCursorMode is false, true, "horizontal", "vertical" or "initial"
type FollowCursorMode int

const (
	FollowCursorOff FollowCursorMode = iota
	FollowCursorOn
	FollowCursorHorizontal
	FollowCursorVertical
	FollowCursorInitial
)

func (m FollowCursorMode) String() string {
	switch m {
	case FollowCursorOn:
		return "true"
	case FollowCursorHorizontal:
		return "horizontal"
	case FollowCursorVertical:
		return "vertical"
	case FollowCursorInitial:
		return "initial"
	}
	return "false"
}

// Triggers is the parsed trigger list
type Triggers []string

// Has reports whether name is configured
func (t Triggers) Has(name string) bool {
	for _, n := range t {
		if n == name {
			return true
		}
	}
	return false
}

// IsManual reports a trigger set that registers no listeners
func (t Triggers) IsManual() bool {
	return len(t) == 0 || t.Has("manual")
}

func (t Triggers) String() string { return strings.Join(t, " ") }

// Content is text (inserted as markup) or an element
type Content struct {
	Text    string
	Element *dom.Element
}

// IsEmpty reports no content
func (c Content) IsEmpty() bool {
	return c.Element == nil && c.Text == ""
}

// AppendTarget is where the floating element mounts. The zero value is the
// document body.
type AppendTarget struct {
	Parent  bool
	Element *dom.Element
}

var (
	pairType         = reflect.TypeOf(Pair{})
	hideOnClickType  = reflect.TypeOf(HideOnClickMode(0))
	followCursorType = reflect.TypeOf(FollowCursorMode(0))
	triggersType     = reflect.TypeOf(Triggers(nil))
	contentType      = reflect.TypeOf(Content{})
	appendTargetType = reflect.TypeOf(AppendTarget{})
	guardType        = reflect.TypeOf((func(*Instance) bool)(nil))
)

// decodeOptions decodes fully merged props into Options
func decodeOptions(merged Props) (Options, error) {
	var opts Options
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			pairHook,
			hideOnClickHook,
			followCursorHook,
			triggersHook,
			contentHook,
			appendTargetHook,
			guardHook,
		),
		ErrorUnused: true,
		Result:      &opts,
	})
	if err != nil {
		return Options{}, errors.Wrap(err, "build options decoder")
	}
	if err := decoder.Decode(map[string]any(merged)); err != nil {
		return Options{}, errors.Mark(errors.Wrap(err, "decode options"), errors.ErrConfiguration)
	}
	if err := validatePlacement(opts.Placement); err != nil {
		return Options{}, err
	}
	if opts.Delay.In < 0 || opts.Delay.Out < 0 || opts.Duration.In < 0 || opts.Duration.Out < 0 {
		return Options{}, errors.NewConfigurationError("delay and duration must not be negative")
	}
	return opts, nil
}

var placements = map[string]bool{"top": true, "bottom": true, "left": true, "right": true}

func validatePlacement(p string) error {
	side, variation, hasVariation := strings.Cut(p, "-")
	if !placements[side] || (hasVariation && variation != "start" && variation != "end") {
		err := errors.NewConfigurationError("invalid placement %q", p)
		return errors.WithHint(err, "use top, bottom, left or right, optionally with -start or -end")
	}
	return nil
}

func pairHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != pairType {
		return data, nil
	}
	switch v := data.(type) {
	case Pair:
		return v, nil
	case []any:
		return pairFromSlice(v)
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return pairFromSlice(out)
	case []float64:
		out := make([]any, len(v))
		for i, f := range v {
			out[i] = f
		}
		return pairFromSlice(out)
	}
	d, err := toDuration(data)
	if err != nil {
		return nil, err
	}
	return Symmetric(d), nil
}

func pairFromSlice(v []any) (Pair, error) {
	if len(v) != 2 {
		return Pair{}, errors.Newf("want [in, out], got %d values", len(v))
	}
	in, err := toDuration(v[0])
	if err != nil {
		return Pair{}, err
	}
	out, err := toDuration(v[1])
	if err != nil {
		return Pair{}, err
	}
	return Pair{In: in, Out: out}, nil
}

// toDuration accepts milliseconds as any number, a time.Duration, or a
// string holding either
func toDuration(v any) (time.Duration, error) {
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case string:
		if parsed, err := time.ParseDuration(d); err == nil {
			return parsed, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(d), 64)
		if err != nil {
			return 0, errors.Newf("%q is not a duration", d)
		}
		return ms(f), nil
	}
	if f, ok := toFloat(v); ok {
		return ms(f), nil
	}
	return 0, errors.Newf("%v (%T) is not a duration", v, v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func hideOnClickHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != hideOnClickType {
		return data, nil
	}
	switch v := data.(type) {
	case HideOnClickMode:
		return v, nil
	case bool:
		if v {
			return HideOnClickEnabled, nil
		}
		return HideOnClickDisabled, nil
	case string:
		switch v {
		case "true":
			return HideOnClickEnabled, nil
		case "false":
			return HideOnClickDisabled, nil
		case "persistent":
			return HideOnClickPersistent, nil
		}
	}
	return nil, errors.Newf("hideOnClick must be true, false or \"persistent\", got %v", data)
}

func followCursorHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != followCursorType {
		return data, nil
	}
	switch v := data.(type) {
	case FollowCursorMode:
		return v, nil
	case bool:
		if v {
			return FollowCursorOn, nil
		}
		return FollowCursorOff, nil
	case string:
		switch v {
		case "true":
			return FollowCursorOn, nil
		case "false", "":
			return FollowCursorOff, nil
		case "horizontal":
			return FollowCursorHorizontal, nil
		case "vertical":
			return FollowCursorVertical, nil
		case "initial":
			return FollowCursorInitial, nil
		}
	}
	return nil, errors.Newf("followCursor must be true, false, \"horizontal\", \"vertical\" or \"initial\", got %v", data)
}

func triggersHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != triggersType {
		return data, nil
	}
	switch v := data.(type) {
	case Triggers:
		return v, nil
	case string:
		return Triggers(util.Fields(v)), nil
	case []string:
		return Triggers(util.Fields(strings.Join(v, " "))), nil
	case []any:
		out := make(Triggers, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Newf("trigger entries must be strings, got %T", item)
			}
			out = append(out, s)
		}
		return Triggers(util.Fields(strings.Join(out, " "))), nil
	}
	return nil, errors.Newf("trigger must be a string, got %T", data)
}

func contentHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != contentType {
		return data, nil
	}
	switch v := data.(type) {
	case Content:
		return v, nil
	case string:
		return Content{Text: v}, nil
	case *dom.Element:
		return Content{Element: v}, nil
	case bool:
		return Content{Text: strconv.FormatBool(v)}, nil
	}
	if f, ok := toFloat(data); ok {
		return Content{Text: strconv.FormatFloat(f, 'f', -1, 64)}, nil
	}
	if s, ok := data.(fmt.Stringer); ok {
		return Content{Text: s.String()}, nil
	}
	return nil, errors.Newf("content must be a string, an element or a function, got %T", data)
}

func appendTargetHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != appendTargetType {
		return data, nil
	}
	switch v := data.(type) {
	case AppendTarget:
		return v, nil
	case *dom.Element:
		return AppendTarget{Element: v}, nil
	case string:
		switch v {
		case "parent":
			return AppendTarget{Parent: true}, nil
		case "body", "":
			return AppendTarget{}, nil
		}
	}
	return nil, errors.Newf("appendTo must be \"parent\", \"body\", an element or a function, got %v", data)
}

// guardHook lets onShow/onHide be given without a return value
func guardHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != guardType {
		return data, nil
	}
	if fn, ok := data.(func(*Instance)); ok {
		return func(i *Instance) bool {
			fn(i)
			return true
		}, nil
	}
	return data, nil
}
