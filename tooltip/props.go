package tooltip

import (
	"sort"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
)

// Props is an unresolved option set keyed by option name (camelCase)
type Props map[string]any

// Clone returns a shallow copy
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// With returns a copy with key set to value
func (p Props) With(key string, value any) Props {
	out := p.Clone()
	out[key] = value
	return out
}

// AttributePrefix prefixes declarative option attributes: data-tip-hide-on-click
const AttributePrefix = "data-tip-"

// Reference attributes the engine manages
const (
	AttrOriginalTitle = "data-original-title"
	AttrState         = "data-state"
	AttrPlacement     = "data-placement"
	AttrInteractive   = "data-interactive"
)

// Class names on the floating subtree, the reference and the body
const (
	ClassFloating = "tip-floating"
	ClassBox      = "tip-box"
	ClassContent  = "tip-content"
	ClassActive   = "tip-active"
	ClassTouch    = "tip-touch"
)

// Option names
const (
	OptA11y              = "a11y"
	OptAppendTo          = "appendTo"
	OptAria              = "aria"
	OptContent           = "content"
	OptDelay             = "delay"
	OptDistance          = "distance"
	OptDuration          = "duration"
	OptDynamicTitle      = "dynamicTitle"
	OptFollowCursor      = "followCursor"
	OptHideOnClick       = "hideOnClick"
	OptIgnoreAttributes  = "ignoreAttributes"
	OptInteractive       = "interactive"
	OptInteractiveBorder = "interactiveBorder"
	OptMultiple          = "multiple"
	OptPlacement         = "placement"
	OptShowOnInit        = "showOnInit"
	OptSticky            = "sticky"
	OptTarget            = "target"
	OptTouch             = "touch"
	OptTouchHold         = "touchHold"
	OptTrigger           = "trigger"
	OptOnTrigger         = "onTrigger"
	OptOnShow            = "onShow"
	OptOnMount           = "onMount"
	OptOnShown           = "onShown"
	OptOnHide            = "onHide"
	OptOnHidden          = "onHidden"
)

// DefaultProps returns the built-in defaults. Every recognised option has an
// entry; hooks default to nil.
func DefaultProps() Props {
	return Props{
		OptA11y:              true,
		OptAppendTo:          nil, // document body
		OptAria:              "describedby",
		OptContent:           "",
		OptDelay:             0,
		OptDistance:          10,
		OptDuration:          []any{325, 275},
		OptDynamicTitle:      false,
		OptFollowCursor:      false,
		OptHideOnClick:       true,
		OptIgnoreAttributes:  false,
		OptInteractive:       false,
		OptInteractiveBorder: 2,
		OptMultiple:          false,
		OptPlacement:         "top",
		OptShowOnInit:        false,
		OptSticky:            false,
		OptTarget:            "",
		OptTouch:             true,
		OptTouchHold:         false,
		OptTrigger:           "mouseenter focus",
		OptOnTrigger:         nil,
		OptOnShow:            nil,
		OptOnMount:           nil,
		OptOnShown:           nil,
		OptOnHide:            nil,
		OptOnHidden:          nil,
	}
}

// hooks cannot come from attributes or config files
var hookOptions = map[string]bool{
	OptOnTrigger: true,
	OptOnShow:    true,
	OptOnMount:   true,
	OptOnShown:   true,
	OptOnHide:    true,
	OptOnHidden:  true,
}

// strcase splits digits into their own words; a11y stays whole
var kebabOverrides = map[string]string{OptA11y: "a11y"}

var (
	optionNames []string
	// lower-case name -> canonical name
	canonical = map[string]string{}
	// canonical name -> data-tip-* attribute
	attributeNames = map[string]string{}
)

func init() {
	for name := range DefaultProps() {
		optionNames = append(optionNames, name)
		canonical[strings.ToLower(name)] = name
		if hookOptions[name] {
			continue
		}
		kebab, ok := kebabOverrides[name]
		if !ok {
			kebab = strcase.ToKebab(name)
		}
		attributeNames[name] = AttributePrefix + kebab
	}
	sort.Strings(optionNames)
}

// OptionNames returns every recognised option name, sorted
func OptionNames() []string {
	out := make([]string, len(optionNames))
	copy(out, optionNames)
	return out
}

// AttributeName returns the declarative attribute for an option, or "" for
// options that cannot be declared (hooks)
func AttributeName(option string) string {
	return attributeNames[option]
}

// IsOption reports whether name is a recognised option, exactly as spelled
func IsOption(name string) bool {
	_, ok := attributeNames[name]
	return ok || hookOptions[name]
}

// Canonical maps a case-insensitive spelling to the option name
func Canonical(name string) (string, bool) {
	c, ok := canonical[strings.ToLower(name)]
	return c, ok
}

// ms converts a millisecond count to a Duration
func ms(v float64) time.Duration {
	return time.Duration(v * float64(time.Millisecond))
}
