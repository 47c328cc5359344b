package tooltip

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/teranos/tip/dom"
	"github.com/teranos/tip/errors"
)

// Resolve merges sources over the built-in defaults, lowest precedence first,
// and decodes the result. Function-valued content and appendTo receive a nil
// reference.
func Resolve(sources ...Props) (Options, error) {
	merged, err := mergeProps(sources...)
	if err != nil {
		return Options{}, err
	}
	if err := evaluateDynamic(merged, nil); err != nil {
		return Options{}, err
	}
	return decodeOptions(merged)
}

// ValidateProps rejects keys that are not option names, exactly as spelled
func ValidateProps(p Props) error {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !IsOption(k) {
			return unknownOptionError(k)
		}
	}
	return nil
}

func unknownOptionError(key string) error {
	err := errors.NewConfigurationError("unknown option %q", key)
	if c, ok := Canonical(key); ok {
		return errors.WithHintf(err, "did you mean %q? option names are case sensitive", c)
	}
	return errors.WithHintf(err, "recognised options: %s", strings.Join(OptionNames(), ", "))
}

// canonicalProps maps case-insensitive keys (as read from config files) to
// option names
func canonicalProps(p Props) (Props, error) {
	out := make(Props, len(p))
	for k, v := range p {
		c, ok := Canonical(k)
		if !ok {
			return nil, unknownOptionError(k)
		}
		out[c] = v
	}
	return out, nil
}

// mergeProps layers sources over DefaultProps. A later source replaces a key
// wholesale; values are never merged.
func mergeProps(sources ...Props) (Props, error) {
	merged := DefaultProps()
	for _, src := range sources {
		if err := ValidateProps(src); err != nil {
			return nil, err
		}
		for k, v := range src {
			merged[k] = v
		}
	}
	return merged, nil
}

// resolveReference resolves options for one reference:
// built-in < engine defaults < data-tip-* attributes < caller props < dynamic values.
// It returns the decoded options and the merged props they came from.
func resolveReference(ref Reference, defaults, caller Props) (Options, Props, error) {
	layers := []Props{defaults}
	if !ignoresAttributes(defaults, caller) {
		layers = append(layers, readAttributes(ref))
	}
	layers = append(layers, caller)

	merged, err := mergeProps(layers...)
	if err != nil {
		return Options{}, nil, err
	}

	if isEmptyContent(merged[OptContent]) {
		if title := titleOf(ref); title != "" {
			merged[OptContent] = title
		}
	}

	if err := evaluateDynamic(merged, ref); err != nil {
		return Options{}, nil, err
	}

	opts, err := decodeOptions(merged)
	if err != nil {
		return Options{}, nil, err
	}
	return opts, merged, nil
}

func ignoresAttributes(layers ...Props) bool {
	ignore := false
	for _, p := range layers {
		if v, ok := p[OptIgnoreAttributes].(bool); ok {
			ignore = v
		}
	}
	return ignore
}

// readAttributes collects data-tip-* options from a reference
func readAttributes(ref Reference) Props {
	props := Props{}
	if ref == nil {
		return props
	}
	for _, name := range optionNames {
		attr := AttributeName(name)
		if attr == "" {
			continue
		}
		raw := strings.TrimSpace(ref.GetAttribute(attr))
		if raw == "" {
			continue
		}
		if name == OptContent {
			// content is markup, never converted
			props[name] = raw
			continue
		}
		props[name] = ParseAttributeValue(raw)
	}
	return props
}

// ParseAttributeValue converts a declarative attribute string: "true" and
// "false" become booleans, finite numbers become float64, a leading "["
// parses as a JSON array (left as a string when invalid), anything else stays
// a string.
func ParseAttributeValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	if strings.HasPrefix(s, "[") {
		var arr []any
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			return arr
		}
	}
	return s
}

func isEmptyContent(v any) bool {
	switch c := v.(type) {
	case nil:
		return true
	case string:
		return c == ""
	case Content:
		return c.IsEmpty()
	case *dom.Element:
		return c == nil
	}
	return false
}

// titleOf returns the reference's title, or the one already moved aside by
// an earlier instance
func titleOf(ref Reference) string {
	if ref == nil {
		return ""
	}
	if t := ref.GetAttribute("title"); t != "" {
		return t
	}
	return ref.GetAttribute(AttrOriginalTitle)
}

// evaluateDynamic replaces function-valued content and appendTo with their
// result for ref
func evaluateDynamic(merged Props, ref Reference) error {
	switch fn := merged[OptContent].(type) {
	case func(Reference) string:
		merged[OptContent] = fn(ref)
	case func(Reference) *dom.Element:
		merged[OptContent] = fn(ref)
	case func(Reference) any:
		merged[OptContent] = fn(ref)
	case func(Reference) Content:
		merged[OptContent] = fn(ref)
	}

	switch fn := merged[OptAppendTo].(type) {
	case func(Reference) *dom.Element:
		merged[OptAppendTo] = fn(ref)
	case func(Reference) AppendTarget:
		merged[OptAppendTo] = fn(ref)
	}
	return nil
}
