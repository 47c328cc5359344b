package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// palette holds the ANSI colours for one theme.
type palette struct {
	time      string
	component string
	symbol    string
	id        string
	number    string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

var themes = map[string]palette{
	"everforest": {
		time:      "\x1b[38;5;107m",
		component: "\x1b[38;5;208m",
		symbol:    "\x1b[38;5;108m",
		id:        "\x1b[38;5;109m",
		number:    "\x1b[38;5;142m",
		warn:      "\x1b[38;5;179m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;52m",
	},
	"gruvbox": {
		time:      "\x1b[38;5;108m",
		component: "\x1b[38;5;214m",
		symbol:    "\x1b[38;5;175m",
		id:        "\x1b[38;5;109m",
		number:    "\x1b[38;5;175m",
		warn:      "\x1b[38;5;214m",
		warnBg:    "\x1b[48;5;58m",
		err:       "\x1b[38;5;167m",
		errBg:     "\x1b[48;5;88m",
	},
}

var currentTheme = "everforest"

// SetTheme configures the color scheme for log output
func SetTheme(theme string) {
	if _, ok := themes[theme]; ok {
		currentTheme = theme
	}
}

func colors() palette {
	return themes[currentTheme]
}

// minimalEncoder implements a compact console encoder.
// Format: "13:04:35  ●  tooltip  Phase change  #3 showing→visible"
type minimalEncoder struct {
	zapcore.Encoder // base encoder for With() fields
	fields          []zapcore.Field
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	fields := make([]zapcore.Field, len(enc.fields))
	copy(fields, enc.fields)
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		fields:  fields,
	}
}

// AddString and AddInt64 capture With() fields so the symbol and instance id
// attached to child loggers show up in console output.
func (enc *minimalEncoder) AddString(key, value string) {
	enc.fields = append(enc.fields, zap.String(key, value))
	enc.Encoder.AddString(key, value)
}

func (enc *minimalEncoder) AddInt64(key string, value int64) {
	enc.fields = append(enc.fields, zap.Int64(key, value))
	enc.Encoder.AddInt64(key, value)
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	all := append(append([]zapcore.Field{}, enc.fields...), fields...)
	final := buffer.NewPool().Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	if glyph := fieldValue(all, FieldSymbol); glyph != "" {
		final.AppendString("  ")
		final.AppendString(c.symbol + glyph + colorReset)
	}

	if lvl := levelString(ent.Level, c); lvl != "" {
		final.AppendString("  ")
		final.AppendString(lvl)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(c.component + ent.LoggerName + colorReset)
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	if rest := summarizeFields(all, c); rest != "" {
		final.AppendString("  ")
		final.AppendString(rest)
	}

	final.AppendString("\n")
	return final, nil
}

func levelString(level zapcore.Level, c palette) string {
	switch level {
	case zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	default:
		return ""
	}
}

func fieldValue(fields []zapcore.Field, key string) string {
	for i := len(fields) - 1; i >= 0; i-- {
		if fields[i].Key == key {
			return fieldString(fields[i])
		}
	}
	return ""
}

func fieldString(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.BoolType:
		return fmt.Sprintf("%t", field.Integer == 1)
	}
	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}
	return ""
}

// summarizeFields renders the interesting fields compactly:
// "#3 showing→visible mouseenter 100ms"
func summarizeFields(fields []zapcore.Field, c palette) string {
	var parts []string
	from, to := fieldValue(fields, FieldFrom), fieldValue(fields, FieldTo)

	if id := fieldValue(fields, FieldInstanceID); id != "" {
		parts = append(parts, c.id+"#"+id+colorReset)
	}
	if from != "" && to != "" {
		parts = append(parts, from+"→"+to)
	}
	for _, key := range []string{FieldEvent, FieldTrigger, FieldPlacement, FieldKey, FieldFile} {
		if v := fieldValue(fields, key); v != "" {
			parts = append(parts, v)
		}
	}
	for _, key := range []string{FieldDelayMS, FieldDurationMS} {
		if v := fieldValue(fields, key); v != "" {
			parts = append(parts, c.number+v+colorReset+"ms")
		}
	}
	if n := fieldValue(fields, FieldCount); n != "" {
		parts = append(parts, c.number+n+colorReset)
	}
	if e := fieldValue(fields, FieldError); e != "" {
		parts = append(parts, c.err+e+colorReset)
	}
	return strings.Join(parts, " ")
}
