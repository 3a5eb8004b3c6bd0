// Package prettylog provides a human-oriented zap encoder for development
// runs. Production builds use zap's JSON encoder instead.
package prettylog

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
)

var bufPool = buffer.NewPool()

// lastLogTimeMs feeds the "+Nms" inter-entry delta suffix.
var lastLogTimeMs atomic.Int64

func deltaMs() int64 {
	now := time.Now().UnixMilli()
	prev := lastLogTimeMs.Swap(now)
	if prev == 0 {
		return 0
	}
	return now - prev
}

// Encoder renders log entries as a single colored console line:
// timestamp, level tag, optional logger name, message, k=v fields, delta.
type Encoder struct {
	color  bool
	fields []field
}

type field struct {
	key string
	val string
}

// NewEncoder creates an Encoder. Set color=true for ANSI terminal output.
func NewEncoder(color bool) zapcore.Encoder {
	return &Encoder{color: color}
}

// ShouldColor reports whether terminal colors should be enabled,
// honoring the NO_COLOR convention.
func ShouldColor() bool {
	return os.Getenv("NO_COLOR") == ""
}

// Clone implements zapcore.Encoder.
func (e *Encoder) Clone() zapcore.Encoder {
	clone := &Encoder{color: e.color, fields: make([]field, len(e.fields))}
	copy(clone.fields, e.fields)
	return clone
}

func levelTag(level zapcore.Level) (tag, color string) {
	switch level {
	case zapcore.DebugLevel:
		return "DBG", ansiGray
	case zapcore.InfoLevel:
		return "INF", ansiCyan
	case zapcore.WarnLevel:
		return "WRN", ansiYellow
	default:
		return "ERR", ansiRed
	}
}

func (e *Encoder) paint(buf *buffer.Buffer, color, s string) {
	if e.color && color != "" {
		buf.AppendString(color)
		buf.AppendString(s)
		buf.AppendString(ansiReset)
		return
	}
	buf.AppendString(s)
}

// EncodeEntry implements zapcore.Encoder.
func (e *Encoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := bufPool.Get()

	merged := make([]field, 0, len(e.fields)+len(fields))
	merged = append(merged, e.fields...)
	if len(fields) > 0 {
		tmp := &Encoder{}
		for _, f := range fields {
			f.AddTo(tmp)
		}
		merged = append(merged, tmp.fields...)
	}

	e.paint(buf, ansiGray, entry.Time.Format("2006-01-02 15:04:05"))
	buf.AppendByte(' ')

	tag, tagColor := levelTag(entry.Level)
	e.paint(buf, tagColor, tag)
	buf.AppendByte(' ')

	if entry.LoggerName != "" {
		e.paint(buf, ansiYellow, "["+entry.LoggerName+"]")
		buf.AppendByte(' ')
	}

	buf.AppendString(entry.Message)

	for _, kv := range merged {
		buf.AppendByte(' ')
		buf.AppendString(kv.key)
		buf.AppendByte('=')
		if needsQuote(kv.val) {
			buf.AppendString(strconv.Quote(kv.val))
		} else {
			buf.AppendString(kv.val)
		}
	}

	if delta := deltaMs(); delta > 0 {
		e.paint(buf, ansiYellow, fmt.Sprintf(" +%dms", delta))
	}

	buf.AppendByte('\n')
	return buf, nil
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == ' ' || r == '"' || r == '=' || r == '\n' || r == '\r' || r == '\t' {
			return true
		}
		i += size
	}
	return false
}

func (e *Encoder) addField(key, val string) {
	e.fields = append(e.fields, field{key: key, val: val})
}

func (e *Encoder) AddArray(key string, arr zapcore.ArrayMarshaler) error {
	col := &arrayCollector{}
	if err := arr.MarshalLogArray(col); err != nil {
		return err
	}
	e.addField(key, "["+strings.Join(col.items, ",")+"]")
	return nil
}

func (e *Encoder) AddObject(key string, obj zapcore.ObjectMarshaler) error {
	nested := &Encoder{}
	if err := obj.MarshalLogObject(nested); err != nil {
		return err
	}
	parts := make([]string, 0, len(nested.fields))
	for _, kv := range nested.fields {
		parts = append(parts, kv.key+"="+kv.val)
	}
	e.addField(key, "{"+strings.Join(parts, " ")+"}")
	return nil
}

func (e *Encoder) AddBinary(key string, val []byte)          { e.addField(key, fmt.Sprintf("%x", val)) }
func (e *Encoder) AddByteString(key string, val []byte)      { e.addField(key, string(val)) }
func (e *Encoder) AddBool(key string, val bool)              { e.addField(key, strconv.FormatBool(val)) }
func (e *Encoder) AddComplex128(key string, val complex128)  { e.addField(key, fmt.Sprint(val)) }
func (e *Encoder) AddComplex64(key string, val complex64)    { e.addField(key, fmt.Sprint(val)) }
func (e *Encoder) AddDuration(key string, val time.Duration) { e.addField(key, val.String()) }
func (e *Encoder) AddFloat64(key string, val float64) {
	e.addField(key, strconv.FormatFloat(val, 'f', -1, 64))
}
func (e *Encoder) AddFloat32(key string, val float32) {
	e.addField(key, strconv.FormatFloat(float64(val), 'f', -1, 32))
}
func (e *Encoder) AddInt(key string, val int)     { e.addField(key, strconv.Itoa(val)) }
func (e *Encoder) AddInt64(key string, val int64) { e.addField(key, strconv.FormatInt(val, 10)) }
func (e *Encoder) AddInt32(key string, val int32) {
	e.addField(key, strconv.FormatInt(int64(val), 10))
}
func (e *Encoder) AddInt16(key string, val int16) {
	e.addField(key, strconv.FormatInt(int64(val), 10))
}
func (e *Encoder) AddInt8(key string, val int8) {
	e.addField(key, strconv.FormatInt(int64(val), 10))
}
func (e *Encoder) AddString(key string, val string)  { e.addField(key, val) }
func (e *Encoder) AddTime(key string, val time.Time) { e.addField(key, val.Format(time.RFC3339)) }
func (e *Encoder) AddUint(key string, val uint) {
	e.addField(key, strconv.FormatUint(uint64(val), 10))
}
func (e *Encoder) AddUint64(key string, val uint64) { e.addField(key, strconv.FormatUint(val, 10)) }
func (e *Encoder) AddUint32(key string, val uint32) {
	e.addField(key, strconv.FormatUint(uint64(val), 10))
}
func (e *Encoder) AddUint16(key string, val uint16) {
	e.addField(key, strconv.FormatUint(uint64(val), 10))
}
func (e *Encoder) AddUint8(key string, val uint8) {
	e.addField(key, strconv.FormatUint(uint64(val), 10))
}
func (e *Encoder) AddUintptr(key string, val uintptr) { e.addField(key, fmt.Sprintf("0x%x", val)) }
func (e *Encoder) AddReflected(key string, val interface{}) error {
	e.addField(key, fmt.Sprint(val))
	return nil
}
func (e *Encoder) OpenNamespace(key string) {
	for i := range e.fields {
		e.fields[i].key = key + "." + e.fields[i].key
	}
}

// arrayCollector stringifies array elements for the k=[a,b] field form.
type arrayCollector struct {
	items []string
}

func (c *arrayCollector) append(v string) { c.items = append(c.items, v) }

func (c *arrayCollector) AppendBool(v bool)              { c.append(strconv.FormatBool(v)) }
func (c *arrayCollector) AppendByteString(v []byte)      { c.append(string(v)) }
func (c *arrayCollector) AppendComplex128(v complex128)  { c.append(fmt.Sprint(v)) }
func (c *arrayCollector) AppendComplex64(v complex64)    { c.append(fmt.Sprint(v)) }
func (c *arrayCollector) AppendDuration(v time.Duration) { c.append(v.String()) }
func (c *arrayCollector) AppendFloat64(v float64)        { c.append(strconv.FormatFloat(v, 'f', -1, 64)) }
func (c *arrayCollector) AppendFloat32(v float32) {
	c.append(strconv.FormatFloat(float64(v), 'f', -1, 32))
}
func (c *arrayCollector) AppendInt(v int)       { c.append(strconv.Itoa(v)) }
func (c *arrayCollector) AppendInt64(v int64)   { c.append(strconv.FormatInt(v, 10)) }
func (c *arrayCollector) AppendInt32(v int32)   { c.append(strconv.FormatInt(int64(v), 10)) }
func (c *arrayCollector) AppendInt16(v int16)   { c.append(strconv.FormatInt(int64(v), 10)) }
func (c *arrayCollector) AppendInt8(v int8)     { c.append(strconv.FormatInt(int64(v), 10)) }
func (c *arrayCollector) AppendString(v string) { c.append(v) }
func (c *arrayCollector) AppendTime(v time.Time) {
	c.append(v.Format(time.RFC3339))
}
func (c *arrayCollector) AppendUint(v uint)       { c.append(strconv.FormatUint(uint64(v), 10)) }
func (c *arrayCollector) AppendUint64(v uint64)   { c.append(strconv.FormatUint(v, 10)) }
func (c *arrayCollector) AppendUint32(v uint32)   { c.append(strconv.FormatUint(uint64(v), 10)) }
func (c *arrayCollector) AppendUint16(v uint16)   { c.append(strconv.FormatUint(uint64(v), 10)) }
func (c *arrayCollector) AppendUint8(v uint8)     { c.append(strconv.FormatUint(uint64(v), 10)) }
func (c *arrayCollector) AppendUintptr(v uintptr) { c.append(fmt.Sprintf("0x%x", v)) }
func (c *arrayCollector) AppendReflected(v interface{}) error {
	c.append(fmt.Sprint(v))
	return nil
}
func (c *arrayCollector) AppendArray(v zapcore.ArrayMarshaler) error { return v.MarshalLogArray(c) }
func (c *arrayCollector) AppendObject(v zapcore.ObjectMarshaler) error {
	c.append("<object>")
	return nil
}
