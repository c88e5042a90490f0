package getconfig

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var (
	truthy = map[string]bool{"y": true, "yes": true, "true": true, "t": true, "on": true}
	falsy  = map[string]bool{"n": true, "no": true, "false": true, "f": true, "off": true}
)

// maxEpochMillis is the largest distance from the Unix epoch a date may have.
const maxEpochMillis = 8.64e15

var errNotFinite = errors.New("not a finite number")

func conversionErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConversion}, args...)...)
}

// coerceArray splits raw on commas. args[0], when present, names the element
// type; the remaining args are passed to each element coercion.
func (r *Registry) coerceArray(raw string, args ...string) (any, error) {
	parts := strings.Split(raw, ",")
	if len(args) == 0 || args[0] == "" {
		return parts, nil
	}

	elemType := args[0]
	if !r.Has(elemType) {
		return nil, conversionErr("unknown array element type %q", elemType)
	}

	out := make(Sequence, 0, len(parts))
	for i, part := range parts {
		v, err := r.Invoke(elemType, part, args[1:]...)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func coerceBoolean(raw string, _ ...string) (any, error) {
	s := strings.ToLower(raw)
	switch {
	case truthy[s]:
		return true, nil
	case falsy[s]:
		return false, nil
	}

	n, err := parseNumber(raw)
	if err != nil {
		return nil, conversionErr("%q is not a boolean", raw)
	}
	return n != 0, nil
}

// extraDateLayouts covers month-name and slash forms that spf13/cast does not parse.
var extraDateLayouts = []string{
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
	"Jan 2 2006 15:04:05",
	"Jan 2, 2006 15:04:05",
	"Mon Jan 2 2006 15:04:05 GMT-0700",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"01/02/2006 15:04:05",
}

// coerceDate treats numeric input as milliseconds since the Unix epoch.
// Anything else is a date/time string in one of spf13/cast's layouts (RFC 3339,
// ISO 8601 date and date-time, RFC 1123/822/850, ANSIC, UnixDate, RubyDate,
// "02 Jan 2006", ...) or extraDateLayouts. Strings without a zone are UTC.
func coerceDate(raw string, _ ...string) (any, error) {
	if n, err := parseNumber(raw); err == nil {
		if math.Abs(n) > maxEpochMillis {
			return nil, conversionErr("%q is out of range for a date", raw)
		}
		return time.UnixMilli(int64(n)).UTC(), nil
	}

	s := strings.TrimSpace(raw)
	if t, err := cast.ToTimeE(s); err == nil {
		return t, nil
	}
	for _, layout := range extraDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return nil, conversionErr("%q is not a valid date", raw)
}

func coerceNumber(raw string, _ ...string) (any, error) {
	n, err := parseNumber(raw)
	if err != nil {
		return nil, conversionErr("%q is not a number", raw)
	}
	return n, nil
}

func coerceObject(raw string, _ ...string) (any, error) {
	v, err := ParseJSON([]byte(raw))
	if err != nil {
		return nil, conversionErr("%v", err)
	}
	return v, nil
}

func coerceRegex(raw string, _ ...string) (any, error) {
	re, err := regexp.Compile(raw)
	if err != nil {
		return nil, conversionErr("%v", err)
	}
	return re, nil
}

var errDigitSeparator = errors.New("digit separators are not allowed")

// parseNumber accepts decimal and 0x/0o/0b literals surrounded by optional
// whitespace. The empty string is zero. Go's "_" digit separators are rejected.
func parseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	if strings.ContainsRune(s, '_') {
		return 0, errDigitSeparator
	}

	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
		n, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}

	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}
