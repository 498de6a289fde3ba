// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package tree

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Family is the type family of a Datum.
type Family int

// Datum type families.
const (
	UnknownFamily Family = iota
	BoolFamily
	IntFamily
	StringFamily
	TimestampFamily
	IntervalFamily
)

var familyName = [...]string{
	UnknownFamily:   "unknown",
	BoolFamily:      "bool",
	IntFamily:       "int",
	StringFamily:    "string",
	TimestampFamily: "timestamp",
	IntervalFamily:  "interval",
}

func (f Family) String() string {
	if f < 0 || int(f) >= len(familyName) {
		return "Family(?)"
	}
	return familyName[f]
}

// Datum represents a SQL value.
type Datum interface {
	Expr
	// ResolvedType returns the type family of the datum.
	ResolvedType() Family
	// Compare returns -1 if the receiver is less than other, 0 if receiver
	// is equal to other and +1 if receiver is greater than other. NULL
	// sorts before every other value.
	Compare(other Datum) (int, error)
	// String returns the datum formatted as SQL.
	String() string
}

// Datums is a slice of Datum values.
type Datums []Datum

// TimestampOutputFormat is used to output all timestamps.
const TimestampOutputFormat = "2006-01-02 15:04:05.999999"

var timestampInputFormats = []string{
	TimestampOutputFormat,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// DBool is the boolean Datum.
type DBool bool

var (
	constDBoolTrue  DBool = true
	constDBoolFalse DBool = false

	// DBoolTrue is a pointer to the DBool(true) value and can be used in
	// comparisons against Datum types.
	DBoolTrue = &constDBoolTrue
	// DBoolFalse is a pointer to the DBool(false) value and can be used in
	// comparisons against Datum types.
	DBoolFalse = &constDBoolFalse
)

// MakeDBool converts its argument to a *DBool, reusing the constant
// DBoolTrue and DBoolFalse pointers.
func MakeDBool(d bool) *DBool {
	if d {
		return DBoolTrue
	}
	return DBoolFalse
}

// DInt is the int Datum.
type DInt int64

// NewDInt is a helper routine to create a *DInt initialized from its
// argument.
func NewDInt(d DInt) *DInt {
	return &d
}

// DString is the string Datum.
type DString string

// NewDString is a helper routine to create a *DString initialized from its
// argument.
func NewDString(d string) *DString {
	r := DString(d)
	return &r
}

// DTimestamp is the timestamp Datum. Values are kept in UTC.
type DTimestamp struct {
	time.Time
}

// MakeDTimestamp creates a DTimestamp truncated to microsecond precision.
func MakeDTimestamp(t time.Time) *DTimestamp {
	return &DTimestamp{Time: t.UTC().Truncate(time.Microsecond)}
}

// ParseDTimestamp parses a timestamp literal.
func ParseDTimestamp(s string) (*DTimestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampInputFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return MakeDTimestamp(t), nil
		}
	}
	return nil, errors.Newf("could not parse %q as type timestamp", s)
}

// DInterval is the interval Datum. Only fixed-length intervals are
// supported.
type DInterval struct {
	time.Duration
}

var intervalUnits = map[string]time.Duration{
	"microsecond": time.Microsecond,
	"millisecond": time.Millisecond,
	"second":      time.Second,
	"minute":      time.Minute,
	"hour":        time.Hour,
	"day":         24 * time.Hour,
	"week":        7 * 24 * time.Hour,
}

// ParseDInterval parses an interval literal written either as a Go
// duration ("1h30m") or as a list of "<n> <unit>" pairs ("1 day 2 hours").
func ParseDInterval(s string) (*DInterval, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return &DInterval{Duration: d}, nil
	}
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields)%2 != 0 {
		return nil, errors.Newf("could not parse %q as type interval", s)
	}
	var total time.Duration
	for i := 0; i < len(fields); i += 2 {
		n, err := strconv.ParseInt(fields[i], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse %q as type interval", s)
		}
		unit := strings.TrimSuffix(strings.ToLower(fields[i+1]), "s")
		d, ok := intervalUnits[unit]
		if !ok {
			return nil, errors.Newf("could not parse %q as type interval: unknown unit %q", s, fields[i+1])
		}
		total += time.Duration(n) * d
	}
	return &DInterval{Duration: total}, nil
}

type dNull struct{}

// DNull is the NULL Datum.
var DNull Datum = dNull{}

// ResolvedType implements the Datum interface.
func (*DBool) ResolvedType() Family { return BoolFamily }

// ResolvedType implements the Datum interface.
func (*DInt) ResolvedType() Family { return IntFamily }

// ResolvedType implements the Datum interface.
func (*DString) ResolvedType() Family { return StringFamily }

// ResolvedType implements the Datum interface.
func (*DTimestamp) ResolvedType() Family { return TimestampFamily }

// ResolvedType implements the Datum interface.
func (*DInterval) ResolvedType() Family { return IntervalFamily }

// ResolvedType implements the Datum interface.
func (dNull) ResolvedType() Family { return UnknownFamily }

func compareNull(other Datum) (int, bool) {
	if other == DNull {
		return 1, true
	}
	return 0, false
}

func mismatch(d, other Datum) error {
	return errors.Newf("cannot compare %s with %s", d.ResolvedType(), other.ResolvedType())
}

func cmp3[T int64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Compare implements the Datum interface.
func (d *DBool) Compare(other Datum) (int, error) {
	if c, ok := compareNull(other); ok {
		return c, nil
	}
	o, ok := other.(*DBool)
	if !ok {
		return 0, mismatch(d, other)
	}
	switch {
	case bool(*d) == bool(*o):
		return 0, nil
	case !bool(*d):
		return -1, nil
	}
	return 1, nil
}

// Compare implements the Datum interface.
func (d *DInt) Compare(other Datum) (int, error) {
	if c, ok := compareNull(other); ok {
		return c, nil
	}
	o, ok := other.(*DInt)
	if !ok {
		return 0, mismatch(d, other)
	}
	return cmp3(int64(*d), int64(*o)), nil
}

// Compare implements the Datum interface.
func (d *DString) Compare(other Datum) (int, error) {
	if c, ok := compareNull(other); ok {
		return c, nil
	}
	o, ok := other.(*DString)
	if !ok {
		return 0, mismatch(d, other)
	}
	return cmp3(string(*d), string(*o)), nil
}

// Compare implements the Datum interface.
func (d *DTimestamp) Compare(other Datum) (int, error) {
	if c, ok := compareNull(other); ok {
		return c, nil
	}
	o, ok := other.(*DTimestamp)
	if !ok {
		return 0, mismatch(d, other)
	}
	return d.Time.Compare(o.Time), nil
}

// Compare implements the Datum interface.
func (d *DInterval) Compare(other Datum) (int, error) {
	if c, ok := compareNull(other); ok {
		return c, nil
	}
	o, ok := other.(*DInterval)
	if !ok {
		return 0, mismatch(d, other)
	}
	return cmp3(int64(d.Duration), int64(o.Duration)), nil
}

// Compare implements the Datum interface.
func (dNull) Compare(other Datum) (int, error) {
	if other == DNull {
		return 0, nil
	}
	return -1, nil
}

// Format implements the NodeFormatter interface.
func (d *DBool) Format(ctx *FmtCtx) {
	ctx.WriteString(strconv.FormatBool(bool(*d)))
}

// Format implements the NodeFormatter interface.
func (d *DInt) Format(ctx *FmtCtx) {
	ctx.WriteString(strconv.FormatInt(int64(*d), 10))
}

// Format implements the NodeFormatter interface.
func (d *DString) Format(ctx *FmtCtx) {
	encodeSQLString(ctx, string(*d))
}

// Format implements the NodeFormatter interface.
func (d *DTimestamp) Format(ctx *FmtCtx) {
	encodeSQLString(ctx, d.Time.Format(TimestampOutputFormat))
	ctx.WriteString("::TIMESTAMP")
}

// Format implements the NodeFormatter interface.
func (d *DInterval) Format(ctx *FmtCtx) {
	encodeSQLString(ctx, d.Duration.String())
	ctx.WriteString("::INTERVAL")
}

// Format implements the NodeFormatter interface.
func (dNull) Format(ctx *FmtCtx) {
	ctx.WriteString("NULL")
}

func encodeSQLString(ctx *FmtCtx, s string) {
	ctx.WriteByte('\'')
	ctx.WriteString(strings.ReplaceAll(s, "'", "''"))
	ctx.WriteByte('\'')
}

func (d *DBool) String() string      { return AsString(d) }
func (d *DInt) String() string       { return AsString(d) }
func (d *DString) String() string    { return AsString(d) }
func (d *DTimestamp) String() string { return AsString(d) }
func (d *DInterval) String() string  { return AsString(d) }
func (d dNull) String() string       { return AsString(d) }
