// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package hypertable holds the partitioning metadata of hypertables and the
// reference-counted cache through which the planner reads it.
package hypertable

import (
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/lib/pq/oid"
)

// DimensionType is the partitioning scheme of a dimension.
type DimensionType int

const (
	// Open dimensions are range partitioned into intervals of fixed length.
	Open DimensionType = iota
	// Closed dimensions hash the value into a fixed number of slices.
	Closed
)

func (t DimensionType) String() string {
	if t == Closed {
		return "closed"
	}
	return "open"
}

// Bounds of the coordinate space of a dimension.
const (
	SliceMinValue int64 = math.MinInt64
	SliceMaxValue int64 = math.MaxInt64
	// closedMaxValue bounds the hash values of closed dimensions.
	closedMaxValue int64 = math.MaxInt32
)

// Dimension describes how a hypertable is partitioned along one column.
type Dimension struct {
	ID     int32
	Column string
	// ColumnType is the type of the partitioning column. Open dimensions
	// are either timestamps or integers.
	ColumnType tree.Family
	Type       DimensionType
	// Interval is the length of an open slice, in microseconds for
	// timestamp columns.
	Interval int64
	// NumSlices is the number of slices of a closed dimension.
	NumSlices int16
}

// IntervalDuration returns the slice length of a timestamp dimension.
func (d *Dimension) IntervalDuration() time.Duration {
	return time.Duration(d.Interval) * time.Microsecond
}

// Hypertable is the partitioning metadata of one hypertable.
type Hypertable struct {
	ID         int32
	RelID      oid.Oid
	Schema     string
	Table      string
	Dimensions []Dimension
}

// QualifiedName returns "schema.table".
func (ht *Hypertable) QualifiedName() redact.RedactableString {
	return redact.Sprintf("%s.%s", ht.Schema, ht.Table)
}

// Validate checks the metadata for consistency.
func (ht *Hypertable) Validate() error {
	if ht.RelID == 0 {
		return pgerror.Newf(pgcode.UndefinedTable, "hypertable %d has no relation", ht.ID)
	}
	if len(ht.Dimensions) == 0 {
		return pgerror.Newf(pgcode.UndefinedTable, "hypertable %s has no dimensions", ht.QualifiedName())
	}
	for i := range ht.Dimensions {
		d := &ht.Dimensions[i]
		switch d.Type {
		case Open:
			if d.Interval <= 0 {
				return pgerror.Newf(pgcode.InvalidParameterValue,
					"dimension %q of %s: interval must be positive", d.Column, ht.QualifiedName())
			}
			if d.ColumnType != tree.TimestampFamily && d.ColumnType != tree.IntFamily {
				return pgerror.Newf(pgcode.InvalidParameterValue,
					"dimension %q of %s: invalid type %s for open dimension", d.Column, ht.QualifiedName(), d.ColumnType)
			}
		case Closed:
			if d.NumSlices <= 0 {
				return pgerror.Newf(pgcode.InvalidParameterValue,
					"dimension %q of %s: number of slices must be positive", d.Column, ht.QualifiedName())
			}
		}
	}
	return nil
}

// TimeDimension returns the first open dimension, or nil.
func (ht *Hypertable) TimeDimension() *Dimension {
	for i := range ht.Dimensions {
		if ht.Dimensions[i].Type == Open {
			return &ht.Dimensions[i]
		}
	}
	return nil
}

// DimensionByColumn returns the dimension partitioning column, or nil.
func (ht *Hypertable) DimensionByColumn(column string) *Dimension {
	for i := range ht.Dimensions {
		if ht.Dimensions[i].Column == column {
			return &ht.Dimensions[i]
		}
	}
	return nil
}

// Point holds one coordinate per dimension of a hypertable.
type Point []int64

// DimensionSlice is the half-open range [RangeStart, RangeEnd) of one
// dimension. A RangeEnd of SliceMaxValue includes SliceMaxValue itself.
type DimensionSlice struct {
	DimensionID int32
	RangeStart  int64
	RangeEnd    int64
}

// Contains is true if coord falls in the slice.
func (s DimensionSlice) Contains(coord int64) bool {
	return coord >= s.RangeStart && coord <= s.Last()
}

// Last returns the largest coordinate in s. A slice ending at
// SliceMaxValue is unbounded above.
func (s DimensionSlice) Last() int64 {
	if s.RangeEnd == SliceMaxValue {
		return SliceMaxValue
	}
	return s.RangeEnd - 1
}

// Hypercube has one slice per dimension.
type Hypercube []DimensionSlice

// Contains is true if every coordinate of p falls in the matching slice.
func (hc Hypercube) Contains(p Point) bool {
	if len(hc) != len(p) {
		return false
	}
	for i, s := range hc {
		if !s.Contains(p[i]) {
			return false
		}
	}
	return true
}

// Coordinate returns the coordinate of value along d. NULL values cannot be
// placed.
func (d *Dimension) Coordinate(value tree.Datum) (int64, error) {
	if value == nil || value == tree.DNull {
		return 0, pgerror.Newf(pgcode.CheckViolation,
			"NULL value in column %q violates not-null constraint", d.Column)
	}
	if d.Type == Closed {
		return int64(xxhash.Sum64String(tree.AsString(value)) % uint64(closedMaxValue)), nil
	}
	switch v := value.(type) {
	case *tree.DTimestamp:
		return v.Time.UnixMicro(), nil
	case *tree.DInt:
		return int64(*v), nil
	}
	return 0, pgerror.Newf(pgcode.DatatypeMismatch,
		"invalid value for dimension %q: %s", d.Column, value.ResolvedType())
}

// SliceFor returns the slice of d containing coord.
func (d *Dimension) SliceFor(coord int64) DimensionSlice {
	if d.Type == Closed {
		size := closedMaxValue / int64(d.NumSlices)
		idx := coord / size
		if idx >= int64(d.NumSlices) {
			idx = int64(d.NumSlices) - 1
		}
		s := DimensionSlice{DimensionID: d.ID, RangeStart: idx * size, RangeEnd: (idx + 1) * size}
		if idx == 0 {
			s.RangeStart = SliceMinValue
		}
		if idx == int64(d.NumSlices)-1 {
			s.RangeEnd = SliceMaxValue
		}
		return s
	}
	// Slices that would extend past the int64 range are clamped.
	s := DimensionSlice{DimensionID: d.ID}
	if rem := coord % d.Interval; rem < 0 {
		s.RangeEnd = coord - rem
		if s.RangeEnd < SliceMinValue+d.Interval {
			s.RangeStart = SliceMinValue
		} else {
			s.RangeStart = s.RangeEnd - d.Interval
		}
		return s
	}
	s.RangeStart = coord - coord%d.Interval
	if s.RangeStart > SliceMaxValue-d.Interval {
		s.RangeEnd = SliceMaxValue
	} else {
		s.RangeEnd = s.RangeStart + d.Interval
	}
	return s
}

// PointFor computes the point of a tuple, given a lookup of its column
// values by name.
func (ht *Hypertable) PointFor(values func(column string) (tree.Datum, bool)) (Point, error) {
	p := make(Point, len(ht.Dimensions))
	for i := range ht.Dimensions {
		d := &ht.Dimensions[i]
		v, ok := values(d.Column)
		if !ok {
			return nil, pgerror.Newf(pgcode.UndefinedColumn,
				"partitioning column %q of %s missing from tuple", d.Column, ht.QualifiedName())
		}
		c, err := d.Coordinate(v)
		if err != nil {
			return nil, err
		}
		p[i] = c
	}
	return p, nil
}

// HypercubeFor returns the hypercube of the chunk that contains p.
func (ht *Hypertable) HypercubeFor(p Point) (Hypercube, error) {
	if len(p) != len(ht.Dimensions) {
		return nil, errors.AssertionFailedf("point has %d coordinates, hypertable %d has %d dimensions",
			len(p), ht.ID, len(ht.Dimensions))
	}
	hc := make(Hypercube, len(p))
	for i := range ht.Dimensions {
		hc[i] = ht.Dimensions[i].SliceFor(p[i])
	}
	return hc, nil
}
