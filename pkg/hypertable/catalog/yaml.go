// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package catalog

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/lib/pq/oid"
	"gopkg.in/yaml.v2"
)

// HypertableSpec is the YAML form of a hypertable.
type HypertableSpec struct {
	ID         int32           `yaml:"id"`
	RelID      uint32          `yaml:"relid"`
	Schema     string          `yaml:"schema"`
	Table      string          `yaml:"table"`
	Dimensions []DimensionSpec `yaml:"dimensions"`
}

// DimensionSpec is the YAML form of a dimension. Open dimensions set
// Interval, closed ones set Partitions.
type DimensionSpec struct {
	Column string `yaml:"column"`
	// Type is the column type: "timestamp" (the default) or "int".
	Type string `yaml:"type"`
	// Interval is an interval literal for timestamp columns and an integer
	// for int columns.
	Interval   string `yaml:"interval"`
	Partitions int16  `yaml:"partitions"`
}

type catalogSpec struct {
	Hypertables []HypertableSpec `yaml:"hypertables"`
}

// FromYAML parses a catalog description:
//
//	hypertables:
//	- id: 1
//	  relid: 16384
//	  schema: public
//	  table: events
//	  dimensions:
//	  - column: time
//	    interval: 1 day
//	  - column: device
//	    partitions: 4
func FromYAML(data []byte) (*Static, error) {
	var spec catalogSpec
	if err := yaml.UnmarshalStrict(data, &spec); err != nil {
		return nil, errors.Wrap(err, "parsing catalog")
	}
	s := NewStatic()
	for i := range spec.Hypertables {
		ht, err := spec.Hypertables[i].Hypertable()
		if err != nil {
			return nil, err
		}
		s.Add(ht)
	}
	return s, nil
}

// Hypertable converts the spec to metadata and validates it.
func (hs *HypertableSpec) Hypertable() (*hypertable.Hypertable, error) {
	schema := hs.Schema
	if schema == "" {
		schema = "public"
	}
	ht := &hypertable.Hypertable{
		ID:     hs.ID,
		RelID:  oid.Oid(hs.RelID),
		Schema: schema,
		Table:  hs.Table,
	}
	for i, ds := range hs.Dimensions {
		d := hypertable.Dimension{ID: int32(i + 1), Column: ds.Column}
		switch strings.ToLower(ds.Type) {
		case "", "timestamp", "timestamptz":
			d.ColumnType = tree.TimestampFamily
		case "int", "int8", "bigint", "integer":
			d.ColumnType = tree.IntFamily
		case "text", "string":
			d.ColumnType = tree.StringFamily
		default:
			return nil, errors.Newf("hypertable %s: dimension %q: unknown type %q", hs.Table, ds.Column, ds.Type)
		}
		if ds.Partitions > 0 {
			d.Type = hypertable.Closed
			d.NumSlices = ds.Partitions
		} else {
			d.Type = hypertable.Open
			if err := parseInterval(&d, ds.Interval); err != nil {
				return nil, errors.Wrapf(err, "hypertable %s: dimension %q", hs.Table, ds.Column)
			}
		}
		ht.Dimensions = append(ht.Dimensions, d)
	}
	if err := ht.Validate(); err != nil {
		return nil, err
	}
	return ht, nil
}

func parseInterval(d *hypertable.Dimension, s string) error {
	if d.ColumnType == tree.IntFamily {
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid interval %q", s)
		}
		d.Interval = i
		return nil
	}
	iv, err := tree.ParseDInterval(s)
	if err != nil {
		return err
	}
	d.Interval = iv.Microseconds()
	return nil
}
