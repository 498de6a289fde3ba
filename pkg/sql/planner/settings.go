// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package planner

import "github.com/hyperplan/hyperplan/pkg/settings"

// DisableOptimizations turns off every hypertable read optimization.
var DisableOptimizations = settings.RegisterBoolSetting(
	"sql.hypertable.disable_optimizations",
	"disable the hypertable planner optimizations",
	false,
)

// OptimizeNonHypertables applies the read optimizations to every relation,
// not only to hypertables.
var OptimizeNonHypertables = settings.RegisterBoolSetting(
	"sql.hypertable.optimize_non_hypertables",
	"apply the hypertable planner optimizations to regular tables",
	false,
)

// ConstraintAwareAppendEnabled enables execution-time chunk exclusion.
var ConstraintAwareAppendEnabled = settings.RegisterBoolSetting(
	"sql.hypertable.constraint_aware_append.enabled",
	"exclude chunks at executor startup using restrictions with mutable functions",
	true,
)

// Constraint exclusion modes.
const (
	ConstraintExclusionOff int64 = iota
	ConstraintExclusionOn
	ConstraintExclusionPartition
)

// ConstraintExclusion is the engine's constraint exclusion mode. Chunk
// exclusion at executor startup is disabled when it is off.
var ConstraintExclusion = settings.RegisterEnumSetting(
	"sql.defaults.constraint_exclusion",
	"controls the use of table constraints to optimize queries",
	"partition",
	map[int64]string{
		ConstraintExclusionOff:       "off",
		ConstraintExclusionOn:        "on",
		ConstraintExclusionPartition: "partition",
	},
)
