// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package fiterr defines the error kinds shared by the density and
// gof packages. Callers match them with errors.Is.
package fiterr

import "errors"

var (
	// ErrDataIntegrity indicates an ambiguous or malformed input table
	// or weights file.
	ErrDataIntegrity = errors.New("data integrity error")
	// ErrContractViolation indicates a caller passed an argument outside
	// the recognized set (e.g., an unknown allele label or an
	// incomplete parameter set).
	ErrContractViolation = errors.New("contract violation")
)
