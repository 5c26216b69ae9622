// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// These benchmarks cover the hot paths exercised on every shipm run:
//   - Package index parsing and catalog construction
//   - Overlay parsing and asset pattern matching
//   - Artifact classification
//   - Configuration generation and loading
//
// To generate a PGO profile, run:
//
//	go test -bench . -cpuprofile default.pgo ./internal/benchmark
package benchmark
