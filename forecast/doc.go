// Package forecast provides the deterministic outbreak forecasting engine.
//
// # Reading Guide
//
// Start with these files to understand the model:
//   - config.go: model parameters (rates, capacity factors, interval sizes)
//   - engine.go: the per-interval state-transition loop
//   - hospital.go: bed capacity growth and the Normal → Overwhelmed mortality rule
//   - window.go: the fixed-width window of still-infectious cohorts
//
// # Architecture
//
// The forecast package defines the collaborator interfaces and the value
// types that cross them; implementations live in sub-packages:
//   - forecast/data/: reference tables (population, beds) and case snapshots (CSV, SQL)
//   - forecast/export/: result-table writers and the sweep manifest
//
// Each region is forecast independently. An Engine holds no per-run state,
// so a single Engine may serve many regions.
package forecast
