// Package harness runs YAML-defined conformance scenarios against the
// reaction engine.
//
// A scenario pins down a fixture population and a script of explicit
// collisions, so execution involves no random sampling: the same
// scenario file always produces the same trace, the same final
// population, and the same report bytes. Scenarios validate the
// collision pipeline (reduction budget, filters, rule outputs) and the
// statistics layer (class counts, entropy, top-k) without depending on
// any seed.
//
// Reports are compared against golden files with goldie; regenerate
// them with `go test ./internal/harness -update`.
package harness
