// Package results provides SQLite-backed storage for experiment output.
//
// The reaction engine itself never persists anything; what lands here is
// the driver layer's sample series (entropy curves, motif counts,
// failure rates) keyed by run token, so sweeps spanning thousands of
// independent soups can be aggregated after the fact.
//
// Sample payloads are serialized as canonical JSON (sorted keys, NFC
// normalized strings, shortest round-trip numbers), so a stored series
// is byte-stable across platforms and suitable for golden comparison.
//
// Database configuration follows the usual single-writer SQLite recipe:
// WAL mode, synchronous=NORMAL, busy_timeout=5000, foreign keys on.
package results
