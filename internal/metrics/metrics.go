// Package metrics provides application-level counters using stdlib expvar.
// Counters are automatically exported on the /debug/vars HTTP endpoint
// when net/http/pprof is imported in the main binary.
package metrics

import "expvar"

// Operation counters.
var (
	ChecksTotal      = expvar.NewInt("ragdoctor_checks_total")
	CheckFailures    = expvar.NewInt("ragdoctor_check_failures_total")
	SearchTotal      = expvar.NewInt("ragdoctor_search_total")
	SearchFailures   = expvar.NewInt("ragdoctor_search_failures_total")
	PipelineFailures = expvar.NewInt("ragdoctor_pipeline_failures_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
