// Package engine implements the OUSIA decision pipeline: signal detection, condition
// ranking, the consent/safety policy gate, decision selection and plan synthesis.
//
// Every function here is pure domain logic - no I/O, no shared state - so evaluations
// may run concurrently without coordination. Callers are expected to run
// ValidatePatient first; the pipeline is total over valid records.
package engine

// Evaluate runs one full pass: gate, signals, conditions, selection, plan.
func Evaluate(p Patient, mode Mode) Outcome {
	gate := Gate(p.Consent, p.Goal, p.Contraindications)
	signals := DetectSignals(p)
	conditions := RankConditions(p, signals)
	sel := SelectDecision(p, gate, signals, mode)
	plan := SynthesizePlan(p, sel.Decision, signals, mode)

	return Outcome{
		Mode: mode,
		Gate: gate,
		Report: Report{
			DetectedSignals:  signals,
			LikelyConditions: conditions,
			Decision:         sel.Decision,
			InterventionPlan: plan,
			PolicyReasons:    sel.PolicyReasons,
			EthicsFlags:      sel.EthicsFlags,
		},
	}
}

// Run returns only the decision report.
func Run(p Patient, mode Mode) Report {
	return Evaluate(p, mode).Report
}
