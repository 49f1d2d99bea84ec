package engine

var diagnosisPlan = []InterventionStep{
	{Action: "monitor biomarkers + vitals", Target: "system-wide", Duration: "10m"},
	{Action: "generate risk summary", Target: "user dashboard", Duration: "instant"},
}

var scaffoldSupport = InterventionStep{Action: "localized biomaterial scaffold support", Target: "affected tissue", Duration: "30m"}

// repairAddOns follow the scaffold step in this order when their signal is present.
var repairAddOns = []struct {
	Signal Signal
	Step   InterventionStep
}{
	{SignalLowOxygenation, InterventionStep{Action: "assist oxygen transport (simulation)", Target: "blood oxygenation", Duration: "15m"}},
	{SignalElevatedTemperature, InterventionStep{Action: "anti-inflammatory modulation (simulation)", Target: "immune response", Duration: "20m"}},
}

var augmentPlans = map[Mode]InterventionStep{
	ModeClinical:    {Action: "restricted augmentation (simulation)", Target: "recovery capacity", Duration: "20m"},
	ModeSpeculative: {Action: "performance augmentation (simulation)", Target: "cardio efficiency", Duration: "45m"},
}

var (
	cognitiveEnhancement   = InterventionStep{Action: "cognitive enhancement protocol (simulation)", Target: "attention / memory", Duration: "60m"}
	performanceEnhancement = InterventionStep{Action: "performance enhancement protocol (simulation)", Target: "endurance / reaction time", Duration: "60m"}
	noOp                   = InterventionStep{Action: "no-op", Target: "system-wide", Duration: "0m"}
)

// SynthesizePlan maps a decision to an ordered, non-empty list of simulated steps.
// The first step is primary; later steps are conditional add-ons.
func SynthesizePlan(p Patient, decision Decision, signals Signals, mode Mode) []InterventionStep {
	switch decision {
	case DecisionDiagnosis:
		return append([]InterventionStep(nil), diagnosisPlan...)
	case DecisionRepair:
		plan := []InterventionStep{scaffoldSupport}
		for _, addOn := range repairAddOns {
			if signals.Has(addOn.Signal) {
				plan = append(plan, addOn.Step)
			}
		}
		return plan
	case DecisionAugment:
		if step, ok := augmentPlans[mode]; ok {
			return []InterventionStep{step}
		}
		return []InterventionStep{augmentPlans[ModeClinical]}
	case DecisionEnhance:
		if p.Goal == GoalCognitive {
			return []InterventionStep{cognitiveEnhancement}
		}
		return []InterventionStep{performanceEnhancement}
	default:
		return []InterventionStep{noOp}
	}
}
