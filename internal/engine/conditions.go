package engine

import "sort"

const maxConditions = 3

// NoClearCondition is returned alone when no condition rule fires.
var NoClearCondition = Condition{Name: "no clear condition detected", Confidence: 0.35}

type conditionRule struct {
	Condition Condition
	Match     func(p Patient, s Signals) bool
}

var conditionRules = []conditionRule{
	{
		Condition: Condition{Name: "minor tissue injury / localized inflammation", Confidence: 0.72},
		Match: func(_ Patient, s Signals) bool {
			return s.Has(SignalLocalizedInflammation)
		},
	},
	{
		Condition: Condition{Name: "possible respiratory compromise (low oxygen)", Confidence: 0.68},
		Match: func(_ Patient, s Signals) bool {
			return s.Has(SignalLowOxygenation)
		},
	},
	{
		Condition: Condition{Name: "possible infection / inflammatory response", Confidence: 0.64},
		Match: func(_ Patient, s Signals) bool {
			return s.Has(SignalElevatedTemperature)
		},
	},
	{
		Condition: Condition{Name: "non-specific fatigue (sleep/stress/metabolic)", Confidence: 0.45},
		Match: func(_ Patient, s Signals) bool {
			return s.Has(SignalFatigueReported) && !s.Has(SignalLowOxygenation)
		},
	},
	{
		Condition: Condition{Name: "enhancement-seeking user (no pathology detected)", Confidence: 0.55},
		Match: func(p Patient, s Signals) bool {
			return s.Has(SignalAsymptomaticRequest) && p.Goal.IsEnhancementLike()
		},
	},
}

// RankConditions returns at most three conditions by non-increasing confidence.
// Ties keep rule order.
func RankConditions(p Patient, signals Signals) []Condition {
	conditions := []Condition{}
	for _, rule := range conditionRules {
		if rule.Match(p, signals) {
			conditions = append(conditions, rule.Condition)
		}
	}
	if len(conditions) == 0 {
		return []Condition{NoClearCondition}
	}

	sort.SliceStable(conditions, func(i, j int) bool {
		return conditions[i].Confidence > conditions[j].Confidence
	})
	if len(conditions) > maxConditions {
		conditions = conditions[:maxConditions]
	}
	return conditions
}
