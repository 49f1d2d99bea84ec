package engine

import (
	"fmt"
	"slices"
)

const (
	ReasonClinicalNoPathology  = "Clinical regime defaults to diagnosis-only when no pathology is detected."
	ReasonRepairBlocked        = "Repair not permitted by policy gate or insufficient evidence."
	ReasonAugmentSubstituted   = "Enhance blocked by policy gate; selected augment instead."
	ReasonEnhancementForbidden = "Goal implies enhancement/augmentation but consent does not permit it."

	FlagEquityDisclosure   = "equity: enhancement access may be unequal"
	FlagSafetyLock         = "safety: immunocompromised → intervention locked"
	FlagEnhancementAllowed = "ethics: enhancement permitted under regime"
	FlagEnhancementBlocked = "ethics: enhancement blocked; using augment if allowed"
)

// pathologySignals justify a repair decision when repair is permitted.
var pathologySignals = []Signal{
	SignalLocalizedInflammation,
	SignalLowOxygenation,
	SignalElevatedTemperature,
}

// Selection is the decision selector output.
type Selection struct {
	Decision      Decision
	PolicyReasons []string
	EthicsFlags   []string
}

func (s *Selection) decide(d Decision, reasons ...string) Selection {
	s.Decision = d
	s.PolicyReasons = append(s.PolicyReasons, reasons...)
	return *s
}

type strategy func(p Patient, allowed Permissions, signals Signals, sel *Selection) Selection

var strategies = map[Mode]strategy{
	ModeClinical:    selectClinical,
	ModeSpeculative: selectSpeculative,
}

// SelectDecision picks exactly one decision. Rule priority (first match wins):
//  1. Safety lock on immunocompromised patients, in every mode
//  2. The mode strategy
//
// Policy reasons start as a copy of the gate reasons; the gate result is never modified.
func SelectDecision(p Patient, gate GateResult, signals Signals, mode Mode) Selection {
	sel := &Selection{
		PolicyReasons: slices.Clone(gate.Reasons),
		EthicsFlags:   []string{fmt.Sprintf("consent_level:%d", p.Consent)},
	}
	if sel.PolicyReasons == nil {
		sel.PolicyReasons = []string{}
	}
	if p.Goal.IsEnhancementLike() {
		sel.EthicsFlags = append(sel.EthicsFlags, FlagEquityDisclosure)
	}

	if signals.Has(SignalImmunocompromised) {
		sel.EthicsFlags = append(sel.EthicsFlags, FlagSafetyLock)
		return sel.decide(DecisionDiagnosis)
	}

	choose, ok := strategies[mode]
	if !ok {
		choose = selectClinical
	}
	return choose(p, gate.Allowed, signals, sel)
}

// selectClinical prefers diagnosis and only repairs on pathology evidence.
func selectClinical(_ Patient, allowed Permissions, signals Signals, sel *Selection) Selection {
	if signals.HasAny(SignalNoSignificant, SignalAsymptomaticRequest) {
		return sel.decide(DecisionDiagnosis, ReasonClinicalNoPathology)
	}
	if allowed.Repair && signals.HasAny(pathologySignals...) {
		return sel.decide(DecisionRepair)
	}
	return sel.decide(DecisionDiagnosis, ReasonRepairBlocked)
}

// selectSpeculative pursues enhancement-like goals as far as consent allows.
func selectSpeculative(p Patient, allowed Permissions, signals Signals, sel *Selection) Selection {
	if p.Goal.IsEnhancementLike() {
		switch {
		case allowed.Enhance:
			sel.EthicsFlags = append(sel.EthicsFlags, FlagEnhancementAllowed)
			return sel.decide(DecisionEnhance)
		case allowed.Augment:
			sel.EthicsFlags = append(sel.EthicsFlags, FlagEnhancementBlocked)
			return sel.decide(DecisionAugment, ReasonAugmentSubstituted)
		default:
			return sel.decide(DecisionDiagnosis, ReasonEnhancementForbidden)
		}
	}

	if allowed.Repair && signals.HasAny(pathologySignals...) {
		return sel.decide(DecisionRepair)
	}
	return sel.decide(DecisionDiagnosis)
}
