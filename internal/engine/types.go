package engine

import (
	"fmt"
	"strings"
)

type Symptom string

const (
	SymptomNone              Symptom = "no symptoms"
	SymptomFatigue           Symptom = "fatigue"
	SymptomFever             Symptom = "fever"
	SymptomLocalizedPain     Symptom = "localized pain"
	SymptomRedness           Symptom = "redness"
	SymptomSwelling          Symptom = "swelling"
	SymptomShortnessOfBreath Symptom = "shortness of breath"
	SymptomDizziness         Symptom = "dizziness"
)

var knownSymptoms = []Symptom{
	SymptomNone,
	SymptomFatigue,
	SymptomFever,
	SymptomLocalizedPain,
	SymptomRedness,
	SymptomSwelling,
	SymptomShortnessOfBreath,
	SymptomDizziness,
}

type Goal string

const (
	GoalRestore     Goal = "restore"
	GoalPerformance Goal = "performance"
	GoalCognitive   Goal = "cognitive"
)

var knownGoals = []Goal{GoalRestore, GoalPerformance, GoalCognitive}

// IsEnhancementLike reports whether the goal asks for more than restoring baseline function.
func (g Goal) IsEnhancementLike() bool {
	return g == GoalPerformance || g == GoalCognitive
}

type Contraindication string

const (
	ContraImmunocompromised   Contraindication = "immunocompromised"
	ContraPregnant            Contraindication = "pregnant"
	ContraBloodClotRisk       Contraindication = "blood clot risk"
	ContraAutoimmuneFlareRisk Contraindication = "autoimmune flare risk"
)

var knownContraindications = []Contraindication{
	ContraImmunocompromised,
	ContraPregnant,
	ContraBloodClotRisk,
	ContraAutoimmuneFlareRisk,
}

// ConsentLevel is ordinal: every capability unlocked at level N stays unlocked above N.
type ConsentLevel int

const (
	ConsentDiagnosis ConsentLevel = iota + 1
	ConsentRepair
	ConsentAugment
	ConsentEnhance
)

// Patient is the input record for one evaluation.
type Patient struct {
	Symptoms          []Symptom          `json:"symptoms" yaml:"symptoms" validate:"dive,symptom"`
	HeartRate         int                `json:"hr" yaml:"hr" validate:"min=30,max=200"`
	Temperature       float64            `json:"temp" yaml:"temp" validate:"min=34,max=42"`
	BPSystolic        int                `json:"bp_sys" yaml:"bp_sys" validate:"min=70,max=220"`
	BPDiastolic       int                `json:"bp_dia" yaml:"bp_dia" validate:"min=40,max=140"`
	SpO2              int                `json:"spo2" yaml:"spo2" validate:"min=50,max=100"`
	Goal              Goal               `json:"goal" yaml:"goal" validate:"goal"`
	Consent           ConsentLevel       `json:"consent" yaml:"consent" validate:"min=1,max=4"`
	Contraindications []Contraindication `json:"contra" yaml:"contra" validate:"dive,contraindication"`
}

func (p Patient) hasSymptom(s Symptom) bool {
	for _, v := range p.Symptoms {
		if v == s {
			return true
		}
	}
	return false
}

func (p Patient) hasContraindication(c Contraindication) bool {
	return containsContra(p.Contraindications, c)
}

func containsContra(values []Contraindication, target Contraindication) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// Mode selects the governing framework the decision selector operates under.
type Mode string

const (
	ModeClinical    Mode = "clinical"
	ModeSpeculative Mode = "speculative"
)

// ParseMode accepts the canonical names and the long labels shown by the simulator form.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clinical", "clinical / regulated":
		return ModeClinical, nil
	case "speculative", "speculative / enhancement-forward":
		return ModeSpeculative, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

type Signal string

const (
	SignalElevatedTemperature   Signal = "elevated_temperature"
	SignalLowOxygenation        Signal = "low_oxygenation"
	SignalFatigueReported       Signal = "fatigue_reported"
	SignalLocalizedInflammation Signal = "localized_inflammation"
	SignalDizzinessReported     Signal = "dizziness_reported"
	SignalAsymptomaticRequest   Signal = "asymptomatic_request"
	SignalTachycardia           Signal = "tachycardia"
	SignalLowSystolicBP         Signal = "low_systolic_bp"
	SignalImmunocompromised     Signal = "immunocompromised_flag"
	SignalNoSignificant         Signal = "no_significant_signals"
)

// Signals is the detector output, in rule order.
type Signals []Signal

func (s Signals) Has(sig Signal) bool {
	for _, v := range s {
		if v == sig {
			return true
		}
	}
	return false
}

func (s Signals) HasAny(sigs ...Signal) bool {
	for _, sig := range sigs {
		if s.Has(sig) {
			return true
		}
	}
	return false
}

type Condition struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Decision doubles as the capability name the policy gate grants.
type Decision string

const (
	DecisionDiagnosis Decision = "diagnosis"
	DecisionRepair    Decision = "repair"
	DecisionAugment   Decision = "augment"
	DecisionEnhance   Decision = "enhance"
)

// Permissions is the capability matrix produced by the policy gate.
type Permissions struct {
	Diagnosis bool `json:"diagnosis"`
	Repair    bool `json:"repair"`
	Augment   bool `json:"augment"`
	Enhance   bool `json:"enhance"`
}

func (p Permissions) Allows(d Decision) bool {
	switch d {
	case DecisionDiagnosis:
		return p.Diagnosis
	case DecisionRepair:
		return p.Repair
	case DecisionAugment:
		return p.Augment
	case DecisionEnhance:
		return p.Enhance
	default:
		return false
	}
}

// Granted lists permitted capabilities in ordinal order.
func (p Permissions) Granted() []Decision {
	granted := []Decision{}
	for _, d := range []Decision{DecisionDiagnosis, DecisionRepair, DecisionAugment, DecisionEnhance} {
		if p.Allows(d) {
			granted = append(granted, d)
		}
	}
	return granted
}

type GateResult struct {
	Allowed Permissions `json:"allowed"`
	Reasons []string    `json:"reasons"`
}

type InterventionStep struct {
	Action   string `json:"action"`
	Target   string `json:"target"`
	Duration string `json:"duration"`
}

// Report is the structured result owed to callers. Field names are part of the contract.
type Report struct {
	DetectedSignals  Signals            `json:"detected_signals"`
	LikelyConditions []Condition        `json:"likely_conditions"`
	Decision         Decision           `json:"decision"`
	InterventionPlan []InterventionStep `json:"intervention_plan"`
	PolicyReasons    []string           `json:"policy_reasons"`
	EthicsFlags      []string           `json:"ethics_flags"`
}

// Outcome carries the report together with the gate it was produced under.
type Outcome struct {
	Mode   Mode       `json:"mode"`
	Gate   GateResult `json:"policy_gate"`
	Report Report     `json:"report"`
}
