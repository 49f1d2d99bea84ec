package engine

// Vital thresholds. Not configurable.
const (
	feverTemperatureC = 38.0
	lowSpO2Percent    = 93
	tachycardiaBPM    = 100
	lowSystolicBPMmHg = 95
)

type signalRule struct {
	Signal Signal
	Match  func(p Patient) bool
}

// signalRules are evaluated independently, in order. Each fires at most once.
var signalRules = []signalRule{
	{SignalElevatedTemperature, func(p Patient) bool {
		return p.Temperature >= feverTemperatureC || p.hasSymptom(SymptomFever)
	}},
	{SignalLowOxygenation, func(p Patient) bool {
		return p.SpO2 <= lowSpO2Percent || p.hasSymptom(SymptomShortnessOfBreath)
	}},
	{SignalFatigueReported, func(p Patient) bool {
		return p.hasSymptom(SymptomFatigue)
	}},
	{SignalLocalizedInflammation, func(p Patient) bool {
		return p.hasSymptom(SymptomRedness) || p.hasSymptom(SymptomSwelling) || p.hasSymptom(SymptomLocalizedPain)
	}},
	{SignalDizzinessReported, func(p Patient) bool {
		return p.hasSymptom(SymptomDizziness)
	}},
	{SignalAsymptomaticRequest, isAsymptomatic},
	{SignalTachycardia, func(p Patient) bool {
		return p.HeartRate >= tachycardiaBPM
	}},
	{SignalLowSystolicBP, func(p Patient) bool {
		return p.BPSystolic <= lowSystolicBPMmHg
	}},
	{SignalImmunocompromised, func(p Patient) bool {
		return p.hasContraindication(ContraImmunocompromised)
	}},
}

// isAsymptomatic is true when the symptom set is exactly {"no symptoms"}; duplicates collapse.
func isAsymptomatic(p Patient) bool {
	if len(p.Symptoms) == 0 {
		return false
	}
	for _, s := range p.Symptoms {
		if s != SymptomNone {
			return false
		}
	}
	return true
}

// DetectSignals never returns an empty set.
func DetectSignals(p Patient) Signals {
	signals := Signals{}
	for _, rule := range signalRules {
		if rule.Match(p) {
			signals = append(signals, rule.Signal)
		}
	}
	if len(signals) == 0 {
		return Signals{SignalNoSignificant}
	}
	return signals
}
