package engine

const (
	ReasonImmunocompromisedOverride = "User is immunocompromised → intervention locked to diagnosis-only (clinician override required)."
	ReasonEnhancementNotConsented   = "Requested enhancement-like goal but consent level does not permit enhancement."
)

// Gate derives the capability matrix from consent, then applies the safety override
// and the advisory goal check, in that order. Diagnosis is always permitted.
func Gate(consent ConsentLevel, goal Goal, contraindications []Contraindication) GateResult {
	allowed := Permissions{
		Diagnosis: true,
		Repair:    consent >= ConsentRepair,
		Augment:   consent >= ConsentAugment,
		Enhance:   consent >= ConsentEnhance,
	}
	reasons := []string{}

	if containsContra(contraindications, ContraImmunocompromised) {
		allowed = Permissions{Diagnosis: true}
		reasons = append(reasons, ReasonImmunocompromisedOverride)
	}

	// Informational only; permissions are unchanged.
	if goal.IsEnhancementLike() && !allowed.Enhance {
		reasons = append(reasons, ReasonEnhancementNotConsented)
	}

	return GateResult{Allowed: allowed, Reasons: reasons}
}
