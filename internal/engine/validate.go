package engine

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidPatient = errors.New("invalid patient")
	ErrUnknownMode    = errors.New("unknown mode")
)

// ValidationError lists every problem found in one patient record.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidPatient, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidPatient
}

var fieldLabels = map[string]string{
	"symptoms": "symptom",
	"hr":       "heart rate",
	"temp":     "temperature",
	"bp_sys":   "systolic blood pressure",
	"bp_dia":   "diastolic blood pressure",
	"spo2":     "blood oxygen saturation",
	"goal":     "goal",
	"consent":  "consent level",
	"contra":   "contraindication",
}

var fieldRanges = map[string]string{
	"hr":      "30 and 200",
	"temp":    "34.0 and 42.0",
	"bp_sys":  "70 and 220",
	"bp_dia":  "40 and 140",
	"spo2":    "50 and 100",
	"consent": "1 and 4",
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func patientValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("symptom", func(fl validator.FieldLevel) bool {
			return isKnown(Symptom(fl.Field().String()), knownSymptoms)
		})
		_ = v.RegisterValidation("goal", func(fl validator.FieldLevel) bool {
			return isKnown(Goal(fl.Field().String()), knownGoals)
		})
		_ = v.RegisterValidation("contraindication", func(fl validator.FieldLevel) bool {
			return isKnown(Contraindication(fl.Field().String()), knownContraindications)
		})
		validate = v
	})
	return validate
}

func isKnown[T comparable](v T, known []T) bool {
	for _, k := range known {
		if k == v {
			return true
		}
	}
	return false
}

// ValidatePatient rejects records outside the closed vocabularies and form ranges.
// The pipeline is only defined for records that pass.
func ValidatePatient(p Patient) error {
	err := patientValidator().Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidPatient, err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return &ValidationError{Problems: problems}
}

// ValidateGateInput checks the subset of patient fields the policy gate consumes.
func ValidateGateInput(consent ConsentLevel, goal Goal, contra []Contraindication) error {
	var problems []string
	if consent < ConsentDiagnosis || consent > ConsentEnhance {
		problems = append(problems, fmt.Sprintf("consent level must be between %d and %d, got %d", ConsentDiagnosis, ConsentEnhance, consent))
	}
	if !isKnown(goal, knownGoals) {
		problems = append(problems, fmt.Sprintf("goal %q is not recognized", goal))
	}
	for _, c := range contra {
		if !isKnown(c, knownContraindications) {
			problems = append(problems, fmt.Sprintf("contraindication %q is not recognized", c))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	label, ok := fieldLabels[name]
	if !ok {
		label = name
	}

	switch fe.Tag() {
	case "min", "max":
		return fmt.Sprintf("%s must be between %s, got %v", label, fieldRanges[name], fe.Value())
	case "symptom", "goal", "contraindication":
		return fmt.Sprintf("%s %q is not recognized", label, fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %s", label, fe.Tag())
	}
}
