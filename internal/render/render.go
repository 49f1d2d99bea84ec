// Package render formats decision reports for terminals and files.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Skufu/ousia/internal/engine"
)

type palette struct {
	heading  func(a ...interface{}) string
	decision func(a ...interface{}) string
	warn     func(a ...interface{}) string
	alert    func(a ...interface{}) string
	muted    func(a ...interface{}) string
}

func newPalette(colorize bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		heading:  mk(color.Bold, color.FgCyan),
		decision: mk(color.Bold, color.FgGreen),
		warn:     mk(color.FgYellow),
		alert:    mk(color.FgRed),
		muted:    mk(color.FgHiBlack),
	}
}

// Text writes the outcome as sectioned, human-readable text.
func Text(w io.Writer, out engine.Outcome, colorize bool) error {
	p := newPalette(colorize)
	var b strings.Builder

	section := func(title string) {
		b.WriteString("\n" + p.heading("### "+title) + "\n")
	}

	b.WriteString(p.heading("Mode: ") + string(out.Mode) + "\n")

	section("Policy Gate")
	Permissions(&b, out.Gate, colorize)

	section("Decision")
	b.WriteString(p.decision(strings.ToUpper(string(out.Report.Decision))) + "\n")

	section("Detected Signals")
	for _, s := range out.Report.DetectedSignals {
		fmt.Fprintf(&b, "- %s\n", s)
	}

	section("Likely Conditions")
	for _, c := range out.Report.LikelyConditions {
		fmt.Fprintf(&b, "- %s %s\n", c.Name, p.muted(fmt.Sprintf("(%.2f)", c.Confidence)))
	}

	section("Intervention Plan")
	for i, step := range out.Report.InterventionPlan {
		fmt.Fprintf(&b, "%d. %s -> %s %s\n", i+1, step.Action, step.Target, p.muted("["+step.Duration+"]"))
	}

	if len(out.Report.PolicyReasons) > 0 {
		section("Policy Reasons")
		for _, r := range out.Report.PolicyReasons {
			b.WriteString(p.warn("- "+r) + "\n")
		}
	}

	if len(out.Report.EthicsFlags) > 0 {
		section("Ethics Flags")
		for _, f := range out.Report.EthicsFlags {
			b.WriteString(p.alert("- "+f) + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Permissions writes the capability matrix followed by the gate reasons.
func Permissions(w io.StringWriter, gate engine.GateResult, colorize bool) {
	p := newPalette(colorize)
	for _, d := range []engine.Decision{engine.DecisionDiagnosis, engine.DecisionRepair, engine.DecisionAugment, engine.DecisionEnhance} {
		mark := p.alert("blocked")
		if gate.Allowed.Allows(d) {
			mark = p.decision("allowed")
		}
		_, _ = w.WriteString(fmt.Sprintf("%-10s %s\n", capitalize(string(d)), mark))
	}

	granted := make([]string, 0, 4)
	for _, d := range gate.Allowed.Granted() {
		granted = append(granted, capitalize(string(d)))
	}
	_, _ = w.WriteString("Allowed modes: " + strings.Join(granted, ", ") + "\n")

	if len(gate.Reasons) == 0 {
		_, _ = w.WriteString(p.muted("No policy blocks triggered.") + "\n")
		return
	}
	for _, r := range gate.Reasons {
		_, _ = w.WriteString(p.warn("! "+r) + "\n")
	}
}

// JSON writes v indented with two spaces.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
