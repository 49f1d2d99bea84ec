package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Skufu/ousia/internal/engine"
	"github.com/Skufu/ousia/internal/render"
	"github.com/Skufu/ousia/internal/scenarios"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "ousia",
		Short:        "Run the OUSIA adaptive response simulator from the terminal",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.AddCommand(newScenariosCmd(), newRunCmd(), newGateCmd())
	return root
}

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the preset patient scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := scenarios.Load()
			if err != nil {
				return err
			}
			for _, s := range catalog.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", s.Key, s.Name)
			}
			return nil
		},
	}
}

type runOptions struct {
	scenario string
	mode     string
	asJSON   bool
	noColor  bool

	symptoms []string
	contra   []string
	hr       int
	temp     float64
	bpSys    int
	bpDia    int
	spo2     int
	goal     string
	consent  int
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate one patient and print the decision report",
		Long: "Evaluate one patient and print the decision report.\n\n" +
			"The patient starts from --scenario (default: the blank form) and any\n" +
			"patient flag given on the command line overrides the preset value.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulation(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.scenario, "scenario", "s", "", "preset scenario key (see 'ousia scenarios')")
	f.StringVarP(&opts.mode, "mode", "m", string(engine.ModeClinical), "governing framework: clinical or speculative")
	f.BoolVar(&opts.asJSON, "json", false, "print the structured report as JSON")
	f.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	f.StringSliceVar(&opts.symptoms, "symptoms", nil, "comma separated symptoms")
	f.StringSliceVar(&opts.contra, "contra", nil, "comma separated contraindications")
	f.IntVar(&opts.hr, "hr", 0, "heart rate (bpm)")
	f.Float64Var(&opts.temp, "temp", 0, "temperature (°C)")
	f.IntVar(&opts.bpSys, "bp-sys", 0, "systolic blood pressure")
	f.IntVar(&opts.bpDia, "bp-dia", 0, "diastolic blood pressure")
	f.IntVar(&opts.spo2, "spo2", 0, "blood oxygen saturation (%)")
	f.StringVar(&opts.goal, "goal", "", "goal: restore, performance or cognitive")
	f.IntVar(&opts.consent, "consent", 0, "consent level 1-4")
	return cmd
}

func runSimulation(cmd *cobra.Command, opts *runOptions) error {
	mode, err := engine.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	catalog, err := scenarios.Load()
	if err != nil {
		return err
	}
	preset := catalog.Default()
	if opts.scenario != "" {
		if preset, err = catalog.Lookup(opts.scenario); err != nil {
			return err
		}
	}

	patient := applyOverrides(cmd, preset.Patient, opts)
	if err := engine.ValidatePatient(patient); err != nil {
		return err
	}

	out := engine.Evaluate(patient, mode)
	if opts.asJSON {
		return render.JSON(cmd.OutOrStdout(), out.Report)
	}
	return render.Text(cmd.OutOrStdout(), out, useColor(cmd.OutOrStdout(), opts.noColor))
}

func applyOverrides(cmd *cobra.Command, p engine.Patient, opts *runOptions) engine.Patient {
	f := cmd.Flags()
	if f.Changed("symptoms") {
		p.Symptoms = make([]engine.Symptom, 0, len(opts.symptoms))
		for _, s := range opts.symptoms {
			p.Symptoms = append(p.Symptoms, engine.Symptom(normalize(s)))
		}
	}
	if f.Changed("contra") {
		p.Contraindications = make([]engine.Contraindication, 0, len(opts.contra))
		for _, c := range opts.contra {
			p.Contraindications = append(p.Contraindications, engine.Contraindication(normalize(c)))
		}
	}
	if f.Changed("hr") {
		p.HeartRate = opts.hr
	}
	if f.Changed("temp") {
		p.Temperature = opts.temp
	}
	if f.Changed("bp-sys") {
		p.BPSystolic = opts.bpSys
	}
	if f.Changed("bp-dia") {
		p.BPDiastolic = opts.bpDia
	}
	if f.Changed("spo2") {
		p.SpO2 = opts.spo2
	}
	if f.Changed("goal") {
		p.Goal = engine.Goal(normalize(opts.goal))
	}
	if f.Changed("consent") {
		p.Consent = engine.ConsentLevel(opts.consent)
	}
	return p
}

func newGateCmd() *cobra.Command {
	var (
		consent int
		goal    string
		contra  []string
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Show which capabilities the policy gate permits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			contraindications := make([]engine.Contraindication, 0, len(contra))
			for _, c := range contra {
				contraindications = append(contraindications, engine.Contraindication(normalize(c)))
			}
			g := engine.Goal(normalize(goal))
			level := engine.ConsentLevel(consent)
			if err := engine.ValidateGateInput(level, g, contraindications); err != nil {
				return err
			}

			var b strings.Builder
			render.Permissions(&b, engine.Gate(level, g, contraindications), useColor(cmd.OutOrStdout(), noColor))
			_, err := io.WriteString(cmd.OutOrStdout(), b.String())
			return err
		},
	}
	f := cmd.Flags()
	f.IntVar(&consent, "consent", int(engine.ConsentRepair), "consent level 1-4")
	f.StringVar(&goal, "goal", string(engine.GoalRestore), "goal: restore, performance or cognitive")
	f.StringSliceVar(&contra, "contra", nil, "comma separated contraindications")
	f.BoolVar(&noColor, "no-color", false, "disable coloured output")
	return cmd
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func useColor(w io.Writer, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
