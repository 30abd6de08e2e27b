package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fuzzynews/internal/format"
	"fuzzynews/internal/logging"
	"fuzzynews/internal/news2"
	"fuzzynews/internal/store"
)

type calculateFlags struct {
	m       news2.Measurements
	avpu    string
	patient string
	format  string
}

func newCalculateCmd(g *globalFlags) *cobra.Command {
	f := &calculateFlags{}
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Score one set of observations",
		Long: `Scores one set of observations with the crisp NEWS-2 chart and the fuzzy
rule base. With --patient the assessment is saved to the history database.`,
		Example: "  fuzzynews calculate --rr 22 --spo2 94 --sbp 110 --pulse 105 --avpu A --temp 38.5",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalculate(cmd, g, f)
		},
	}
	fl := cmd.Flags()
	fl.Float64Var(&f.m.RespiratoryRate, "rr", 0, "Respiratory rate (breaths/min)")
	fl.Float64Var(&f.m.OxygenSaturation, "spo2", 0, "Oxygen saturation (%)")
	fl.Float64Var(&f.m.SystolicBP, "sbp", 0, "Systolic blood pressure (mmHg)")
	fl.Float64Var(&f.m.Pulse, "pulse", 0, "Pulse (beats/min)")
	fl.StringVar(&f.avpu, "avpu", "A", "Level of consciousness: A, V, P or U (ACVPU)")
	fl.Float64Var(&f.m.Temperature, "temp", 0, "Temperature (°C)")
	fl.BoolVar(&f.m.SupplementalOxygen, "oxygen", false, "Patient is on supplemental oxygen")
	fl.StringVar(&f.patient, "patient", "", "Patient ID; saves the assessment when set")
	fl.StringVar(&f.format, "format", "table", "Output format: table, markdown or json")
	for _, name := range []string{"rr", "spo2", "sbp", "pulse", "temp"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runCalculate(cmd *cobra.Command, g *globalFlags, f *calculateFlags) error {
	out, err := parseOutput(f.format)
	if err != nil {
		return err
	}
	scorer, err := loadScorer(g)
	if err != nil {
		return err
	}
	m := f.m
	m.Consciousness = news2.Consciousness(f.avpu)
	res, err := scorer.Calculate(cmd.Context(), m)
	if err != nil {
		return err
	}

	var id string
	if f.patient != "" {
		st, err := openStore(g.dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		id, err = st.SaveAssessment(store.FromResult(f.patient, res))
		if err != nil {
			return fmt.Errorf("save assessment: %w", err)
		}
		logging.New("calculate").Debug("assessment saved", "patient_id", f.patient, "id", id)
	}

	w := cmd.OutOrStdout()
	if out.json {
		return writeJSON(w, struct {
			PatientID    string `json:"patient_id,omitempty"`
			AssessmentID string `json:"assessment_id,omitempty"`
			*news2.Result
		}{f.patient, id, res})
	}
	fmt.Fprint(w, format.Result(res, out.mode))
	if id != "" {
		fmt.Fprintf(w, "Saved:     %s for patient %s\n", format.ShortID(id), f.patient)
	}
	return nil
}
