package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/prodflow/editor"
	"github.com/katalvlaran/prodflow/metrics"
	"github.com/katalvlaran/prodflow/scenario"
	"github.com/katalvlaran/prodflow/solver"
)

var (
	iterationFactor int
	showMetrics     bool
)

type solveView struct {
	Scenario  string     `json:"scenario"`
	Steps     int        `json:"steps"`
	Mode      string     `json:"mode,omitempty"`
	Passes    int        `json:"passes"`
	Converged bool       `json:"converged"`
	Loops     [][]string `json:"loops,omitempty"`
	Nodes     []nodeView `json:"nodes"`
	Edges     []edgeView `json:"edges"`
}

var solveCmd = &cobra.Command{
	Use:   "solve <scenario.yaml>",
	Short: "Replay a scenario and print the solved graph",
	Long: `Replays every step of the scenario on a fresh editor session. Each
structural edit and rate change triggers a solve, as an interactive editor
would. The final graph is printed as a table or as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scenario.LoadFile(args[0])
		if err != nil {
			return err
		}
		s, rec, err := newSession()
		if err != nil {
			return err
		}
		run, err := sc.Replay(s, scenario.WithLogger(logger))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		g := s.Snapshot()
		view := solveView{
			Scenario: sc.Name,
			Steps:    run.Applied,
			Nodes:    viewNodes(g),
			Edges:    viewEdges(g),
		}
		if run.Last != nil {
			view.Mode = run.Last.Mode.String()
			view.Passes = run.Last.Passes
			view.Converged = run.Last.Converged
			view.Loops = run.Last.Loops
		}

		if outputFormat == outputJSON {
			if err = writeJSON(out, view); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "scenario %q: %d steps, last solve %s in %d passes\n", view.Scenario, view.Steps, view.Mode, view.Passes)
			if run.Last != nil && !run.Last.Converged {
				warnColor.Fprintf(out, "warning: solver hit its bound of %d passes; rates are best effort\n", run.Last.Bound)
				for _, loop := range view.Loops {
					warnColor.Fprintf(out, "  feedback loop: %s\n", strings.Join(loop, " → "))
				}
			}
			if err = writeNodeTable(out, view.Nodes); err != nil {
				return err
			}
		}
		if showMetrics {
			return rec.WriteText(out)
		}
		return nil
	},
}

// newSession builds an editor session with the CLI catalog, logger, solver
// tuning and a metrics recorder.
func newSession() (*editor.Session, *metrics.Recorder, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, nil, err
	}
	rec := metrics.New()
	opts := append(rec.EditorOptions(),
		editor.WithLogger(logger),
		editor.WithIDGenerator(editor.SequentialIDs()),
	)
	if iterationFactor > 0 {
		opts = append(opts, editor.WithSolverOptions(solver.WithIterationFactor(iterationFactor)))
	}
	s, err := editor.New(cat, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, rec, nil
}

func init() {
	solveCmd.Flags().IntVar(&iterationFactor, "iteration-factor", solver.DefaultIterationFactor, "Full-mode pass bound per node")
	solveCmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print Prometheus metrics after the result")
	AddCommand(solveCmd)
}
