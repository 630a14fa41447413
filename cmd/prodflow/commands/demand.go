package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/prodflow/demand"
	"github.com/katalvlaran/prodflow/scenario"
)

type demandView struct {
	Scenario  string          `json:"scenario"`
	Passes    int             `json:"passes"`
	Converged bool            `json:"converged"`
	Demands   []demand.Demand `json:"demands"`
	Nodes     []nodeView      `json:"nodes"`
}

var demandCmd = &cobra.Command{
	Use:   "demand <scenario.yaml>",
	Short: "Build a scenario graph and scale producers from its demand list",
	Long: `Replays the scenario's steps, then seeds the scenario's demands and
propagates them backwards through the producers. Every producer is scaled
just enough to cover what its consumers ask for.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scenario.LoadFile(args[0])
		if err != nil {
			return err
		}
		s, _, err := newSession()
		if err != nil {
			return err
		}
		run, err := sc.Replay(s, scenario.WithLogger(logger))
		if err != nil {
			return err
		}
		g := s.Snapshot()
		seeds, err := run.Demands(sc, g)
		if err != nil {
			return err
		}
		res, err := demand.Propagate(g, seeds,
			demand.WithLogger(logger),
			demand.WithIterationFactor(iterationFactor))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		view := demandView{
			Scenario:  sc.Name,
			Passes:    res.Passes,
			Converged: res.Converged,
			Demands:   res.Demands,
			Nodes:     viewNodes(res.Graph),
		}
		if outputFormat == outputJSON {
			return writeJSON(out, view)
		}

		fmt.Fprintf(out, "scenario %q: %d seeds, %d passes\n", view.Scenario, len(seeds), view.Passes)
		if !view.Converged {
			warnColor.Fprintf(out, "warning: propagation hit its bound of %d passes\n", res.Bound)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		headerColor.Fprintln(tw, "NODE\tMATERIAL\tDEMAND")
		for _, d := range view.Demands {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", d.NodeID, d.Material, formatRate(d.Rate))
		}
		if err = tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return writeNodeTable(out, view.Nodes)
	},
}

func init() {
	demandCmd.Flags().IntVar(&iterationFactor, "iteration-factor", demand.DefaultIterationFactor, "Propagation pass bound per node")
	AddCommand(demandCmd)
}
