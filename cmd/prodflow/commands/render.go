package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/samber/lo"

	"github.com/katalvlaran/prodflow/core"
	"github.com/katalvlaran/prodflow/dfs"
)

var (
	warnColor     = color.New(color.FgYellow, color.Bold)
	overrideColor = color.New(color.FgCyan)
	headerColor   = color.New(color.Bold)
)

type nodeView struct {
	ID         string        `json:"id"`
	Kind       string        `json:"kind"`
	Machine    string        `json:"machine,omitempty"`
	Machines   float64       `json:"machines,omitempty"`
	Material   string        `json:"material,omitempty"`
	Throughput float64       `json:"throughput,omitempty"`
	Inputs     []core.Stream `json:"inputs,omitempty"`
	Outputs    []core.Stream `json:"outputs,omitempty"`
	Override   bool          `json:"manualOverride,omitempty"`
	Locked     bool          `json:"locked,omitempty"`
	Unlocked   bool          `json:"unlocked,omitempty"`
}

type edgeView struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	SourcePort int    `json:"sourcePort"`
	Target     string `json:"target"`
	TargetPort int    `json:"targetPort"`
	Material   string `json:"material"`
}

// viewNodes lists producers before consumers when g has no loops, and
// falls back to insertion order otherwise.
func viewNodes(g *core.Graph) []nodeView {
	nodes := g.Nodes()
	if order, err := dfs.TopologicalSort(g); err == nil {
		nodes = lo.FilterMap(order, func(id string, _ int) (*core.Node, bool) {
			n, err := g.Node(id)
			return n, err == nil
		})
	}
	return lo.Map(nodes, func(n *core.Node, _ int) nodeView {
		v := nodeView{ID: n.ID, Kind: n.Data.Kind().String()}
		switch d := n.Data.(type) {
		case *core.RecipeNode:
			v.Machine = d.Machine
			v.Machines = d.Machines
			v.Inputs = d.Inputs
			v.Outputs = d.Outputs
			v.Override = d.HasManualOverride
			v.Locked = d.Locked
			v.Unlocked = d.Unlocked
		case *core.BalancerNode:
			v.Material = d.Material
			v.Throughput = d.Throughput
		}
		return v
	})
}

func viewEdges(g *core.Graph) []edgeView {
	return lo.Map(g.Edges(), func(e core.Edge, _ int) edgeView {
		return edgeView{
			ID:         e.ID,
			Source:     e.Source,
			SourcePort: e.SourcePort,
			Target:     e.Target,
			TargetPort: e.TargetPort,
			Material:   e.Material,
		}
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeNodeTable prints one row per node; manual overrides are highlighted.
func writeNodeTable(w io.Writer, nodes []nodeView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	headerColor.Fprintln(tw, "ID\tMACHINE\tMACHINES\tINPUTS\tOUTPUTS\tFLAGS")
	for _, n := range nodes {
		machine, machines := n.Machine, formatRate(n.Machines)
		inputs, outputs := formatStreams(n.Inputs), formatStreams(n.Outputs)
		if n.Kind == core.KindBalancer.String() {
			machine = "balancer"
			machines = "-"
			flow := formatStreams([]core.Stream{{Material: n.Material, Rate: n.Throughput}})
			inputs, outputs = flow, flow
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s", n.ID, machine, machines, inputs, outputs, flags(n))
		if n.Override {
			overrideColor.Fprintln(tw, row)
			continue
		}
		fmt.Fprintln(tw, row)
	}
	return tw.Flush()
}

func flags(n nodeView) string {
	var out []string
	if n.Override {
		out = append(out, "override")
	}
	if n.Locked {
		out = append(out, "locked")
	}
	if n.Unlocked {
		out = append(out, "unlocked")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}

func formatStreams(ss []core.Stream) string {
	if len(ss) == 0 {
		return "-"
	}
	return strings.Join(lo.Map(ss, func(s core.Stream, _ int) string {
		if s.Material == "" {
			return "? " + formatRate(s.Rate)
		}
		return s.Material + " " + formatRate(s.Rate)
	}), ", ")
}

func formatRate(x float64) string {
	return strconv.FormatFloat(core.Round2(x), 'f', -1, 64)
}
