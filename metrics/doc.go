// Package metrics exposes solver and editor activity as Prometheus collectors.
//
// A Recorder owns a private registry so several sessions (or tests) never
// collide on the global one. Wire it into an editor.Session through the
// session hooks:
//
//	rec := metrics.New()
//	s, _ := editor.New(catalog.Default(), rec.EditorOptions()...)
//	...
//	_ = rec.WriteText(os.Stdout)
//
// Collected series:
//
//	prodflow_solver_solves_total{op,mode,converged}
//	prodflow_solver_passes                      (histogram)
//	prodflow_solver_updates_total
//	prodflow_solver_duration_seconds            (histogram)
//	prodflow_editor_edits_total{op,result}
//	prodflow_graph_nodes / prodflow_graph_edges (gauges, last committed solve)
package metrics
