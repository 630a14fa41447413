// Package editor is the mutable model behind a production-graph editor.
//
// A Session owns one core.Graph and serializes every edit on it:
//
//   - AddRecipe / AddRecipeNode / AddBalancer place nodes.
//   - Connect validates ports (recipe.IsValidConnection, balancer.Plan),
//     applies balancer commands and resolves the edge material.
//   - RemoveEdge / RemoveNode delete structure; balancer ports they used
//     stay used and a full side grows a fresh port.
//   - SetOutputRate is the manual edit; SetLocked / SetUnlocked steer it.
//
// Every edit clones the live graph, changes the clone, runs solver.Solve on
// it and swaps the solved copy in. A failing edit leaves the live graph as it
// was, so callers can report the error and keep the session.
//
// Observability hooks (WithOnSolve, WithOnEdit) let the metrics package
// count solves and rejected edits without the editor importing it.
package editor
