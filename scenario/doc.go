// Package scenario replays scripted edits onto an editor.Session.
//
// A scenario is a YAML document naming the nodes it places with aliases and
// referring to them in later steps:
//
//	name: rubber line
//	steps:
//	  - op: add_recipe
//	    machine: Rubber Maker
//	    as: rubber
//	  - op: add_recipe
//	    machine: Assembly I
//	    as: assembly
//	  - op: connect
//	    from: rubber
//	    to: assembly
//	  - op: set_rate
//	    node: assembly
//	    material: Electronics1
//	    rate: 96
//	demands:
//	  - node: assembly
//	    material: Rubber
//	    rate: 24
//
// Step ops are the editor.Op names. Names that are not aliases are passed to
// the session unchanged, so literal node and edge IDs work too. Replay stops
// at the first failing step; the session keeps every step applied before it.
package scenario
