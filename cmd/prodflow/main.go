// Command prodflow replays production-graph scenarios and prints the solved rates.
package main

import "github.com/katalvlaran/prodflow/cmd/prodflow/commands"

func main() {
	commands.Execute()
}
