// The main package for the jobcrawler executable.
package main

import (
	"github.com/talentlens/jobcrawler/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
