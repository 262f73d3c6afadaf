// forensilog - Forensic Log Summaries
//
// forensilog parses log files into records and summarises levels, source
// addresses, actors, errors and suspicious activity.
package main

import (
	"os"

	"github.com/ccollicutt/forensilog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
