// =============================================================================
// SO Automation - Main Entry Point
// =============================================================================
//
// USAGE:
//   soauto process    - Convert every upload in the input directory
//   soauto validate   - Check uploads without writing anything
//   soauto version    - Display the application version
//
// LAYOUT:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parsing, grouping, projection, validation and writers
//   - pkg/       : File management shared by the commands
//   - profiles/  : Per-mode YAML profiles
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/so-automation/cmd"
)

func main() {
	cmd.Execute()
}
