// Command stackproof validates a deployed document-vault environment:
// it inspects the cloud resources the deployment is expected to have,
// exercises the application API, and records every outcome for export.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
