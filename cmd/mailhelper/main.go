// Command mailhelper sends templated notifications and runs the delivery worker.
//
// Configuration comes from the environment. Run "mailhelper --help" for commands.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
