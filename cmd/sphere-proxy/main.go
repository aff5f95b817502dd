// Command sphere-proxy runs the sharding proxy's execution fan-out engine
// against a set of configured data sources.
package main

import (
	"fmt"
	"os"

	"github.com/innerpeacez/sharding-sphere/cmd/sphere-proxy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
