// bundlereport - Build Layout Report Parser
//
// bundlereport parses the text build layout report of an asset bundle build
// into groups and assets with normalized sizes.
package main

import (
	"os"

	"github.com/ccollicutt/bundlereport/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
