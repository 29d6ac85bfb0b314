// Command lia-sync keeps a Google Merchant Center catalog in step with a
// WooCommerce shop.
package main

import (
	"fmt"
	"os"

	"github.com/omarcs/lia-woocommerce/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}
