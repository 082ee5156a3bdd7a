// Command uistream is the all-in-one uistream CLI.
package main

import (
	"os"

	uistreamcmder "github.com/papercomputeco/uistream/cmd/uistream"
)

func main() {
	if err := uistreamcmder.NewUIStreamCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
