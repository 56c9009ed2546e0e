package main

import (
	"os"

	"github.com/arthur-debert/dotsync/cmd/dotsync"
)

func main() {
	os.Exit(dotsync.Main())
}
