//go:build !gui

package main

import (
	"os"

	"github.com/metcalfc/hark/internal/tui"
)

func main() {
	os.Exit(run("hark", tui.Run))
}
