// figaid - a design canvas helper
//
// figaid finds clear space for new frames on a design canvas, builds colour
// showcases from a document's styles and variables, and runs a local visual
// helper that captures the screen and records design tool exports.
package main

import (
	"github.com/jmylchreest/figaid/internal/cli"
)

func main() {
	cli.Execute()
}
