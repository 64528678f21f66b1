// Command wqreport turns monthly laboratory workbooks into water-quality
// charts, a PDF report and data exports.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
