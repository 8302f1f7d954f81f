package cmd

import (
	"fmt"
	"io"
	"os"
)

// ── Output helpers ────────────────────────────────────────────────────────────
// Every command prints through these so icons and indentation stay uniform.
//
//   ✓  available / done
//   ✗  error                    (written to errOut)
//   ⚠  warning
//   ○  skipped
//   -  missing
//   ~  neutral info

// out and errOut are swapped by tests.
var (
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
)

// printSection prints a top-level header, e.g. "=== Femur ===".
func printSection(title string) {
	fmt.Fprintf(out, "\n=== %s ===\n", title)
}

// printBullet prints a grouped-section bullet, e.g. "● Specifications:".
func printBullet(title string) {
	fmt.Fprintf(out, "\n● %s\n", title)
}

func printLine(w io.Writer, icon, name, msg string) {
	if name == "" {
		fmt.Fprintf(w, "  %s  %s\n", icon, msg)
		return
	}
	fmt.Fprintf(w, "  %s  [%s] %s\n", icon, name, msg)
}

func printOK(name, msg string)   { printLine(out, "✓", name, msg) }
func printErr(name, msg string)  { printLine(errOut, "✗", name, msg) }
func printWarn(name, msg string) { printLine(out, "⚠", name, msg) }
func printSkip(name, msg string) { printLine(out, "○", name, msg) }
func printMiss(name, msg string) { printLine(out, "-", name, msg) }
func printInfo(name, msg string) { printLine(out, "~", name, msg) }

// printAvailability prints ✓ or - for one asset path.
func printAvailability(name, path string, ok bool) {
	if ok {
		printOK(name, path)
	} else {
		printMiss(name, path+" (not available)")
	}
}
