package ui

import (
	"fmt"
	"io"
	"os"
)

// ASCII logo for the application
const ASCIILogo = `
    ╔═══════════════════════════════════════════════════════════╗
    ║  ██╗███╗   ███╗ ██████╗     ██╗  ██╗ █████╗ ██████╗ ██╗   ║
    ║  ██║████╗ ████║██╔════╝     ██║  ██║██╔══██╗██╔══██╗██║   ║
    ║  ██║██╔████╔██║██║  ███╗    ███████║███████║██████╔╝██║   ║
    ║  ██║██║╚██╔╝██║██║   ██║    ██╔══██║██╔══██║██╔══██╗╚═╝   ║
    ║  ██║██║ ╚═╝ ██║╚██████╔╝    ██║  ██║██║  ██║██║  ██║██╗   ║
    ║  ╚═╝╚═╝     ╚═╝ ╚═════╝     ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝   ║
    ║          IMAGE SEARCH, DOWNLOAD AND NORMALIZATION          ║
    ╚═══════════════════════════════════════════════════════════╝
`

var (
	noColor   bool
	quietMode bool
	output    io.Writer = os.Stdout
)

// SetNoColor disables ANSI colors
func SetNoColor(disabled bool) {
	noColor = disabled
}

// SetQuietMode suppresses everything except errors
func SetQuietMode(quiet bool) {
	quietMode = quiet
}

// IsQuiet reports whether quiet mode is on
func IsQuiet() bool {
	return quietMode
}

// SetOutput redirects terminal output
func SetOutput(w io.Writer) {
	output = w
}

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if noColor {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	if quietMode {
		return
	}
	fmt.Fprint(output, Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(output, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(output, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if quietMode {
		return
	}
	fmt.Fprintln(output, Green(msg))
}

// PrintInfo prints an info message in cyan
func PrintInfo(label string, value string) {
	if quietMode {
		return
	}
	fmt.Fprintf(output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if quietMode {
		return
	}
	if len(args) > 0 {
		fmt.Fprintln(output, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(output, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	if quietMode {
		return
	}
	fmt.Fprintln(output, Magenta(msg))
}
