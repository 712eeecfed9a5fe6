package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

const previewWidth = 48

var (
	headingColors = text.Colors{text.FgBlue, text.Bold}
	okColors      = text.Colors{text.FgGreen}
	failColors    = text.Colors{text.FgRed}
)

func renderHeading(title string, colorize bool) string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if colorize {
		return headingColors.Sprint(line)
	}
	return line
}

func statusLabel(passed, colorize bool) string {
	switch {
	case passed && colorize:
		return okColors.Sprint("OK")
	case passed:
		return "OK"
	case colorize:
		return failColors.Sprint("FAIL")
	default:
		return "FAIL"
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// isInteractive reports whether reader is a terminal rather than a pipe or
// file.
func isInteractive(reader io.Reader) bool {
	file, ok := reader.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
