// Package telnet provides a character-mode Telnet server with ANSI screen
// control for remote playthroughs.
package telnet

import (
	"fmt"
	"strings"
)

// ANSI escape code constants for terminal styling.
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Italic    = "\033[3m"
	Underline = "\033[4m"

	// Foreground colors
	Black   = "\033[30m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	// Bright foreground colors
	BrightBlack   = "\033[90m"
	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"

	// Background colors
	BgBlack   = "\033[40m"
	BgRed     = "\033[41m"
	BgGreen   = "\033[42m"
	BgYellow  = "\033[43m"
	BgBlue    = "\033[44m"
	BgMagenta = "\033[45m"
	BgCyan    = "\033[46m"
	BgWhite   = "\033[47m"
)

// Screen control sequences.
const (
	ClearScreen = "\033[2J"
	CursorHome  = "\033[H"
	ClearLine   = "\033[K"
	HideCursor  = "\033[?25l"
	ShowCursor  = "\033[?25h"
	// Bell rings the terminal bell.
	Bell = "\a"
	// Flash briefly inverts the whole screen.
	Flash = "\033[?5h"
	// Unflash restores normal video after Flash.
	Unflash = "\033[?5l"
)


// Frame returns lines as one full-screen redraw: home the cursor, write each
// line clearing its tail, then clear anything below.
//
// Postcondition: The result starts with CursorHome and ends with a clear-to-end sequence.
func Frame(lines []string) string {
	var b strings.Builder
	b.WriteString(CursorHome)
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString(ClearLine)
		b.WriteString("\r\n")
	}
	b.WriteString("\033[J")
	return b.String()
}

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text wrapped with the color code and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns the formatted text wrapped with color and Reset.
func Colorf(color, format string, args ...interface{}) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// StripANSI removes CSI escape sequences (colours, cursor and screen
// control) leaving only the visible text.
//
// Postcondition: Every complete \033[ ... <final byte> sequence is removed.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			// Parameter and intermediate bytes run until a final byte in 0x40-0x7E.
			j := i + 2
			for j < len(s) && (s[j] < 0x40 || s[j] > 0x7e) {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}
