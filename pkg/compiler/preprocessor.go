package compiler

import "strings"

const (
	utf8BOM   = "\ufeff"
	amsdosEOF = '\x1a' // ^Z, pads the last record of AMSDOS text files
)

// Normalize prepares raw program text for the lexer: it drops a leading
// byte order mark, cuts the text at the first ^Z and turns CRLF and lone
// CR line breaks into LF. Source offsets in diagnostics refer to the
// normalized text.
func Normalize(src string) string {
	src = strings.TrimPrefix(src, utf8BOM)
	if i := strings.IndexByte(src, amsdosEOF); i >= 0 {
		src = src[:i]
	}
	if !strings.Contains(src, "\r") {
		return src
	}
	src = strings.ReplaceAll(src, "\r\n", "\n")
	return strings.ReplaceAll(src, "\r", "\n")
}
