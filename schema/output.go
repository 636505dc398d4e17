package schema

// Prompt is the DOS-style input prompt.
const Prompt = `C:\> `

// ProductVersion is printed by VER.
const ProductVersion = "Terminal Clock Version 1.1"

// CountdownSeconds is the fixed length of the shutdown countdown.
const CountdownSeconds = 10

// ErrorMarker prefixes lines that report an error.
const ErrorMarker = "\x1f"

// EchoMarker prefixes the echo of a submitted input line.
const EchoMarker = "\x1e"

// Banner is appended when a session starts.
var Banner = []string{
	"MS-DOS Version 6.22",
	"(C)Copyright Microsoft Corporation 1981-1994.",
	"Terminal Clock",
	"",
	"Type 'HELP' for a list of commands.",
	"",
}

// StripMarkers removes a leading output marker from a line.
func StripMarkers(line string) string {
	if len(line) == 0 {
		return line
	}
	switch line[:1] {
	case ErrorMarker, EchoMarker:
		return line[1:]
	}
	return line
}
