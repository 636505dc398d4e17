package schema

import "strings"

// NormalizeYesNo maps a confirmation answer to yes/no. ok is false for anything
// other than a single Y or N, case-insensitive, surrounding blanks ignored.
func NormalizeYesNo(answer string) (yes bool, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(answer)) {
	case "Y":
		return true, true
	case "N":
		return false, true
	default:
		return false, false
	}
}
