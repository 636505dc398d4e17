package schema

import "strings"

// DefaultTheme is the default console theme name.
const DefaultTheme ThemeName = "dos"

var themeNames = []ThemeName{
	"dos",
	"amber",
	"phosphor",
}

// AvailableThemes returns the supported theme names.
func AvailableThemes() []ThemeName {
	out := make([]ThemeName, len(themeNames))
	copy(out, themeNames)
	return out
}

// NormalizeThemeName returns a canonical theme name if supported.
func NormalizeThemeName(name string) (ThemeName, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	switch normalized {
	case "dos", "msdos", "ms-dos":
		return "dos", true
	case "amber":
		return "amber", true
	case "phosphor", "green":
		return "phosphor", true
	default:
		return "", false
	}
}
