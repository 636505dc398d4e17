package console

import (
	"strconv"

	"pkt.systems/termclock/schema"
)

type rgb struct {
	r int
	g int
	b int
}

type tuiTheme struct {
	Name     schema.ThemeName
	BG       rgb
	FG       rgb
	TitleBG  rgb
	TitleFG  rgb
	ErrorFG  rgb
	EchoFG   rgb
	PromptFG rgb
	StatusFG rgb
}

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
)

var tuiThemes = map[schema.ThemeName]tuiTheme{
	"dos": {
		Name:     "dos",
		BG:       rgb{r: 0, g: 0, b: 0},
		FG:       rgb{r: 192, g: 192, b: 192},
		TitleBG:  rgb{r: 0, g: 0, b: 170},
		TitleFG:  rgb{r: 255, g: 255, b: 255},
		ErrorFG:  rgb{r: 255, g: 85, b: 85},
		EchoFG:   rgb{r: 255, g: 255, b: 255},
		PromptFG: rgb{r: 255, g: 255, b: 255},
		StatusFG: rgb{r: 255, g: 255, b: 85},
	},
	"amber": {
		Name:     "amber",
		BG:       rgb{r: 20, g: 12, b: 0},
		FG:       rgb{r: 255, g: 176, b: 0},
		TitleBG:  rgb{r: 255, g: 176, b: 0},
		TitleFG:  rgb{r: 20, g: 12, b: 0},
		ErrorFG:  rgb{r: 255, g: 96, b: 48},
		EchoFG:   rgb{r: 255, g: 214, b: 120},
		PromptFG: rgb{r: 255, g: 214, b: 120},
		StatusFG: rgb{r: 255, g: 230, b: 160},
	},
	"phosphor": {
		Name:     "phosphor",
		BG:       rgb{r: 0, g: 12, b: 0},
		FG:       rgb{r: 51, g: 255, b: 51},
		TitleBG:  rgb{r: 51, g: 255, b: 51},
		TitleFG:  rgb{r: 0, g: 12, b: 0},
		ErrorFG:  rgb{r: 255, g: 80, b: 80},
		EchoFG:   rgb{r: 170, g: 255, b: 170},
		PromptFG: rgb{r: 170, g: 255, b: 170},
		StatusFG: rgb{r: 220, g: 255, b: 120},
	},
}

func themeForName(name schema.ThemeName) tuiTheme {
	if name == "" {
		name = schema.DefaultTheme
	}
	if theme, ok := tuiThemes[name]; ok {
		return theme
	}
	return tuiThemes[schema.DefaultTheme]
}

// base resets attributes and applies the theme colors.
func (t tuiTheme) base() string {
	return ansiReset + ansiBgRGB(t.BG) + ansiFgRGB(t.FG)
}

func ansiFgRGB(c rgb) string {
	return "\x1b[38;2;" + strconv.Itoa(c.r) + ";" + strconv.Itoa(c.g) + ";" + strconv.Itoa(c.b) + "m"
}

func ansiBgRGB(c rgb) string {
	return "\x1b[48;2;" + strconv.Itoa(c.r) + ";" + strconv.Itoa(c.g) + ";" + strconv.Itoa(c.b) + "m"
}
