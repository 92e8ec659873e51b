package treesitter

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qsql/internal/terminal"
)

// ParseColor accepts "#rrggbb", "default" or a tcell colour name.
func ParseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		v, err := strconv.ParseUint(name[1:], 16, 32)
		if err != nil {
			return fallback
		}
		return tcell.NewRGBColor(int32(v>>16&0xff), int32(v>>8&0xff), int32(v&0xff))
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	if c := tcell.GetColor(name); c != tcell.ColorDefault {
		return c
	}
	return fallback
}

// SGR returns the escape selecting c as the foreground, or "" for the
// default colour.
func SGR(c tcell.Color) string {
	if c == tcell.ColorDefault {
		return ""
	}
	r, g, b := c.RGB()
	if r < 0 {
		return ""
	}
	return terminal.FgRGB(r, g, b)
}
