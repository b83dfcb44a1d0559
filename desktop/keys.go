package desktop

import "strings"

// Common aliases mapped onto the names robotgo understands.
var keyAliases = map[string]string{
	"return":     "enter",
	"escape":     "esc",
	"del":        "delete",
	"win":        "cmd",
	"windows":    "cmd",
	"super":      "cmd",
	"command":    "cmd",
	"option":     "alt",
	"control":    "ctrl",
	"pgup":       "pageup",
	"pgdn":       "pagedown",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
	"spacebar":   "space",
	"bksp":       "backspace",
}

// NormalizeKey lowercases a key name and resolves common aliases.
func NormalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := keyAliases[k]; ok {
		return alias
	}
	return k
}
