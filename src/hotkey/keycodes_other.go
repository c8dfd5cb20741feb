//go:build !windows

package hotkey

import (
	"log"
	"strings"

	gohook "github.com/robotn/gohook"
)

// eventCode returns the portable hook keycode carried by ev. Rawcodes are
// platform keysyms outside Windows, so matching uses gohook's keycode table.
func eventCode(ev gohook.Event) uint16 { return ev.Keycode }

func codesFor(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	var names []string
	switch keyName {
	case "ctrl":
		names = []string{"ctrl", "rctrl"}
	case "alt":
		names = []string{"alt", "ralt"}
	case "shift":
		names = []string{"shift", "rshift"}
	default:
		names = []string{keyName}
	}
	var codes []uint16
	for _, n := range names {
		if c, ok := gohook.Keycode[n]; ok {
			codes = append(codes, c)
		}
	}
	if len(codes) == 0 {
		log.Printf("WARNING: Unknown key name '%s', cannot map to keycode", keyName)
	}
	return codes
}
