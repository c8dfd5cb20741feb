//go:build windows

package hotkey

import (
	"log"
	"strings"

	gohook "github.com/robotn/gohook"
)

// Left and right virtual key codes per modifier.
var modifierRawcodes = map[string][]uint16{
	"ctrl":  {0xA2, 0xA3}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {0xA4, 0xA5}, // VK_LMENU, VK_RMENU
	"shift": {0xA0, 0xA1}, // VK_LSHIFT, VK_RSHIFT
}

// eventCode returns the Windows virtual key code carried by ev.
func eventCode(ev gohook.Event) uint16 { return ev.Rawcode }

// codesFor maps a modifier or a letter to its virtual key codes. Letters use
// their upper-case ASCII value (VK_A..VK_Z are 0x41..0x5A).
func codesFor(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if codes, ok := modifierRawcodes[keyName]; ok {
		return codes
	}
	if len(keyName) == 1 && keyName[0] >= 'a' && keyName[0] <= 'z' {
		return []uint16{uint16(keyName[0]-'a') + 0x41}
	}
	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}
