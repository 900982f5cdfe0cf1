package service

// The frontend normalizes browser input into SDL keycode and modifier
// values, so every client speaks the same keyspace.

// Host keycodes (SDL keycode values)
const (
	KeycodeUnknown   uint32 = 0
	KeycodeBackspace uint32 = 8
	KeycodeTab       uint32 = 9
	KeycodeReturn    uint32 = 13
	KeycodeEscape    uint32 = 27
	KeycodeSpace     uint32 = 32

	KeycodeA uint32 = 97
	KeycodeB uint32 = 98
	KeycodeC uint32 = 99
	KeycodeD uint32 = 100
	KeycodeF uint32 = 102
	KeycodeG uint32 = 103
	KeycodeH uint32 = 104
	KeycodeI uint32 = 105
	KeycodeK uint32 = 107
	KeycodeM uint32 = 109
	KeycodeN uint32 = 110
	KeycodeO uint32 = 111
	KeycodeP uint32 = 112
	KeycodeR uint32 = 114
	KeycodeS uint32 = 115
	KeycodeT uint32 = 116
	KeycodeV uint32 = 118
	KeycodeW uint32 = 119
	KeycodeX uint32 = 120
	KeycodeZ uint32 = 122

	KeycodeDelete uint32 = 127

	KeycodeRight uint32 = 0x4000004F
	KeycodeLeft  uint32 = 0x40000050
	KeycodeDown  uint32 = 0x40000051
	KeycodeUp    uint32 = 0x40000052

	KeycodeLCtrl  uint32 = 0x400000E0
	KeycodeLShift uint32 = 0x400000E1
	KeycodeLAlt   uint32 = 0x400000E2
	KeycodeLGui   uint32 = 0x400000E3
	KeycodeRCtrl  uint32 = 0x400000E4
	KeycodeRShift uint32 = 0x400000E5
	KeycodeRAlt   uint32 = 0x400000E6
	KeycodeRGui   uint32 = 0x400000E7
)

// Host modifier bits (SDL KMOD values)
const (
	KmodNone   uint16 = 0x0000
	KmodLShift uint16 = 0x0001
	KmodRShift uint16 = 0x0002
	KmodLCtrl  uint16 = 0x0040
	KmodRCtrl  uint16 = 0x0080
	KmodLAlt   uint16 = 0x0100
	KmodRAlt   uint16 = 0x0200
	KmodLGui   uint16 = 0x0400
	KmodRGui   uint16 = 0x0800

	KmodCtrl  = KmodLCtrl | KmodRCtrl
	KmodShift = KmodLShift | KmodRShift
	KmodAlt   = KmodLAlt | KmodRAlt
	KmodGui   = KmodLGui | KmodRGui
)

// Shortcut modifier configuration bitmask
const (
	ShortcutModLCtrl uint8 = 1 << iota
	ShortcutModRCtrl
	ShortcutModLAlt
	ShortcutModRAlt
	ShortcutModLSuper
	ShortcutModRSuper
)

const shortcutModsMask = KmodCtrl | KmodAlt | KmodGui

// shortcutModsToHostMod expands a configured shortcut-mod bitmask into the
// host KMOD space
func shortcutModsToHostMod(mods uint8) uint16 {
	var hostMod uint16
	if mods&ShortcutModLCtrl != 0 {
		hostMod |= KmodLCtrl
	}
	if mods&ShortcutModRCtrl != 0 {
		hostMod |= KmodRCtrl
	}
	if mods&ShortcutModLAlt != 0 {
		hostMod |= KmodLAlt
	}
	if mods&ShortcutModRAlt != 0 {
		hostMod |= KmodRAlt
	}
	if mods&ShortcutModLSuper != 0 {
		hostMod |= KmodLGui
	}
	if mods&ShortcutModRSuper != 0 {
		hostMod |= KmodRGui
	}
	return hostMod
}

// Mouse buttons (SDL button numbers)
const (
	MouseButtonLeft   uint8 = 1
	MouseButtonMiddle uint8 = 2
	MouseButtonRight  uint8 = 3
	MouseButtonX1     uint8 = 4
	MouseButtonX2     uint8 = 5
)

// Android key event actions
const (
	AKeyEventActionDown = 0
	AKeyEventActionUp   = 1
)

// Android meta state flags
const (
	AMetaNone     = 0
	AMetaShiftOn  = 0x1
	AMetaAltOn    = 0x2
	AMetaCtrlOn   = 0x1000
	AMetaMetaOn   = 0x10000
	AMetaCapsLock = 0x100000
)

// Android keycodes used by the shortcut actions and the inject key processor
const (
	AKeycodeHome       = 3
	AKeycodeBack       = 4
	AKeycode0          = 7
	AKeycodeDpadUp     = 19
	AKeycodeDpadDown   = 20
	AKeycodeDpadLeft   = 21
	AKeycodeDpadRight  = 22
	AKeycodeVolumeUp   = 24
	AKeycodeVolumeDown = 25
	AKeycodePower      = 26
	AKeycodeA          = 29
	AKeycodeTab        = 61
	AKeycodeSpace      = 62
	AKeycodeEnter      = 66
	AKeycodeDel        = 67 // backspace
	AKeycodeMenu       = 82
	AKeycodeEscape     = 111
	AKeycodeForwardDel = 112
	AKeycodeAppSwitch  = 187
)

// androidKeycodeFromHost maps a host keycode to an Android keycode.
// Returns 0 for keys the inject processor does not translate (those are
// covered by text input events instead).
func androidKeycodeFromHost(keycode uint32) int {
	switch keycode {
	case KeycodeReturn:
		return AKeycodeEnter
	case KeycodeBackspace:
		return AKeycodeDel
	case KeycodeDelete:
		return AKeycodeForwardDel
	case KeycodeTab:
		return AKeycodeTab
	case KeycodeSpace:
		return AKeycodeSpace
	case KeycodeEscape:
		return AKeycodeEscape
	case KeycodeUp:
		return AKeycodeDpadUp
	case KeycodeDown:
		return AKeycodeDpadDown
	case KeycodeLeft:
		return AKeycodeDpadLeft
	case KeycodeRight:
		return AKeycodeDpadRight
	}

	// letters: host keycodes are ASCII lowercase
	if keycode >= KeycodeA && keycode <= KeycodeZ {
		return AKeycodeA + int(keycode-KeycodeA)
	}
	// digits
	if keycode >= '0' && keycode <= '9' {
		return AKeycode0 + int(keycode-'0')
	}
	return 0
}

// androidMetaStateFromHost translates held host modifiers to Android meta
// state flags
func androidMetaStateFromHost(mod uint16) int {
	meta := AMetaNone
	if mod&KmodShift != 0 {
		meta |= AMetaShiftOn
	}
	if mod&KmodAlt != 0 {
		meta |= AMetaAltOn
	}
	if mod&KmodCtrl != 0 {
		meta |= AMetaCtrlOn
	}
	if mod&KmodGui != 0 {
		meta |= AMetaMetaOn
	}
	return meta
}
