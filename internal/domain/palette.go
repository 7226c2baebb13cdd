// Palette definition and color validation.
//
// The canvas uses the classic r/place 16-color palette. In strict mode only
// palette colors are accepted; in lax mode any "#RRGGBB" value passes, which
// keeps the server usable with clients that ship their own palettes.
package domain

// PaletteColor pairs a hex value with a human-readable name.
type PaletteColor struct {
	Hex  string `json:"hex"`
	Name string `json:"name"`
}

// Palette is the fixed 16-color canvas palette.
var Palette = []PaletteColor{
	{Hex: "#FFFFFF", Name: "White"},
	{Hex: "#E4E4E4", Name: "Light Gray"},
	{Hex: "#888888", Name: "Gray"},
	{Hex: "#222222", Name: "Black"},
	{Hex: "#FFA7D1", Name: "Pink"},
	{Hex: "#E50000", Name: "Red"},
	{Hex: "#E59500", Name: "Orange"},
	{Hex: "#A06A42", Name: "Brown"},
	{Hex: "#E5D900", Name: "Yellow"},
	{Hex: "#94E044", Name: "Lime"},
	{Hex: "#02BE01", Name: "Green"},
	{Hex: "#00D3DD", Name: "Cyan"},
	{Hex: "#0083C7", Name: "Blue"},
	{Hex: "#0000EA", Name: "Dark Blue"},
	{Hex: "#CF6EE4", Name: "Purple"},
	{Hex: "#820080", Name: "Dark Purple"},
}

// paletteSet indexes palette hex values (uppercase) for O(1) lookups.
var paletteSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Palette))
	for _, c := range Palette {
		m[c.Hex] = struct{}{}
	}
	return m
}()

// ValidColor reports whether color is acceptable for a placement.
//
// strict=true requires an exact (case-insensitive) palette match.
// strict=false accepts any "#" + 6 hex digits.
func ValidColor(color string, strict bool) bool {
	if len(color) != 7 || color[0] != '#' {
		return false
	}
	up := make([]byte, 7)
	up[0] = '#'
	for i := 1; i < 7; i++ {
		c := color[i]
		switch {
		case c >= '0' && c <= '9', c >= 'A' && c <= 'F':
			up[i] = c
		case c >= 'a' && c <= 'f':
			up[i] = c - ('a' - 'A')
		default:
			return false
		}
	}
	if !strict {
		return true
	}
	_, ok := paletteSet[string(up)]
	return ok
}
