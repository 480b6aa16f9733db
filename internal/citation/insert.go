// AngelaMos | 2026
// insert.go

package citation

// InsertCitation splices c.InText into text at a character offset. Offsets
// count runes and are clamped to the text, so the marker always starts
// exactly at the clamped position and no separator is added.
func InsertCitation(text string, position int, c Citation) string {
	rs := []rune(text)

	if position < 0 {
		position = 0
	}
	if position > len(rs) {
		position = len(rs)
	}

	out := make([]rune, 0, len(rs)+len([]rune(c.InText)))
	out = append(out, rs[:position]...)
	out = append(out, []rune(c.InText)...)
	out = append(out, rs[position:]...)

	return string(out)
}
