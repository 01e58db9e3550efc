package css

import "strings"

func (d Declaration) String() string {
	return d.Property + ": " + d.Value + ";"
}

func (r Rule) String() string {
	var b strings.Builder
	for i, sel := range r.Selectors {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sel.String())
	}
	b.WriteString(" {\n")
	for _, d := range r.Declarations {
		b.WriteString("  ")
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.String()
}

// String re-emits the sheet in a canonical form. Parsing the output yields
// the same Stylesheet, which the tests lean on.
func (s Stylesheet) String() string {
	var b strings.Builder
	for _, r := range s.Rules {
		b.WriteString(r.String())
	}
	return b.String()
}
