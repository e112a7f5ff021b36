package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format renders a problem as text
func Format(p *Problem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Problem %d: %s\n\n", p.ID, p.Title)
	fmt.Fprintf(&b, "Description: %s\n\n", p.Description)
	fmt.Fprintf(&b, "Input: %s\n", p.InputDesc)
	fmt.Fprintf(&b, "Output: %s\n\n", p.OutputDesc)
	b.WriteString("Constraints:\n")
	for _, c := range p.Constraints {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nExamples:\n")
	for _, e := range p.Examples {
		fmt.Fprintf(&b, "Input: %s\nOutput: %s\n\n", Render(e.Input), Render(e.Output))
	}
	return b.String()
}

// Render formats a case value in JSON notation
func Render(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
