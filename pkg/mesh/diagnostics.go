package mesh

import "fmt"

// Diagnostics collects non-fatal warnings produced during an import.
type Diagnostics struct {
	Warnings []string
}

// Warnf records a formatted warning.
func (d *Diagnostics) Warnf(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// Append records warnings produced elsewhere, e.g. by the parser.
func (d *Diagnostics) Append(warnings ...string) {
	d.Warnings = append(d.Warnings, warnings...)
}

// Empty reports whether no warning was recorded.
func (d *Diagnostics) Empty() bool {
	return d == nil || len(d.Warnings) == 0
}
