package importer

import "fmt"

// Warning is one non-fatal failure accumulated during a bulk step.
type Warning struct {
	Step    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Step, w.Message)
}

// Result reports one import run. Warnings keep their accumulation order
// so callers can distinguish zero failures, one fatal failure (returned
// as an error alongside a partial Result), and N non-fatal warnings.
type Result struct {
	PostsCreated    int
	TermsCreated    int
	TermsSkipped    int
	TermsAttached   int
	MediaImported   int
	MetaWritten     int
	OptionsWritten  int
	SchemasImported int

	Warnings []Warning
}

// warnf appends a formatted warning for a step.
func (r *Result) warnf(step, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Step: step, Message: fmt.Sprintf(format, args...)})
}
