// Package remap provides the identity remap tables built during an
// import run. Each table maps original entity IDs from the manifest to
// the IDs the target host actually assigned. A Set is created empty at
// the start of a run, threaded through the pipeline steps, and discarded
// at run end; it is never shared between runs.
package remap

// Table maps original ID to newly assigned ID for one entity kind.
// Entries exist only where the two differ; absence means "unchanged".
type Table map[int64]int64

// NewTable returns an empty table.
func NewTable() Table {
	return make(Table)
}

// Record stores the original→assigned pair when they differ. Recording
// an unchanged ID is a no-op so Resolve's literal fallback stays correct.
func (t Table) Record(original, assigned int64) {
	if original != assigned {
		t[original] = assigned
	}
}

// Resolve returns the assigned ID for an original ID, falling back to
// the literal ID when no entry exists. The fallback covers both IDs the
// host reused unchanged and references the producer never exported.
func (t Table) Resolve(original int64) int64 {
	if assigned, ok := t[original]; ok {
		return assigned
	}
	return original
}

// Len reports the number of remapped IDs.
func (t Table) Len() int {
	return len(t)
}

// Set groups the three per-kind tables one import run owns.
type Set struct {
	Posts Table
	Terms Table
	Media Table
}

// NewSet returns a Set with three empty tables.
func NewSet() *Set {
	return &Set{
		Posts: NewTable(),
		Terms: NewTable(),
		Media: NewTable(),
	}
}
