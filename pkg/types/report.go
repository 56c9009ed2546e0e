package types

import (
	"sort"
	"time"
)

// Outcome is the per-file result of an engine operation
type Outcome string

const (
	// OutcomeUnchanged means the target was left as is and is not user-modified
	OutcomeUnchanged Outcome = "unchanged"

	// OutcomeModified means the target carries user edits and blocks apply
	OutcomeModified Outcome = "modified"

	// OutcomeUnitBlocked means a sibling in the same unit is modified
	OutcomeUnitBlocked Outcome = "unit-blocked"

	// OutcomeIgnored means the path is on the ignore list
	OutcomeIgnored Outcome = "ignored"

	// OutcomeMissing means the target is absent and safe to create
	OutcomeMissing Outcome = "missing"

	// OutcomeCreated means a new file was written
	OutcomeCreated Outcome = "created"

	// OutcomeUpdated means an existing file was overwritten
	OutcomeUpdated Outcome = "updated"

	// OutcomeError means the file could not be processed; Detail holds the reason
	OutcomeError Outcome = "error"
)

// Blocks reports whether the state prevents apply from writing the target
func (o Outcome) Blocks() bool {
	switch o {
	case OutcomeModified, OutcomeUnitBlocked, OutcomeIgnored, OutcomeError:
		return true
	}
	return false
}

// ReportEntry is one line of a report
type ReportEntry struct {
	TargetPath string  `json:"target_path"`
	SourcePath string  `json:"source_path,omitempty"`
	Repo       string  `json:"repo,omitempty"`
	Outcome    Outcome `json:"outcome"`
	Detail     string  `json:"detail,omitempty"`
	// Code is the error code for OutcomeError entries
	Code string `json:"code,omitempty"`
}

// Report is the structured result of an engine operation
type Report struct {
	Command   string        `json:"command"`
	Timestamp time.Time     `json:"timestamp"`
	DryRun    bool          `json:"dry_run"`
	Entries   []ReportEntry `json:"entries"`
	// Notes are informational messages, never errors
	Notes []string `json:"notes,omitempty"`
	// Warnings carry repo-level problems that did not stop the operation
	Warnings []string `json:"warnings,omitempty"`
}

// NewReport creates an empty report for a command
func NewReport(command string, dryRun bool) *Report {
	return &Report{
		Command:   command,
		Timestamp: time.Now(),
		DryRun:    dryRun,
		Entries:   []ReportEntry{},
	}
}

// Add appends an entry
func (r *Report) Add(entry ReportEntry) {
	r.Entries = append(r.Entries, entry)
}

// Count returns how many entries have the given outcome
func (r *Report) Count(outcome Outcome) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == outcome {
			n++
		}
	}
	return n
}

// Counts returns the number of entries per outcome
func (r *Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, e := range r.Entries {
		counts[e.Outcome]++
	}
	return counts
}

// HasErrors reports whether any entry failed
func (r *Report) HasErrors() bool {
	return r.Count(OutcomeError) > 0
}

// Entry returns the entry for a target path
func (r *Report) Entry(targetPath string) (ReportEntry, bool) {
	for _, e := range r.Entries {
		if e.TargetPath == targetPath {
			return e, true
		}
	}
	return ReportEntry{}, false
}

// SortByTarget orders entries by target path
func (r *Report) SortByTarget() {
	sort.SliceStable(r.Entries, func(i, j int) bool {
		return r.Entries[i].TargetPath < r.Entries[j].TargetPath
	})
}
