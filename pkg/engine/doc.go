// Package engine implements the dotsync operations: apply, add, reset,
// diff, status, the ignore list commands and prune.
//
// Every operation resolves the overlay afresh from the repo configs it was
// given, classifies the candidate files with the modification detector and
// acts per file. Per-file failures become Error entries in the returned
// report; only fatal errors (hash store, configuration) end an operation
// early.
//
// Classification states:
//
//	Missing      target absent, safe to create
//	Unchanged    target holds content dotsync placed there
//	Modified     target carries user edits; apply leaves it alone
//	UnitBlocked  a sibling in the same unit is modified
//	Ignored      target is on the ignore list
package engine
