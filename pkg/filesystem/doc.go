// Package filesystem provides filesystem implementations for dotsync.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem and an afero-backed filesystem used
// by tests, plus the atomic write helpers every copy in dotsync goes through.
package filesystem
