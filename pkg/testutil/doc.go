// Package testutil provides utilities for testing dotsync components.
//
// Key components:
//   - FileTree and the *T helpers: declarative file setup on any types.FS
//   - GetTestChecksum: the content hash format used by the hash store
//
// testutil imports nothing above pkg/types so that every package's internal
// tests can use it. Engine-level helpers live in testutil/testenv.
//
// All test data should be defined inline, and each test should build its
// own environment.
package testutil
