//go:build debug

package debug

// Debug controls expensive sanity checks and verbose stack reporting.
const Debug = true
