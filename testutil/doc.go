// Package testutil provides shared helpers for testing the hydration
// pipeline: compact context tree builders, in-memory collaborator doubles,
// a logger spy, and spew-based tree dumps for readable failure output.
package testutil
