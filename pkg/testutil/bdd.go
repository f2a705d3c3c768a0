package testutil

import "testing"

// Given, When and Then run fn as a named subtest so scenario tests read as
// stories in `go test -v` output.
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Given "+desc, fn)
}

// When runs the action step of a scenario.
func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("When "+desc, fn)
}

// Then runs an assertion step. Nested under When it checks that step's outcome.
func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Then "+desc, fn)
}
