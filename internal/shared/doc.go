// Package shared holds code used across the tablenorm packages that belongs to
// no single layer.
//
// The testutil subpackage provides the helpers every package test uses:
//
//	- BufferedSlogHandler and NewTestLogger capture slog output, including
//	  attributes bound with Logger.With, for assertions
//	- AssertLogContains, AssertLogAttr and AssertNoErrors
//	- WriteFile for building input fixtures under t.TempDir()
//
// Example usage:
//
//	func TestProcess(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    input := testutil.WriteFile(t, t.TempDir(), "in.csv", "Name,Age\nsam,25\n")
//	    ...
//	    testutil.AssertLogContains(t, handler, slog.LevelInfo, "output written")
//	}
//
// testutil depends on the standard library only so that any package can use it
// without import cycles.
package shared
