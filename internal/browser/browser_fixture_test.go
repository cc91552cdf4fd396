package browser

import (
	"os"
	"path/filepath"
	"testing"
)

// postingFixture mimics a posting page: listings, a form and a submit
// button guarded by confirm().
const postingFixture = `<!doctype html>
<html><body style="height: 4000px">
<div id="results">
  <a class="job" href="/jobs/1">First</a>
  <a class="job" href="/jobs/2" target="_blank">Second</a>
  <a class="job" href="/jobs/3">Third</a>
</div>
<form onsubmit="return false">
  <input id="name" value="old name">
  <input id="cv" type="file">
  <textarea id="letter"></textarea>
  <button id="send" type="button" onclick="if (confirm('Send application?')) { document.body.dataset.sent = 'yes'; }">Send</button>
</form>
</body></html>`

const testLetter = "Dear team,\nplease consider me."

// requireBrowserTests skips unless JOBSBOT_BROWSER_TESTS is set.
func requireBrowserTests(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	if os.Getenv("JOBSBOT_BROWSER_TESTS") == "" {
		t.Skip("set JOBSBOT_BROWSER_TESTS to run browser tests")
	}
}

func writeCV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cv.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write cv: %v", err)
	}
	return path
}
