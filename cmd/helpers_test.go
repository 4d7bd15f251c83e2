package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/iksnae/adk-chat/testutil"
)

const testApp = "demo_app"

// resetFlags restores every flag variable; rootCmd is shared between tests
func resetFlags() {
	verbose = false
	configPath, baseURL, appName, userID, dataDir = "", "", "", "", ""
	limit, since, showOffline, showClearCache = 0, "", false, false
	sendSessionID = ""
	format, outputDir, exportOffline, clearCache = "jsonl", "", false, false
	healthcheckDetails = false

	for _, c := range append([]*cobra.Command{rootCmd}, rootCmd.Commands()...) {
		for _, name := range []string{"help", "version"} {
			if f := c.Flags().Lookup(name); f != nil {
				_ = f.Value.Set("false")
				f.Changed = false
			}
		}
	}
}

// executeCommand runs the CLI with args and returns what it wrote to stdout
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), err
}

// testEnv points the CLI at a fake backend and an isolated data directory
func testEnv(t *testing.T) (*testutil.FakeBackend, string) {
	t.Helper()
	backend := testutil.NewFakeBackend(t, testApp)
	dir := testutil.CreateTempDir(t)
	t.Setenv("ADK_CHAT_DATA_DIR", dir)
	t.Setenv("ADK_CHAT_BASE_URL", backend.URL)
	t.Setenv("ADK_CHAT_APP", testApp)
	t.Setenv("ADK_CHAT_USER", "u1")
	return backend, dir
}

// enableCapabilities writes a config file turning on delete and rename
func enableCapabilities(t *testing.T, dir string) {
	t.Helper()
	testutil.CreateConfigFixture(t, dir, "config.yaml", "capabilities:\n  delete: true\n  rename: true\n")
}

// seedConversation adds a session with a tool-using exchange
func seedConversation(backend *testutil.FakeBackend, id string, ts float64) {
	backend.AddSession("u1", id, ts,
		testutil.UserEvent("e1", "plan a trip", ts),
		testutil.ToolCallEvent("e2", "lookup", map[string]interface{}{"city": "Lisbon"}, ts+1),
		testutil.ToolResponseEvent("e3", "lookup", map[string]interface{}{"status": "success"}, ts+2),
		testutil.ModelEvent("e4", "Lisbon is lovely in May.", ts+3),
	)
}
