package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthcheckCommand(t *testing.T) {
	backend, _ := testEnv(t)
	backend.AddSession("u1", "s1", 1700000000)

	out, err := executeCommand(t, "healthcheck", "--details")
	require.NoError(t, err)

	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "App: "+testApp)
	assert.Contains(t, out, "Backend reachable, 1 session(s) for u1")
	assert.Contains(t, out, "[1] s1")
	assert.Contains(t, out, "Title store available")
	assert.Contains(t, out, "Transcript cache holds 0 conversation(s)")
	assert.Contains(t, out, "Health check passed!")
}

func TestHealthcheckCommand_Failures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "invalid base url",
			env:  map[string]string{"ADK_CHAT_BASE_URL": "ftp://example.com"},
			want: "Invalid configuration",
		},
		{
			name: "unknown app",
			env:  map[string]string{"ADK_CHAT_APP": "other_app"},
			want: `does not know app "other_app"`,
		},
		{
			name: "nothing listening",
			env:  map[string]string{"ADK_CHAT_BASE_URL": "http://127.0.0.1:1"},
			want: "Is the agent server running?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			out, err := executeCommand(t, "healthcheck")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "health check failed")
			assert.Contains(t, out, tt.want)
		})
	}
}
