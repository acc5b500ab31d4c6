package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/nutriboard/internal/app"
	nbcli "github.com/thenoetrevino/nutriboard/internal/cli"
	"github.com/thenoetrevino/nutriboard/internal/testutil"
)

// ExecuteCLICommand runs cmd with args against testApp and returns what it
// printed to stdout
func ExecuteCLICommand(t *testing.T, testApp *app.App, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	return ExecuteCLICommandWithContext(t, context.Background(), testApp, cmd, args)
}

func ExecuteCLICommandWithContext(t *testing.T, ctx context.Context, testApp *app.App, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	require.NotNil(t, testApp, "call SetupCLITest first")

	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	var runErr error
	out := testutil.CaptureOutput(t, func() {
		runErr = cmd.ExecuteContext(nbcli.WithApp(ctx, testApp))
	})
	return out, runErr
}

// ParseJSON decodes a --json envelope, failing the test on bad output
func ParseJSON(t *testing.T, output string) map[string]any {
	t.Helper()

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &result), "output: %s", output)
	return result
}
