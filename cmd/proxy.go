package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/voicetimeapp/voicetime/internal/categorize"
	apperrors "github.com/voicetimeapp/voicetime/internal/errors"
	"github.com/voicetimeapp/voicetime/internal/proxy"
)

var proxyFlagAddr string

// proxyCmd runs the credential-holding categorization proxy.
var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run the categorization proxy server",
	Long: `Run the thin HTTP proxy that holds the language model credential so
clients don't have to. Serves POST /categorize, POST /test-connection,
and GET /health.`,
	RunE: runProxy,
}

func init() {
	proxyCmd.Flags().StringVar(&proxyFlagAddr, "addr", ":8719", "Listen address")
}

func runProxy(cmd *cobra.Command, args []string) error {
	key := os.Getenv("VOICETIME_API_KEY")
	if key == "" {
		return apperrors.NewUserError(
			apperrors.ErrConfigurationMissing.Error(),
			"set VOICETIME_API_KEY in the proxy's environment",
		)
	}

	upstream := categorize.NewModelClient(os.Getenv("VOICETIME_API_URL"), os.Getenv("VOICETIME_MODEL"), key)
	server := proxy.NewServer(upstream, Version)
	return server.ListenAndServe(proxyFlagAddr)
}
