package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/distress/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyzer over HTTP",
	Long: `Serve exposes the analyzer as a JSON API:

  GET  /healthz
  POST /api/v1/analyze          {"text": "...", "include_sentences": true}
  POST /api/v1/sentences        {"sentence": "..."}
  GET  /api/v1/lexicon
  GET  /api/v1/lexicon/{category}

Example:
  distress serve --addr :8080 --provider finbert`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, store, err := buildAnalyzer(ctx, cfg)
		if err != nil {
			return err
		}

		return server.New(*zerolog.Ctx(ctx), a, store, cfg.Server).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
