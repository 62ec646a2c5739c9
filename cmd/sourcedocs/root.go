package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/sourcedocs/pkg/config"
)

const rootLongDesc = `
sourcedocs turns the JSON output of a Swift source parser into browsable
documentation: Markdown or HTML pages, a top-level index and a SQLite lookup
index for docset packaging.

Configuration is read from a YAML file (--config or SOURCEDOCS_CONFIG), then
SOURCEDOCS_* environment variables, then command-line flags.
`

// globalOptions are shared by every subcommand
type globalOptions struct {
	configPath string
	payload    string
	logLevel   string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "sourcedocs",
		Short:         "Generate documentation from parsed Swift sources",
		Long:          strings.TrimSpace(rootLongDesc),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Version = Version
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVarP(&opts.payload, "payload", "p", "", "parser output JSON to document")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// load reads configuration and applies the global flags on top
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.payload != "" {
		cfg.Project.Payload = o.payload
	}
	if o.logLevel != "" {
		if err := cfg.Observability.LogLevel.UnmarshalText([]byte(o.logLevel)); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sourcedocs version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "sourcedocs %s\n", Version)
			return err
		},
	}
}
