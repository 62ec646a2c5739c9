package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/sourcedocs/pkg/config"
)

type generateOptions struct {
	output    string
	docset    string
	layout    string
	format    string
	minAccess string
	title     string
}

func newGenerateCmd(global *globalOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the documentation once and exit",
		Long: `Build the documentation once: read the payload, merge extensions, render
every page to the configured sink and write the docset lookup index.

Example:

  sourcedocs generate --payload build/docs.json --output docs --title MyKit`,
		Args: cobra.NoArgs,
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "output directory for the filesystem sink")
	flags.StringVar(&opts.docset, "docset", "", "path of the SQLite docset index to write")
	flags.StringVar(&opts.layout, "layout", "", "page layout: multi-page or single-page")
	flags.StringVar(&opts.format, "format", "", "page format: markdown or html")
	flags.StringVar(&opts.minAccess, "min-access", "", "lowest access level to document")
	flags.StringVar(&opts.title, "title", "", "index page title")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := global.load()
		if err != nil {
			return err
		}
		if err := opts.apply(cfg); err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.shutdown.Shutdown()

		res, err := a.builder.Build(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), res.String())
		return err
	}
	return cmd
}

// apply overrides cfg with the flags that were set and revalidates it
func (o *generateOptions) apply(cfg *config.Config) error {
	if o.output != "" {
		cfg.Output.Directory = o.output
	}
	if o.docset != "" {
		cfg.Output.Docset = o.docset
	}
	if o.title != "" {
		cfg.Build.Title = o.title
	}
	if o.layout != "" {
		if err := cfg.Build.Layout.UnmarshalText([]byte(o.layout)); err != nil {
			return fmt.Errorf("invalid --layout: %w", err)
		}
	}
	if o.format != "" {
		if err := cfg.Build.Format.UnmarshalText([]byte(o.format)); err != nil {
			return fmt.Errorf("invalid --format: %w", err)
		}
	}
	if o.minAccess != "" {
		if err := cfg.Build.MinAccess.UnmarshalText([]byte(o.minAccess)); err != nil {
			return fmt.Errorf("invalid --min-access: %w", err)
		}
	}
	return cfg.Validate()
}
