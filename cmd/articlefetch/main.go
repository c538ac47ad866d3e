package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/articlefetch/internal/app"
	"github.com/hyperifyio/articlefetch/internal/article"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Exit status is 0 whatever happened; the outcome is the JSON on stdout.
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Error().Err(err).Msg("write output")
	}
}

// run executes one invocation. Whenever the command itself did not get to
// produce output (bad flags, --help, --version) it still prints {}.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		ran    bool
		runErr error
	)
	cmd := newRootCmd(func(c *cobra.Command, urls []string) {
		ran = true
		runErr = app.New(app.DefaultConfig()).Run(c.Context(), urls, stdout)
	})
	cmd.SetArgs(args)
	// help and version text must never reach stdout
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("invalid arguments")
	}
	if ran {
		return runErr
	}
	return article.Encode(stdout, nil)
}

func newRootCmd(handler func(*cobra.Command, []string)) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "articlefetch [url]",
		Short: "articlefetch prints the main article of a web page as JSON",
		Long: "articlefetch fetches a single web page and prints its readable text,\n" +
			"title and publication date as one JSON line on stdout.\n" +
			"Any failure prints {}. Diagnostics go to stderr.",
		Args:          cobra.ArbitraryArgs,
		Version:       app.VersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
		Run: handler,
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	return cmd
}
