package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rcap107/caparezzology/internal/config"
	"github.com/rcap107/caparezzology/internal/credentials"
	"github.com/rcap107/caparezzology/internal/httpclient"
	"github.com/rcap107/caparezzology/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCmd(&cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg, logger: logging.Nop()}

	root := &cobra.Command{
		Use:           "caparezzology",
		Short:         "Collects song metadata from Genius and scrapes lyrics into a text corpus.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{
				Level:  a.cfg.LogLevel,
				Format: a.cfg.LogFormat,
				File:   a.cfg.LogFile,
			})
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.logger.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.CredentialsDir, "credentials-dir", cfg.CredentialsDir, "directory holding *.id credential files")
	flags.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "HTTP request timeout")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text, json, logfmt)")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also write logs to this rotating file")

	root.AddCommand(
		newCredentialsCmd(a),
		newFetchCmd(a),
		newScrapeCmd(a),
	)
	return root
}

func (a *app) loadCredentials() (*credentials.Store, error) {
	return credentials.Load(a.cfg.CredentialsDir, a.logger)
}

func (a *app) httpClient(creds httpclient.Credentials) *httpclient.Client {
	return httpclient.New(&http.Client{Timeout: a.cfg.HTTPTimeout}, creds, a.logger)
}

func newCredentialsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "credentials",
		Short: "List the credential names found in the credentials directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := a.loadCredentials()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range creds.Names() {
				header, _ := httpclient.HeaderFor(name, "")
				fmt.Fprintf(out, "%s\t%s\n", name, header)
			}
			return nil
		},
	}
}
