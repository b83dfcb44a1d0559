package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/deskagent/controller"
	"github.com/tailored-agentic-units/deskagent/desktop"
	"github.com/tailored-agentic-units/deskagent/observability"
)

const version = "0.1.0"

type options struct {
	configFile string
	envFile    string
	prompt     string
	debug      bool
}

func newRootCmd(driver desktop.Driver) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "deskagent",
		Short: "Computer operation expert: a conversational desktop automation agent",
		Long: "deskagent answers questions about operating your computer and carries out " +
			"file, system, mouse, keyboard and screen actions through an LLM with tool calling. " +
			"Credentials come from QIANWEN_API_KEY and QIANWEN_API_BASE, or DESKAGENT_API_KEY and DESKAGENT_API_BASE.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadEnv(opts.envFile)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, driver, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (JSON, YAML or TOML)")
	flags.StringVar(&opts.envFile, "env", ".env", "dotenv file loaded before reading the environment")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "start with debug mode on")
	rootCmd.Flags().StringVarP(&opts.prompt, "prompt", "p", "", "ask a single question and exit")

	rootCmd.AddCommand(
		newToolsCmd(driver, opts),
		newMCPCmd(driver, opts),
		newVersionCmd(),
	)

	return rootCmd
}

// loadEnv loads a dotenv file without overriding variables already set. A
// missing file is not an error.
func loadEnv(file string) error {
	if file == "" {
		return nil
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", file, err)
	}
	return nil
}

func runChat(cmd *cobra.Command, driver desktop.Driver, opts *options) error {
	a, err := newApp(cmd, driver, opts)
	if err != nil {
		return err
	}

	k, err := a.kernel()
	if err != nil {
		return err
	}

	observer, err := observability.GetObserver(a.cfg.Observer)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := controller.New(k, a.cfg.Session,
		controller.WithOutput(cmd.OutOrStdout()),
		controller.WithLevel(a.level),
		controller.WithLogger(a.logger),
		controller.WithObserver(observer),
		controller.WithTranscripts(a.cache),
		controller.WithDebug(opts.debug),
	)

	if opts.prompt != "" {
		return c.Ask(ctx, opts.prompt)
	}
	return c.Run(ctx, cmd.InOrStdin())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}
