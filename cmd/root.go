package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fogswap/config"
	"fogswap/pkg/client"
	"fogswap/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "fogswap",
	Short: "A CLI for cryptocurrency swaps through the Fogswap API",
	Long: `fogswap is a command-line tool for swapping tokens across networks with Fogswap.
Ask for a quote, create the swap, send the payin and follow its status.

Examples:
  fogswap list-tokens --network eth
  fogswap quote 1 SOL to USDT --to-network eth
  fogswap swap 0.5 XMR to BTC --payout bc1q... --private
  fogswap status S7ZulO3j16 --watch`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("jq", "", "jq filter applied to JSON output (implies --json)")
	rootCmd.PersistentFlags().String("base-url", "", "Fogswap API base URL")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: .fogswap.yaml in $HOME or .)")
}

// session is the per-invocation state shared by all commands
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *client.FogswapClient
	verbose bool
	json    bool
	jq      string
}

func newSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Flags()
	verbose, _ := flags.GetBool("verbose")
	jsonOutput, _ := flags.GetBool("json")
	jq, _ := flags.GetString("jq")
	baseURL, _ := flags.GetString("base-url")
	configFile, _ := flags.GetString("config")

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.LogJSON)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:     cfg,
		logger:  logger,
		client:  client.NewFogswapClient(cfg.BaseURL, client.WithLogger(logger)),
		verbose: verbose,
		json:    jsonOutput || jq != "",
		jq:      jq,
	}, nil
}

// callContext bounds a single API call by the configured timeout. A negative timeout disables it.
func (s *session) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout < 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.cfg.Timeout)
}

// spin shows a spinner with message unless output is JSON; the returned func stops it
func (s *session) spin(message string) func() {
	if s.json {
		return func() {}
	}
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = " " + message
	sp.Start()
	return sp.Stop
}

// output prints v as JSON (through the jq filter when set)
func (s *session) output(v any) error {
	return renderJSON(os.Stdout, v, s.jq)
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", prompt)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func exitOnError(err error) {
	if err == nil {
		return
	}
	printError(err)
	os.Exit(1)
}

func printError(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "\nError: %v\n\n", err)
}

func printSuccess(message string) {
	color.Green("\n%s\n", message)
}
