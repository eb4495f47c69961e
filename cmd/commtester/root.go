// Command commtester drives or receives CommServer traffic over a single
// connection: "client" runs the Crazy Client send/recv loop, "orch" runs
// the Orchestrator Peer's subscribe-then-echo loop.
package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"commtester/internal/config"
	"commtester/internal/pkg/logger"
	"commtester/internal/pkg/version"
)

var (
	caPath     string
	certPath   string
	keyPath    string
	legacy     bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "commtester",
	Short: "CommServer protocol conformance tester",
	Long: `commtester drives a single peer connection against a CommServer
message bus: "client" sends the synthetic Crazy Client sequence, "orch"
subscribes and echoes back everything it receives.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initCLILogger()
	},
}

func init() {
	rootCmd.Version = version.String()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func Execute() int {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "commtester: unexpected panic: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2 // every error, argument/config and connection/run failures alike; clean termination and CTRL-C never reach here
	}
	return 0
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&caPath, "ca", "ca.crt", "CA certificate path")
	flags.StringVar(&certPath, "cert", "", "client/orch certificate path (default derived from identity)")
	flags.StringVar(&keyPath, "key", "", "client/orch key path (default derived from identity)")
	flags.BoolVar(&legacy, "legacy", false, "use plain TCP instead of TLS; client also switches to the v2 dialect (orch always speaks v3)")
	flags.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newClientCmd())
	rootCmd.AddCommand(newOrchCmd())
}

func initCLILogger() {
	if logLevel == "debug" {
		pterm.EnableDebugMessages()
	} else {
		pterm.DisableDebugMessages()
	}

	if _, err := logger.InitLogger(&config.LogConfig{
		Level:  logLevel,
		Format: "text",
		Output: "stdout",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "commtester: failed to init logger: %v\n", err)
	}
}

// cfgErr marks an error as an argument/configuration problem. Every error
// that reaches rootCmd.Execute() maps to exit code 2 per the documented CLI
// contract; subcommands build one with argError for a uniform message.
type cfgErr struct{ err error }

func (e *cfgErr) Error() string { return e.err.Error() }
func (e *cfgErr) Unwrap() error { return e.err }

func argError(format string, args ...interface{}) error {
	return &cfgErr{err: fmt.Errorf(format, args...)}
}

func main() {
	os.Exit(Execute())
}
