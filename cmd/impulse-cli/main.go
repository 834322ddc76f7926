// Impulse CLI — инструмент командной строки для управления триггерами
// и чтения метрик через HTTP API.
//
// Использование:
//
//	impulse [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	trigger  Управление триггерами workspace
//	metrics  Чтение метрик выполнений
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Impulse/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "impulse",
		Short:         "Impulse CLI — cron trigger dispatcher tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewTriggerCmd(clientFn, outputFn),
		cli.NewMetricsCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
