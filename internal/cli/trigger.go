package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewTriggerCmd создаёт группу команд для управления триггерами.
func NewTriggerCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Manage workspace triggers",
	}

	cmd.AddCommand(
		newTriggerListCmd(clientFn, outputFn),
		newTriggerReplaceCmd(clientFn, outputFn),
		newTriggerRemoveCmd(clientFn, outputFn),
	)

	return cmd
}

func newTriggerListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list WORKSPACE_ID",
		Short: "List workspace triggers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			result, err := client.GetTriggers(args[0])
			if err != nil {
				return err
			}

			headers := []string{"JOB_ID", "JOB_NAME", "CRON", "METHOD", "URL"}
			rows := make([][]string, len(result.Jobs))
			for i, job := range result.Jobs {
				rows[i] = []string{job.JobID, job.JobName, job.Cron, job.Method, job.URL}
			}

			out.Print(headers, rows, result)
			return nil
		},
	}
}

func newTriggerReplaceCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "replace WORKSPACE_ID",
		Short: "Replace all workspace triggers from a JSON file",
		Long: `Replace all workspace triggers with the set from a JSON file.

The file contains a JSON array of triggers:

  [{"cron": "*/5 * * * *", "url": "https://example.com/hook", "method": "POST"}]

Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := readInput(file)
			if err != nil {
				return err
			}

			var triggers []TriggerRequest
			if err := json.Unmarshal(data, &triggers); err != nil {
				return fmt.Errorf("invalid triggers file: %w", err)
			}

			result, err := client.ReplaceTriggers(args[0], triggers)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Triggers replaced: removed %d, added %d", result.Removed, result.Added))

			headers := []string{"JOB_ID", "JOB_NAME", "CRON", "METHOD", "URL"}
			rows := make([][]string, len(result.Jobs))
			for i, job := range result.Jobs {
				rows[i] = []string{job.JobID, job.JobName, job.Cron, job.Method, job.URL}
			}

			out.Print(headers, rows, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to JSON file with triggers (required, '-' for stdin)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newTriggerRemoveCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "remove WORKSPACE_ID",
		Short: "Remove all workspace triggers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			result, err := client.RemoveTriggers(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Triggers removed: %d", result.Removed))
			if out.jsonMode {
				out.JSON(result)
			}
			return nil
		},
	}
}

// readInput читает файл или stdin при "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
