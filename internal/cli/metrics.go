package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewMetricsCmd создаёт группу команд для чтения метрик.
func NewMetricsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Read workspace execution metrics",
	}

	cmd.AddCommand(newMetricsShowCmd(clientFn, outputFn))

	return cmd
}

func newMetricsShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show WORKSPACE_ID",
		Short: "Show execution history and stats for a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			result, err := client.WorkspaceMetrics(args[0], limit)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf(
				"Workspace %s: %d executions, %.2f%% success, avg %dms, next at %s",
				result.WorkspaceID, result.Stats.Total, result.Stats.SuccessRate,
				result.Stats.AvgDuration, orDash(result.NextExecution),
			))

			headers := []string{"TIMESTAMP", "JOB_ID", "STATUS", "CODE", "DURATION_MS", "RETRY", "ERROR"}
			rows := make([][]string, len(result.Executions))
			for i, ex := range result.Executions {
				code := ""
				if ex.StatusCode != nil {
					code = strconv.Itoa(*ex.StatusCode)
				}
				errText := ""
				if ex.Error != nil {
					errText = *ex.Error
				}
				rows[i] = []string{
					ex.Timestamp, ex.JobID, ex.Status, code,
					strconv.FormatInt(ex.DurationMs, 10),
					strconv.Itoa(ex.RetryCount), errText,
				}
			}

			out.Print(headers, rows, result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Max executions to return (default 100)")

	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
