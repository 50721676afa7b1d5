package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// errWatchDone сигнализирует о терминальном событии потока.
var errWatchDone = errors.New("watch done")

// NewRunCmd создаёт группу команд для управления runs.
func NewRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Manage workflow runs",
	}

	cmd.AddCommand(
		newRunListCmd(clientFn, outputFn),
		newRunSubmitCmd(clientFn, outputFn),
		newRunShowCmd(clientFn, outputFn),
		newRunCancelCmd(clientFn, outputFn),
		newRunWatchCmd(clientFn, outputFn),
		newRunArtifactsCmd(clientFn, outputFn),
	)

	return cmd
}

func newRunListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			runs, err := client.ListRuns()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "STATUS", "CREATED"}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{r.ID, r.Name, r.Status, r.CreatedAt}
			}

			out.Print(headers, rows, runs)
			return nil
		},
	}
}

func newRunSubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var inputs []string
	var payloadJSON string
	var watch bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new run",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateRunRequest{Name: name}

			if payloadJSON != "" {
				if err := json.Unmarshal([]byte(payloadJSON), &req.Payload); err != nil {
					return fmt.Errorf("invalid --payload JSON: %w", err)
				}
			}
			for _, kv := range inputs {
				parts := strings.SplitN(kv, "=", 2)
				if len(parts) != 2 {
					return fmt.Errorf("invalid input format %q, expected KEY=VALUE", kv)
				}
				if req.Payload == nil {
					req.Payload = make(map[string]any)
				}
				req.Payload[parts[0]] = parts[1]
			}

			runID, err := client.SubmitRun(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run submitted: %s", runID))

			if watch {
				return watchTopic(cmd, client, out, runID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Run name")
	cmd.Flags().StringSliceVar(&inputs, "input", nil, "Payload values as KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&payloadJSON, "payload", "", "Payload as a JSON object")
	cmd.Flags().BoolVar(&watch, "watch", false, "Stream run events until it finishes")

	return cmd
}

func newRunShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.GetRun(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "NAME", "STATUS", "CREATED", "UPDATED"},
				[][]string{{run.ID, run.Name, run.Status, run.CreatedAt, run.UpdatedAt}},
				run,
			)
			return nil
		},
	}
}

func newRunCancelCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a running run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.CancelRun(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run cancelling: %s", args[0]))
			return nil
		},
	}
}

func newRunWatchCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "watch ID",
		Short: "Stream live events of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchTopic(cmd, clientFn(), outputFn(), args[0])
		},
	}
}

func newRunArtifactsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "artifacts RUN_ID",
		Short: "List artifacts produced by a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			ids, err := client.ListArtifacts(args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, len(ids))
			for i, id := range ids {
				rows[i] = []string{id}
			}

			out.Print([]string{"ARTIFACT_ID"}, rows, ids)
			return nil
		},
	}
}

// watchTopic печатает события топика до терминального события.
func watchTopic(cmd *cobra.Command, client *Client, out *Output, topic string) error {
	err := client.Watch(cmd.Context(), topic, func(event Event) error {
		switch event.Event {
		case "node_update":
			out.Line(fmt.Sprintf("[%s] node=%s", event.Event, event.Node))
		case "completed":
			out.JSON(event.Result)
			return errWatchDone
		case "failed":
			out.Error(event.Error)
			return errWatchDone
		case "cancelled":
			out.Success("Run cancelled")
			return errWatchDone
		default:
			out.Line(fmt.Sprintf("[%s]", event.Event))
		}
		return nil
	})
	if errors.Is(err, errWatchDone) {
		return nil
	}
	return err
}
