package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewChatCmd создаёт группу команд для chat-тредов.
func NewChatCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Manage chat threads",
	}

	cmd.AddCommand(
		newChatSendCmd(clientFn, outputFn),
		newChatHistoryCmd(clientFn, outputFn),
		newChatWatchCmd(clientFn, outputFn),
	)

	return cmd
}

func newChatSendCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var stream bool

	cmd := &cobra.Command{
		Use:   "send THREAD_ID MESSAGE",
		Short: "Send a message to a thread",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			threadID := args[0]
			if err := client.SendMessage(threadID, args[1]); err != nil {
				return err
			}

			if !stream {
				out.Success("Message queued")
				return nil
			}

			return streamReply(cmd, client, out, threadID)
		},
	}

	cmd.Flags().BoolVar(&stream, "stream", false, "Print the assistant reply token by token")

	return cmd
}

func newChatHistoryCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "history THREAD_ID",
		Short: "Show thread history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			history, err := client.GetHistory(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ROLE", "CONTENT", "CREATED"}
			rows := make([][]string, len(history))
			for i, m := range history {
				rows[i] = []string{m.Role, m.Content, m.CreatedAt}
			}

			out.Print(headers, rows, history)
			return nil
		},
	}
}

func newChatWatchCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "watch THREAD_ID",
		Short: "Stream live events of a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamReply(cmd, clientFn(), outputFn(), args[0])
		},
	}
}

// streamReply печатает token-события треда до события completed.
func streamReply(cmd *cobra.Command, client *Client, out *Output, threadID string) error {
	err := client.Watch(cmd.Context(), threadID, func(event Event) error {
		switch event.Event {
		case "token":
			fmt.Print(event.Content)
		case "completed":
			fmt.Println()
			return errWatchDone
		case "failed":
			fmt.Println()
			out.Error(event.Error)
			return errWatchDone
		}
		return nil
	})
	if errors.Is(err, errWatchDone) {
		return nil
	}
	return err
}
