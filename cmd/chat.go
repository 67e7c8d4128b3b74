package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

const (
	chatBanner  = "SportsBot is ready! (type 'exit' or 'quit' to stop)"
	chatGoodbye = "Bot: Goodbye!"
)

var (
	chatUserID string
	chatReset  bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the bot in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initChat(ctx, "chat")
		if err != nil {
			return err
		}
		defer env.Close()

		if chatReset {
			if err := env.Store.ClearHistory(ctx, chatUserID); err != nil {
				return eris.Wrap(err, "clear history")
			}
		}

		return chatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, text string) string {
			history := env.Chat.Recent(ctx, chatUserID, cfg.Anthropic.HistoryTurns)
			reply, _ := env.Chat.Turn(ctx, chatUserID, text, history)
			return reply
		})
	},
}

// chatLoop reads lines from in until EOF, exit, or quit, writing each reply
// to out. Blank lines are ignored.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, reply func(context.Context, string) string) error {
	fmt.Fprintln(out, chatBanner)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		if ctx.Err() != nil {
			break
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		switch strings.ToLower(text) {
		case "exit", "quit":
			fmt.Fprintln(out, chatGoodbye)
			return nil
		}

		fmt.Fprintf(out, "Bot: %s\n", reply(ctx, text))
	}

	if err := scanner.Err(); err != nil {
		return eris.Wrap(err, "chat: read input")
	}
	return nil
}

func init() {
	chatCmd.Flags().StringVar(&chatUserID, "user", "cli", "user id the transcript is recorded under")
	chatCmd.Flags().BoolVar(&chatReset, "reset", false, "clear the user's transcript before starting")
	rootCmd.AddCommand(chatCmd)
}
