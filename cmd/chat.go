package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helmcode/sql-copilot/pkg/prompts"
)

var (
	chatProvider string
	chatModel    string
	chatVerbose  bool
)

func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive Q&A session with the SQL diagnosis assistant",
		Long: `Start an interactive session with the assistant. Earlier exchanges in the
session are carried into every request, so follow-up questions can refer to
previous answers. Type "exit" or "quit" to leave.`,
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatProvider, "provider", "", "LLM provider (gemini, claude, openai)")
	cmd.Flags().StringVar(&chatModel, "model", "", "Model name override")
	cmd.Flags().BoolVarP(&chatVerbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	logger := newLogger(chatVerbose)
	defer logger.Sync()

	diag, err := newDiagnostician(chatProvider, chatModel, logger)
	if err != nil {
		return err
	}

	printInfo("SQL diagnosis assistant. Ask about queries, indexes, or plans.")
	printInfo("Type 'exit' or 'quit' to leave.")
	fmt.Println()

	var pairs []prompts.ChatPair
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	prompt := color.New(color.FgCyan, color.Bold)

	for {
		prompt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			return nil
		}

		s := newSpinner("Thinking...")
		s.Start()
		answer := diag.ChatRespond(cmd.Context(), pairs, message)
		s.Stop()

		fmt.Println(answer)
		fmt.Println()
		pairs = append(pairs, prompts.ChatPair{User: message, Response: answer})
	}
}
