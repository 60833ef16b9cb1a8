package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/noorhq/noor/internal/assistant"
	"github.com/noorhq/noor/internal/synth"
)

var (
	askLanguage     string
	askConversation string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askLanguage, "lang", "en", "answer language (en, ar)")
	askCmd.Flags().StringVar(&askConversation, "conversation", "", "conversation id to continue")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger()

	convID := uuid.Nil
	if askConversation != "" {
		var err error
		convID, err = uuid.Parse(askConversation)
		if err != nil {
			return fmt.Errorf("parsing conversation id: %w", err)
		}
	}

	a, err := setup(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.assistant.Answer(ctx, assistant.Request{
		Question:       strings.Join(args, " "),
		Language:       askLanguage,
		ConversationID: convID,
	})
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		fmt.Print(synth.FormatSources(result.Sources))
	}
	if result.Saved {
		fmt.Println()
		fmt.Printf("Conversation: %s\n", result.ConversationID)
	}

	return nil
}
