package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hirepal/hirepal/internal/candidate"
	"github.com/hirepal/hirepal/internal/conversation"
	"github.com/hirepal/hirepal/internal/gateway"
	"github.com/hirepal/hirepal/internal/logger"
	"github.com/hirepal/hirepal/internal/review"
	"github.com/hirepal/hirepal/internal/util"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShortlist     = "Shortlist"
	PromptPass          = "Pass"
	PromptUndo          = "Undo last pass"
	PromptViewCV        = "View CV"
	PromptDownloadCV    = "Download CV"
	PromptOpenShortlist = "Open shortlist"
	PromptStopReviewing = "Stop reviewing"
	PromptClearAll      = "Clear all"
	PromptExportToFile  = "Export shortlist to file"
	PromptBack          = "back"

	commandExit      = "exit"
	commandNew       = "new"
	commandHistory   = "history"
	commandShortlist = "shortlist"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the hirepal chat",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run is the main command for the cli.
func run() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting hirepal", zap.String("version", version))

	gw := gateway.New(logger)
	if config.Backend.URL != "" {
		gw.APIURL = config.Backend.URL
	}
	if config.Backend.UserAgent != "" {
		gw.UserAgent = config.Backend.UserAgent
	}
	if config.Backend.Timeout > 0 {
		gw.HTTPClient.Timeout = config.Backend.Timeout
	}
	if config.Backend.MaxRetries > 0 {
		gw.MaxRetries = config.Backend.MaxRetries
	}
	if config.Backend.RetryDelay > 0 {
		gw.RetryDelay = config.Backend.RetryDelay
	}

	machine := review.New(config.Review.UndoWindow, nil)
	ctrl := conversation.New(gw, machine, logger)

	printBot(ctrl.LastMessage().Text)

	for {
		if err := chatTurn(ctx, ctrl); err != nil {
			if errors.Is(err, errExit) {
				logger.Info("exiting", zap.Int("shortlisted", ctrl.ShortlistCount()))
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func chatTurn(ctx context.Context, ctrl *conversation.Controller) error {
	input := promptui.Prompt{Label: "You"}

	utterance, err := input.Run()
	if err != nil {
		return errExit
	}

	switch strings.TrimSpace(strings.ToLower(utterance)) {
	case commandExit:
		return errExit
	case commandNew:
		ctrl.NewConversation()
		printBot(ctrl.LastMessage().Text)
		return nil
	case commandHistory:
		printHistory(ctrl)
		return nil
	case commandShortlist:
		return shortlistMenu(ctrl)
	}

	before := len(ctrl.Messages())
	ctrl.Submit(ctx, utterance)

	messages := ctrl.Messages()
	for _, msg := range messages[before:] {
		if msg.Author != conversation.AuthorBot {
			continue
		}
		printBot(msg.Text)
		if msg.HasCandidates() {
			if err := reviewLoop(ctrl, msg); err != nil {
				return err
			}
		}
	}

	return nil
}

// reviewLoop walks the message's candidates one at a time until the user
// stops or every candidate is decided.
func reviewLoop(ctrl *conversation.Controller, msg *conversation.Message) error {
	for {
		cand := ctrl.CurrentCandidate(msg.ID)
		if cand == nil {
			return nil
		}

		index, total := ctrl.CursorPosition(msg.ID)
		printCard(cand, index, total)

		items := []string{PromptShortlist, PromptPass}
		if ctrl.PendingUndo() {
			items = append(items, PromptUndo)
		}
		items = append(items, PromptViewCV, PromptDownloadCV, PromptOpenShortlist, PromptStopReviewing)

		prompt := promptui.Select{Label: "Your call", Items: items}

		_, action, err := prompt.Run()
		if err != nil {
			return errExit
		}

		switch action {
		case PromptShortlist:
			if ctrl.Decide(cand.ID, msg.ID, review.Right) == review.Exhausted {
				printBot(ctrl.LastMessage().Text)
			}
		case PromptPass:
			if ctrl.Decide(cand.ID, msg.ID, review.Left) == review.Exhausted {
				printBot(ctrl.LastMessage().Text)
			}
		case PromptUndo:
			ctrl.Undo()
		case PromptViewCV:
			fmt.Printf("CV: %s\n", cand.CVURL)
		case PromptDownloadCV:
			fmt.Printf("Save %s as %s\n", cand.CVURL, cand.DownloadFileName())
		case PromptOpenShortlist:
			if err := shortlistMenu(ctrl); err != nil {
				return err
			}
		case PromptStopReviewing:
			return nil
		}
	}
}

func shortlistMenu(ctrl *conversation.Controller) error {
	shortlist := ctrl.Shortlist()
	if shortlist.Len() == 0 {
		fmt.Println("No candidates shortlisted yet")
		return nil
	}

	fmt.Printf("Shortlisted candidates (%d):\n", shortlist.Len())
	for _, cand := range shortlist.Items {
		fmt.Printf("  %s — %s (%s)\n", cand.Name, cand.Role, cand.CVURL)
	}

	prompt := promptui.Select{
		Label: "Shortlist",
		Items: []string{PromptExportToFile, PromptClearAll, PromptBack},
	}

	_, action, err := prompt.Run()
	if err != nil {
		return errExit
	}

	switch action {
	case PromptExportToFile:
		filename, err := shortlist.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump shortlist to file: %w", err)
		}
		fmt.Printf("Shortlist written to %s\n", filename)
	case PromptClearAll:
		ctrl.ClearShortlist()
		fmt.Println("Shortlist cleared")
	}

	return nil
}

func printHistory(ctrl *conversation.Controller) {
	history := ctrl.History()
	if len(history) == 0 {
		fmt.Println("No past conversations")
		return
	}

	now := time.Now()
	for _, item := range history {
		fmt.Printf("  %s — %q, %d messages, last: %s\n",
			util.TimeAgo(item.CreatedAt, now), item.Title, item.MessageCount,
			util.TruncateForLog(item.LastMessage, 60),
		)
	}
}

func printBot(text string) {
	fmt.Printf("\nHirePal: %s\n\n", text)
}

func printCard(cand *candidate.Candidate, index, total int) {
	fmt.Printf("Candidate %d of %d\n", index+1, total)
	fmt.Printf("  [%s] %s\n", cand.Initials, cand.Name)
	fmt.Printf("  Role: %s\n", cand.Role)
	fmt.Printf("  Skills: %s\n", strings.Join(cand.Skills, ", "))
	fmt.Printf("  %s / %s\n", cand.Location, cand.Experience)
}
