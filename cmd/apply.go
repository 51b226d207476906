package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jobo-ai/jobo-go/jobo"
)

var answerFields []string

// applyCmd groups the auto-apply session commands
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Fill job application forms with auto-apply sessions",
	Long: `Auto-apply opens an application form for a job's apply URL and reports the
fields it needs. Answer them with "apply answer" until the session is terminal,
then release it with "apply end".`,
}

var applyStartCmd = &cobra.Command{
	Use:     "start <apply-url>",
	Short:   "Start an auto-apply session",
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runApplyStart,
}

var applyAnswerCmd = &cobra.Command{
	Use:   "answer <session-id>",
	Short: "Answer form fields of a session",
	Long: `Answer form fields of a session. Repeat --field for every answer; giving the
same field id several times sends a multi-value answer.

Example:
  jobo apply answer 5f0c... --field first_name=Ada --field skills=go --field skills=sql`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runApplyAnswer,
}

var applyEndCmd = &cobra.Command{
	Use:     "end <session-id>",
	Short:   "End an auto-apply session",
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runApplyEnd,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.AddCommand(applyStartCmd, applyAnswerCmd, applyEndCmd)

	applyAnswerCmd.Flags().StringArrayVar(&answerFields, "field", nil, "answer as field_id=value (repeatable)")
}

func runApplyStart(cmd *cobra.Command, args []string) error {
	session, err := client.AutoApply.StartSession(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printSession(cmd.OutOrStdout(), session)
}

func runApplyAnswer(cmd *cobra.Command, args []string) error {
	sessionID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", args[0], err)
	}

	answers, err := parseAnswers(answerFields)
	if err != nil {
		return err
	}

	session, err := client.AutoApply.SetAnswers(cmd.Context(), sessionID, answers)
	if err != nil {
		return err
	}
	return printSession(cmd.OutOrStdout(), session)
}

func runApplyEnd(cmd *cobra.Command, args []string) error {
	sessionID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", args[0], err)
	}

	ended, err := client.AutoApply.EndSession(cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	if !ended {
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s not found (already ended?)\n", sessionID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Session %s ended\n", sessionID)
	return nil
}

// parseAnswers turns field_id=value pairs into answers, in first-seen order.
// A field given more than once becomes a multi-value answer.
func parseAnswers(pairs []string) ([]jobo.FieldAnswer, error) {
	values := make(map[string][]string, len(pairs))
	var order []string

	for _, pair := range pairs {
		id, value, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --field %q: expected field_id=value", pair)
		}
		if _, seen := values[id]; !seen {
			order = append(order, id)
		}
		values[id] = append(values[id], value)
	}

	answers := make([]jobo.FieldAnswer, 0, len(order))
	for _, id := range order {
		if v := values[id]; len(v) == 1 {
			answers = append(answers, jobo.TextAnswer(id, v[0]))
		} else {
			answers = append(answers, jobo.FieldAnswer{FieldID: id, Values: v})
		}
	}
	return answers, nil
}

func printSession(w io.Writer, s *jobo.AutoApplySession) error {
	if jsonOutput {
		return printJSON(w, s)
	}

	fmt.Fprintf(w, "Session:  %s\n", s.SessionID)
	fmt.Fprintf(w, "Provider: %s\n", s.ProviderDisplayName)
	fmt.Fprintf(w, "Status:   %s", s.Status)
	if s.IsTerminal {
		fmt.Fprint(w, " (terminal)")
	}
	fmt.Fprintln(w)
	if s.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", s.Error)
	}

	if len(s.ValidationErrors) > 0 {
		fmt.Fprintln(w, "\nValidation errors:")
		for _, v := range s.ValidationErrors {
			fmt.Fprintf(w, "  ✗ %s: %s\n", v.FieldID, v.Message)
		}
	}

	if len(s.Fields) > 0 {
		fmt.Fprintln(w, "\nFields:")
		for _, f := range s.Fields {
			marker := " "
			if f.Required {
				marker = "*"
			}
			fmt.Fprintf(w, "  %s %-24s %-10s %s\n", marker, f.ID, f.Type, f.Label)
			if len(f.Options) > 0 {
				opts := make([]string, len(f.Options))
				for i, o := range f.Options {
					opts[i] = o.Value
				}
				fmt.Fprintf(w, "      options: %s\n", strings.Join(opts, ", "))
			}
		}
	}
	return nil
}
