package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alantheprice/goalview/pkg/goals"
	"github.com/alantheprice/goalview/pkg/pp"
	"github.com/alantheprice/goalview/pkg/viewmsg"
)

var (
	goalsDiff        string
	goalsAllHyps     bool
	goalsHideShelved bool
)

var goalsCmd = &cobra.Command{
	Use:   "goals [file]",
	Short: "Show a goal answer as a goal panel",
	Long: `Reads a proof/goals answer, or a renderGoals view message, and prints the
goal panel: focused goals with the hypotheses of the first one, the goal
stack, shelved and given-up goals, obligations and messages.

With --diff the panel is compared line by line with the panel of an earlier
answer, which shows what a tactic changed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		answer, err := decodeGoalAnswer(data)
		if err != nil {
			return err
		}

		opts := cfg.GoalOptions()
		if goalsAllHyps {
			opts.AllHyps = true
		}
		if goalsHideShelved {
			opts.HideShelved = true
		}
		width := renderWidth()
		out, err := goals.Format(answer, width, opts)
		if err != nil {
			return err
		}
		if goalsDiff == "" {
			return writeOutput(cmd.OutOrStdout(), out, cfg.Render.Format)
		}

		prevData, err := os.ReadFile(goalsDiff)
		if err != nil {
			return fmt.Errorf("read %s: %w", goalsDiff, err)
		}
		prev, err := decodeGoalAnswer(prevData)
		if err != nil {
			return fmt.Errorf("%s: %w", goalsDiff, err)
		}
		prevOut, err := goals.Format(prev, width, opts)
		if err != nil {
			return err
		}

		changes := goals.Diff(prevOut.Text, out.Text)
		diffOut, err := pp.Render(goals.DiffLayout(changes), width)
		if err != nil {
			return err
		}
		if err := writeOutput(cmd.OutOrStdout(), diffOut, cfg.Render.Format); err != nil {
			return err
		}
		added, removed := goals.DiffStats(changes)
		fmt.Fprintf(cmd.ErrOrStderr(), "%d lines added, %d removed\n", added, removed)
		return nil
	},
}

func init() {
	goalsCmd.Flags().StringVar(&goalsDiff, "diff", "", "compare with the panel of this earlier answer")
	goalsCmd.Flags().BoolVar(&goalsAllHyps, "all-hyps", false, "show hypotheses of every focused goal")
	goalsCmd.Flags().BoolVar(&goalsHideShelved, "hide-shelved", false, "omit shelved and given-up goals")
	rootCmd.AddCommand(goalsCmd)
}

// decodeGoalAnswer accepts a bare answer or a renderGoals envelope.
func decodeGoalAnswer(data []byte) (goals.GoalAnswer[pp.Any], error) {
	method, _ := methodOf(data)
	if method == "" {
		return goals.DecodeAnswer[pp.Any](data)
	}
	msg, err := viewmsg.DecodeGoal(data)
	if err != nil {
		return goals.GoalAnswer[pp.Any]{}, err
	}
	rg, ok := msg.(viewmsg.RenderGoals)
	if !ok {
		return goals.GoalAnswer[pp.Any]{}, fmt.Errorf("expected a renderGoals message, got %s", msg.Method())
	}
	return rg.Params, nil
}
