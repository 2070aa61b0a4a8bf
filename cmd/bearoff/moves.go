package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/domino14/bearoff/board"
	"github.com/domino14/bearoff/config"
	"github.com/domino14/bearoff/dice"
	"github.com/domino14/bearoff/movegen"
)

// boardAndDice reads "<board> <d1> [d2 ...]". A pair of dice is a roll and
// a double is played four times.
func boardAndDice(args []string) (board.Board, []int, error) {
	b, err := board.Parse(args[0])
	if err != nil {
		return board.Board{}, nil, err
	}
	ds, err := dice.Parse(args[1:])
	if err != nil {
		return board.Board{}, nil, err
	}
	if len(ds) == 2 {
		ds = slices.Clone(dice.FromRoll(ds[0], ds[1]).Dice)
	}
	return b, ds, nil
}

func movesCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "moves <board> <die>...",
		Short:   "List every position reachable by playing the dice",
		Example: "  bearoff moves 0,0,1,1,0,0 4 3",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, ds, err := boardAndDice(args)
			if err != nil {
				return err
			}
			ms, err := movegen.Generate(b, ds)
			if err != nil {
				return err
			}
			for _, m := range ms {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
}

func bestCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "best <board> <d1> <d2>",
		Short:   "Show the optimal play for a roll",
		Example: "  bearoff best 0,0,1,0,0,1 2 1",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, ds, err := boardAndDice(args)
			if err != nil {
				return err
			}
			nb, v, err := newSolver(cfg).Best(b, ds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v -> %v %s %s\n", b, nb, v, v.FloatString(6))
			return nil
		},
	}
}
