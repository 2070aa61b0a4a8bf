package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/domino14/bearoff/board"
	"github.com/domino14/bearoff/cache"
	"github.com/domino14/bearoff/config"
	"github.com/domino14/bearoff/dice"
	"github.com/domino14/bearoff/enumerate"
	"github.com/domino14/bearoff/montecarlo"
	"github.com/domino14/bearoff/movegen"
	"github.com/domino14/bearoff/store"
)

func (sc *ShellController) setBoard(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("board <c1,c2,c3,c4,c5,c6>")
	}
	b, err := board.Parse(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	sc.position = b
	return Msg(b.ToDisplayText()), nil
}

// boardOption returns the -board option if given, else the current position.
func (sc *ShellController) boardOption(cmd *shellcmd) (board.Board, error) {
	if s, ok := cmd.options["board"]; ok {
		return board.Parse(s)
	}
	return sc.position, nil
}

// rollArgs reads the dice. Two dice are a roll, so a pair plays four times.
func rollArgs(args []string) ([]int, error) {
	ds, err := dice.Parse(args)
	if err != nil {
		return nil, err
	}
	if len(ds) == 2 {
		ds = slices.Clone(dice.FromRoll(ds[0], ds[1]).Dice)
	}
	return ds, nil
}

func (sc *ShellController) diceArgs(cmd *shellcmd) (board.Board, []int, error) {
	b, err := sc.boardOption(cmd)
	if err != nil {
		return board.Board{}, nil, err
	}
	ds, err := rollArgs(cmd.args)
	if err != nil {
		return board.Board{}, nil, err
	}
	return b, ds, nil
}

func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	b, ds, err := sc.diceArgs(cmd)
	if err != nil {
		return nil, err
	}
	ms, err := movegen.Generate(b, ds)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d positions from %v with %v:\n", len(ms), b, ds)
	for _, m := range ms {
		v := sc.solver.Expectation(m)
		fmt.Fprintf(&sb, "  %v  %s (%s)\n", m, v, v.FloatString(4))
	}
	return Msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) expect(cmd *shellcmd) (*Response, error) {
	b := sc.position
	if len(cmd.args) > 0 {
		var err error
		b, err = board.Parse(strings.Join(cmd.args, " "))
		if err != nil {
			return nil, err
		}
	}
	v := sc.solver.Expectation(b)
	return Msg(fmt.Sprintf("%v: %s (%s) rolls", b, v, v.FloatString(6))), nil
}

func (sc *ShellController) best(cmd *shellcmd) (*Response, error) {
	b, ds, err := sc.diceArgs(cmd)
	if err != nil {
		return nil, err
	}
	nb, v, err := sc.solver.Best(b, ds)
	if err != nil {
		return nil, err
	}
	return Msg(fmt.Sprintf("best: %v -> %v, %s (%s) rolls to go", b, nb, v, v.FloatString(6))), nil
}

// play plays the best move for the roll on the current position.
func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.position.IsEmpty() {
		return nil, errors.New("no checkers left; set a board first")
	}
	ds, err := rollArgs(cmd.args)
	if err != nil {
		return nil, err
	}
	nb, _, err := sc.solver.Best(sc.position, ds)
	if err != nil {
		return nil, err
	}
	sc.position = nb
	return Msg(nb.ToDisplayText()), nil
}

func intOption(cmd *shellcmd, name string, def int) (int, error) {
	s, ok := cmd.options[name]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("-%s: %w", name, err)
	}
	return n, nil
}

func floatOption(cmd *shellcmd, name string, def float64) (float64, error) {
	s, ok := cmd.options[name]
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("-%s: %w", name, err)
	}
	return f, nil
}

func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	n, err := intOption(cmd, "checkers", sc.config.GetInt(config.ConfigMaxCheckers))
	if err != nil {
		return nil, err
	}
	boards := enumerate.Boards(n)
	if err := sc.solver.SolveAll(context.Background(), boards); err != nil {
		return nil, err
	}
	return Msg(fmt.Sprintf("solved %d positions with up to %d checkers", len(boards), n)), nil
}

func (sc *ShellController) sim(cmd *shellcmd) (*Response, error) {
	b, err := sc.boardOption(cmd)
	if err != nil {
		return nil, err
	}
	iters, err := intOption(cmd, "iterations", sc.config.GetInt(config.ConfigSimIterations))
	if err != nil {
		return nil, err
	}
	threads, err := intOption(cmd, "threads", sc.config.GetInt(config.ConfigThreads))
	if err != nil {
		return nil, err
	}
	conf, err := floatOption(cmd, "confidence", sc.config.GetFloat64(config.ConfigSimConfidence))
	if err != nil {
		return nil, err
	}
	tol, err := floatOption(cmd, "tolerance", sc.config.GetFloat64(config.ConfigSimTolerance))
	if err != nil {
		return nil, err
	}
	name := sc.config.GetString(config.ConfigSimPolicy)
	if p, ok := cmd.options["policy"]; ok {
		name = p
	}
	policy, err := montecarlo.PolicyByName(name, sc.solver)
	if err != nil {
		return nil, err
	}
	sim := montecarlo.NewSimulator(policy)
	sim.SetIterations(iters)
	sim.SetThreads(threads)
	sim.SetConfidence(conf)
	sim.SetTolerance(tol)
	res, err := sim.Run(context.Background(), b)
	if err != nil {
		return nil, err
	}
	msg := res.String()
	if !res.Consistent() {
		msg += "\nwarning: exact value is outside the interval"
	}
	return Msg(msg), nil
}

func formatOption(cmd *shellcmd, def string) string {
	if f, ok := cmd.options["format"]; ok {
		return f
	}
	return def
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("load <path> [-format text|sqlite]")
	}
	entries, err := store.LoadCached(sc.config, formatOption(cmd, config.FormatText), cmd.args[0])
	if err != nil {
		return nil, err
	}
	n := store.Preload(sc.table, entries)
	return Msg(fmt.Sprintf("loaded %d positions (%d new)", len(entries), n)), nil
}

func (sc *ShellController) save(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("save <path> [-format text|report|sqlite]")
	}
	path := cmd.args[0]
	entries := store.Entries(sc.table)
	switch f := formatOption(cmd, config.FormatText); f {
	case config.FormatSQLite:
		s, err := store.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		if err := s.Save(context.Background(), entries); err != nil {
			return nil, err
		}
	case config.FormatText, config.FormatReport:
		var buf bytes.Buffer
		write := store.WriteText
		if f == config.FormatReport {
			write = store.WriteReport
		}
		if err := write(&buf, entries); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
	cache.Forget(store.CacheKey(formatOption(cmd, config.FormatText), path))
	return Msg(fmt.Sprintf("saved %d positions to %s", len(entries), path)), nil
}

// lookup reads a position straight from a sqlite table without loading it.
func (sc *ShellController) lookup(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("lookup <db> [B]")
	}
	b := sc.position
	if len(cmd.args) > 1 {
		var err error
		b, err = board.Parse(strings.Join(cmd.args[1:], " "))
		if err != nil {
			return nil, err
		}
	}
	s, err := store.OpenSQLite(cmd.args[0])
	if err != nil {
		return nil, err
	}
	defer s.Close()
	ctx := context.Background()
	n, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	v, err := s.Lookup(ctx, b)
	if errors.Is(err, store.ErrNotFound) {
		return Msg(fmt.Sprintf("%v: not among %d positions", b, n)), nil
	}
	if err != nil {
		return nil, err
	}
	return Msg(fmt.Sprintf("%v: %s (%s) rolls, %d positions stored", b, v, v.FloatString(6), n)), nil
}

func (sc *ShellController) stats() (*Response, error) {
	st := sc.table.Stats()
	sc.table.LogStats()
	return Msg(fmt.Sprintf("entries: %d  lookups: %d  hits: %d  evaluated: %d",
		st.Entries, st.Lookups, st.Hits, sc.solver.Nodes())), nil
}
