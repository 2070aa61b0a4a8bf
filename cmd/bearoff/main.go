package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/domino14/bearoff/board"
	"github.com/domino14/bearoff/config"
	"github.com/domino14/bearoff/enumerate"
	"github.com/domino14/bearoff/memo"
	"github.com/domino14/bearoff/montecarlo"
	"github.com/domino14/bearoff/ratio"
	"github.com/domino14/bearoff/shell"
	"github.com/domino14/bearoff/solver"
	"github.com/domino14/bearoff/store"
)

var (
	GitVersion string
)

func setupLogging(cfg *config.Config) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
}

func newSolver(cfg *config.Config) *solver.Exact {
	table := memo.New[ratio.Ratio](cfg.GetInt(config.ConfigMemoShards))
	return solver.NewExact(
		solver.WithTable[ratio.Key, ratio.Ratio](table),
		solver.WithThreads[ratio.Key, ratio.Ratio](cfg.GetInt(config.ConfigThreads)),
		solver.WithVerify[ratio.Key, ratio.Ratio](cfg.GetBool(config.ConfigVerify)),
	)
}

func writeTable(ctx context.Context, cfg *config.Config, entries []store.Entry) error {
	format := cfg.GetString(config.ConfigFormat)
	if format == config.FormatSQLite {
		s, err := store.OpenSQLite(cfg.GetString(config.ConfigDBPath))
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Save(ctx, entries); err != nil {
			return err
		}
		log.Info().Str("path", cfg.GetString(config.ConfigDBPath)).
			Int("entries", len(entries)).Msg("table-saved")
		return nil
	}

	w := os.Stdout
	if out := cfg.GetString(config.ConfigOutput); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if format == config.FormatReport {
		return store.WriteReport(w, entries)
	}
	return store.WriteText(w, entries)
}

func solveCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "solve",
		Short: "Solve every position with up to max-checkers checkers and write the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := cfg.GetInt(config.ConfigMaxCheckers)
			s := newSolver(cfg)
			log.Info().Int("max-checkers", n).Int("positions", enumerate.Count(n)).
				Int("threads", s.Threads()).Msg("solve-start")
			if err := s.SolveAll(cmd.Context(), enumerate.Boards(n)); err != nil {
				return err
			}
			s.Table().LogStats()
			return writeTable(cmd.Context(), cfg, store.Entries(s.Table()))
		},
	}
}

func parseBoard(args []string) (board.Board, error) {
	return board.Parse(strings.Join(args, " "))
}

func expectCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "expect <board>",
		Short:   "Print the exact expected number of rolls to bear off",
		Example: "  bearoff expect 0,0,0,0,0,3",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := parseBoard(args)
			if err != nil {
				return err
			}
			v := newSolver(cfg).Expectation(b)
			fmt.Fprintf(cmd.OutOrStdout(), "%v %s %s\n", b, v, v.FloatString(6))
			return nil
		},
	}
}

// shellCmd runs the interactive shell, or one shell command given as
// arguments.
func shellCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "shell [command...]",
		Short: "Explore positions interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			line := strings.TrimSpace(strings.Join(args, " "))
			if line != "" {
				sc := shell.NewShellController(cfg)
				sc.Execute(line, cmd.OutOrStdout())
				return nil
			}

			done := make(chan struct{})
			sig := make(chan os.Signal, 1)
			go func() {
				signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
				<-sig
				log.Info().Msg("got quit signal...")
				close(done)
			}()
			sc := shell.NewShellController(cfg)
			go sc.Loop(sig)
			<-done
			return nil
		},
	}
}

func simCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sim <board>",
		Short: "Play random games from a position and compare with the exact expectation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := parseBoard(args)
			if err != nil {
				return err
			}
			policy, err := montecarlo.PolicyByName(cfg.GetString(config.ConfigSimPolicy), newSolver(cfg))
			if err != nil {
				return err
			}
			sim := montecarlo.NewSimulator(policy)
			sim.SetIterations(cfg.GetInt(config.ConfigSimIterations))
			sim.SetThreads(cfg.GetInt(config.ConfigThreads))
			sim.SetConfidence(cfg.GetFloat64(config.ConfigSimConfidence))
			sim.SetTolerance(cfg.GetFloat64(config.ConfigSimTolerance))
			res, err := sim.Run(cmd.Context(), b)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.String())
			if !res.Consistent() {
				log.Warn().Msg("exact-value-outside-interval")
			}
			return nil
		},
	}
}

func main() {
	cfg := config.DefaultConfig()
	var stopProfile func()

	root := &cobra.Command{
		Use:           "bearoff",
		Short:         "Exact expected rolls for a one-sided backgammon bearoff",
		Version:       GitVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(cmd.Flags()); err != nil {
				return err
			}
			setupLogging(cfg)
			// relative data paths are relative to the executable
			ex, err := os.Executable()
			if err != nil {
				return err
			}
			cfg.AdjustRelativePaths(filepath.Dir(ex))
			log.Debug().Interface("config", cfg.SanitizedSettings()).Msg("loaded-config")
			if p := cfg.GetString(config.ConfigCPUProfile); p != "" {
				f, err := os.Create(p)
				if err != nil {
					return fmt.Errorf("could not create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(f); err != nil {
					f.Close()
					return fmt.Errorf("could not start CPU profile: %w", err)
				}
				stopProfile = func() {
					pprof.StopCPUProfile()
					f.Close()
				}
			}
			return nil
		},
	}
	cfg.AddFlags(root.PersistentFlags())
	root.AddCommand(solveCmd(cfg), expectCmd(cfg), movesCmd(cfg), bestCmd(cfg), simCmd(cfg), shellCmd(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if stopProfile != nil {
		stopProfile()
	}
	if err != nil {
		log.Error().Err(err).Msg("")
		os.Exit(1)
	}
}
