// Package shell is an interactive prompt for exploring bearoff positions.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/bearoff/board"
	"github.com/domino14/bearoff/config"
	"github.com/domino14/bearoff/memo"
	"github.com/domino14/bearoff/ratio"
	"github.com/domino14/bearoff/solver"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("quit")
)

type Response struct {
	message string
}

func Msg(message string) *Response {
	return &Response{message: message}
}

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

// extractFields splits a line into a command, its positional arguments and
// its "-name value" options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	for i := 1; i < len(fields); i++ {
		// a negative number is an argument, not an option
		if strings.HasPrefix(fields[i], "-") && len(fields[i]) > 1 {
			if _, err := strconv.Atoi(fields[i]); err != nil {
				if i == len(fields)-1 {
					return nil, errWrongOptionSyntax
				}
				options[fields[i][1:]] = fields[i+1]
				i++
				continue
			}
		}
		args = append(args, fields[i])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

type ShellController struct {
	l      *readline.Instance
	config *config.Config
	table  *memo.Table[ratio.Ratio]
	solver *solver.Exact
	// position commands act on when no board is given
	position board.Board
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func newController(cfg *config.Config) *ShellController {
	sc := &ShellController{config: cfg}
	sc.resetSolver()
	return sc
}

// resetSolver builds a solver over a fresh table.
func (sc *ShellController) resetSolver() {
	sc.table = memo.New[ratio.Ratio](sc.config.GetInt(config.ConfigMemoShards))
	sc.solver = solver.NewExact(
		solver.WithTable[ratio.Key, ratio.Ratio](sc.table),
		solver.WithThreads[ratio.Key, ratio.Ratio](sc.config.GetInt(config.ConfigThreads)),
		solver.WithVerify[ratio.Key, ratio.Ratio](sc.config.GetBool(config.ConfigVerify)),
	)
}

func NewShellController(cfg *config.Config) *ShellController {
	sc := newController(cfg)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mbearoff>\033[0m ",
		HistoryFile:     "/tmp/bearoff-readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	return sc
}

func (sc *ShellController) handle(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye", "quit":
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "board", "set":
		return sc.setBoard(cmd)
	case "show", "s":
		return Msg(sc.position.ToDisplayText()), nil
	case "moves", "m":
		return sc.moves(cmd)
	case "expect", "e":
		return sc.expect(cmd)
	case "best", "b":
		return sc.best(cmd)
	case "play", "p":
		return sc.play(cmd)
	case "solve":
		return sc.solve(cmd)
	case "sim":
		return sc.sim(cmd)
	case "load":
		return sc.load(cmd)
	case "save":
		return sc.save(cmd)
	case "lookup":
		return sc.lookup(cmd)
	case "stats":
		return sc.stats()
	case "reset":
		sc.resetSolver()
		return Msg("table cleared"), nil
	default:
		msg := fmt.Sprintf("command %v not found", strconv.Quote(cmd.cmd))
		log.Info().Msg(msg)
		return nil, errors.New(msg)
	}
}

// Execute runs one shell line and writes its output to w. It reports
// whether the shell should keep going.
func (sc *ShellController) Execute(line string, w io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	resp, err := sc.handle(line)
	if errors.Is(err, errQuit) {
		return false
	}
	if err != nil {
		showMessage("Error: "+err.Error(), w)
	} else if resp != nil {
		showMessage(resp.message, w)
	}
	return true
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		if !sc.Execute(line, sc.l.Stderr()) {
			sig <- syscall.SIGINT
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
