package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// ShellCompleter completes command names, options and option values.
type ShellCompleter struct{}

func NewShellCompleter() *ShellCompleter {
	return &ShellCompleter{}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string // e.g. "-iterations"
	Args    []string // values for positional arguments
}

var commandMetadata = map[string]CommandMetadata{
	"sim": {
		Options: []string{"-board", "-iterations", "-threads", "-confidence", "-tolerance", "-policy"},
	},
	"moves": {Options: []string{"-board"}},
	"best":  {Options: []string{"-board"}},
	"solve": {Options: []string{"-checkers"}},
	"load":  {Options: []string{"-format"}},
	"save":  {Options: []string{"-format"}},
	"help":  {Args: []string{"sim", "solve"}},
}

var commandNames = []string{
	"board", "show", "moves", "expect", "best", "play", "solve", "sim",
	"load", "save", "lookup", "stats", "reset", "help", "exit",
}

var optionValues = map[string][]string{
	"policy": {"optimal", "greedy"},
	"format": {"text", "report", "sqlite"},
}

// Do implements readline.AutoCompleter.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// unterminated quote
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}
		if strings.HasPrefix(lastCompleteField, "-") {
			completions = optionValues[strings.TrimPrefix(lastCompleteField, "-")]
		}

		if completions == nil {
			if metadata, ok := commandMetadata[cmdName]; ok {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			// only the part still to be typed
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
