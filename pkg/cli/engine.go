package cli

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed cli.def
var DefaultDSL string

// Mutable
type Engine struct {
	GlobalFlags []*Flag
	Commands    []*Command
	Topics      []*Topic
	Handlers    map[string]Handler
	Theme       *Theme
	Out         io.Writer
}

func NewEngine(dsl string) (*Engine, error) {
	e := &Engine{
		Handlers: make(map[string]Handler),
		Theme:    DefaultTheme(),
		Out:      os.Stdout,
	}
	if err := e.parseDSL(dsl); err != nil {
		return nil, err
	}
	e.Commands = append(e.Commands, &Command{
		Name: "help",
		Desc: "Show help information",
	})
	return e, nil
}

// MakeEngine parses the embedded command definition.
func MakeEngine() (*Engine, error) {
	return NewEngine(DefaultDSL)
}

// Register binds h to a command path such as "storage/list".
func (e *Engine) Register(cmdPath string, h Handler) {
	e.Handlers[cmdPath] = h
}

func (e *Engine) parseDSL(dsl string) error {
	p := newParser(dsl, e)
	return p.parse()
}

type ParseResult struct {
	Invocation *Invocation
	Help       bool
	HelpArgs   []string
	// Unknown is the word that did not match any command, if any.
	Unknown string
	Error   error
}

// unknownCommandError is returned by resolve when a word matches nothing.
// parent is the command the word was looked up under, nil at top level.
type unknownCommandError struct {
	parent *Command
	word   string
}

func (e *unknownCommandError) Error() string {
	if e.parent == nil {
		return "unknown command: " + e.word
	}
	return fmt.Sprintf("unknown command: %s %s", strings.ReplaceAll(getCmdPath(e.parent), "/", " "), e.word)
}

// incompleteCommandError is returned when a command with subcommands is
// given without one.
type incompleteCommandError struct {
	cmd *Command
}

func (e *incompleteCommandError) Error() string {
	return "missing subcommand for " + getCmdPath(e.cmd)
}

func (e *Engine) Run(ctx context.Context, args []string) (*ExecutionResult, error) {
	res := e.Parse(args)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.Help {
		if res.Unknown != "" {
			t := e.Theme
			fmt.Fprintf(e.Out, "%s %s\n", t.Paint(t.Notice, "Unknown command:"), res.Unknown)
		}
		e.PrintHelp(res.HelpArgs...)
		return &ExecutionResult{ExitCode: 0}, nil
	}
	return e.Execute(ctx, res.Invocation)
}

func (e *Engine) Parse(args []string) *ParseResult {
	res := &ParseResult{
		Invocation: &Invocation{
			Args:   make(map[string]string),
			Flags:  make(map[string]any),
			Global: make(map[string]any),
		},
	}
	var remaining []string
	// Parse global flags and help
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--help" || arg == "-h" {
			res.Help = true
			continue
		}
		found := false
		for _, gf := range e.GlobalFlags {
			name, value, hasValue := strings.Cut(arg, "=")
			if name != "--"+gf.Name && (gf.Short == "" || name != "-"+gf.Short) {
				continue
			}
			switch {
			case gf.Type == "bool" && !hasValue:
				res.Invocation.Global[gf.Name] = true
				found = true
			case gf.Type == "string" && hasValue:
				res.Invocation.Global[gf.Name] = value
				found = true
			case gf.Type == "string" && i+1 < len(args):
				res.Invocation.Global[gf.Name] = args[i+1]
				i++
				found = true
			case gf.Type == "string":
				res.Error = fmt.Errorf("flag --%s needs a value", gf.Name)
				return res
			}
		}
		if !found {
			remaining = append(remaining, arg)
		}
	}

	if len(remaining) > 0 && remaining[0] == "help" {
		res.Help = true
		remaining = remaining[1:]
	}

	if res.Help {
		res.HelpArgs = remaining
		return res
	}

	if len(remaining) == 0 {
		res.Help = true
		return res
	}

	inv, err := e.resolve(res.Invocation, e.Commands, nil, remaining)
	var unknown *unknownCommandError
	var incomplete *incompleteCommandError
	switch {
	case errors.As(err, &unknown):
		res.Help = true
		res.Unknown = strings.Join(remaining, " ")
		if unknown.parent != nil {
			res.HelpArgs = strings.Split(getCmdPath(unknown.parent), "/")
		}
	case errors.As(err, &incomplete):
		res.Help = true
		res.HelpArgs = strings.Split(getCmdPath(incomplete.cmd), "/")
	case err != nil:
		res.Error = err
	default:
		res.Invocation = inv
	}
	return res
}

func (e *Engine) Execute(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	path := getCmdPath(inv.Command)
	if h, ok := e.Handlers[path]; ok {
		return h.Execute(ctx, inv)
	}
	return nil, fmt.Errorf("no handler registered for command: %s", path)
}

func (e *Engine) resolve(inv *Invocation, cmds []*Command, parent *Command, args []string) (*Invocation, error) {
	word := args[0]
	// Command match
	var matches []*Command
	for _, c := range cmds {
		if c.Name == word {
			matches = []*Command{c}
			break
		}
		if strings.HasPrefix(c.Name, word) && c.Name != "help" {
			matches = append(matches, c)
		}
	}
	if len(matches) > 1 {
		var names []string
		for _, m := range matches {
			names = append(names, m.Name)
		}
		return nil, fmt.Errorf("ambiguous command: %s (candidates: %s)", word, strings.Join(names, ", "))
	}
	if len(matches) == 1 {
		cmd := matches[0]
		currArgs := args[1:]
		if len(cmd.Subs) > 0 {
			if len(currArgs) == 0 {
				return nil, &incompleteCommandError{cmd: cmd}
			}
			return e.resolve(inv, cmd.Subs, cmd, currArgs)
		}
		inv.Command = cmd
		if err := e.parseParams(inv, cmd, currArgs); err != nil {
			return nil, err
		}
		return inv, nil
	}
	// Omitted parent support
	if parent == nil {
		var subMatches []*Command
		for _, c := range cmds {
			for _, s := range c.Subs {
				if s.Name == word || strings.HasPrefix(s.Name, word) {
					subMatches = append(subMatches, s)
				}
			}
		}
		if len(subMatches) > 1 {
			var names []string
			for _, m := range subMatches {
				names = append(names, strings.ReplaceAll(getCmdPath(m), "/", " "))
			}
			return nil, fmt.Errorf("ambiguous command: %s (candidates: %s)", word, strings.Join(names, ", "))
		}
		if len(subMatches) == 1 {
			s := subMatches[0]
			inv.Command = s
			if err := e.parseParams(inv, s, args[1:]); err != nil {
				return nil, err
			}
			return inv, nil
		}
	}
	return nil, &unknownCommandError{parent: parent, word: word}
}

func (e *Engine) parseParams(inv *Invocation, cmd *Command, args []string) error {
	argIdx := 0
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			for _, rest := range args[i+1:] {
				if argIdx >= len(cmd.Args) {
					return fmt.Errorf("unexpected argument: %s", rest)
				}
				inv.Args[cmd.Args[argIdx].Name] = rest
				argIdx++
			}
			break
		}
		if strings.HasPrefix(arg, "-") && len(arg) > 1 {
			name, value, hasValue := strings.Cut(arg, "=")
			var flag *Flag
			for _, f := range cmd.Flags {
				if name == "--"+f.Name || (f.Short != "" && name == "-"+f.Short) {
					flag = f
					break
				}
			}
			if flag == nil {
				return fmt.Errorf("unknown flag %s for %s", name, strings.ReplaceAll(getCmdPath(cmd), "/", " "))
			}
			switch {
			case flag.Type == "bool":
				inv.Flags[flag.Name] = true
			case hasValue:
				inv.Flags[flag.Name] = value
			case i+1 < len(args):
				inv.Flags[flag.Name] = args[i+1]
				i++
			default:
				return fmt.Errorf("flag --%s needs a value", flag.Name)
			}
			continue
		}
		if argIdx >= len(cmd.Args) {
			return fmt.Errorf("unexpected argument: %s", arg)
		}
		inv.Args[cmd.Args[argIdx].Name] = arg
		argIdx++
	}

	// Check for missing required arguments
	if argIdx < len(cmd.Args) {
		return fmt.Errorf("argument %s is missing", cmd.Args[argIdx].Name)
	}
	return nil
}

func getCmdPath(c *Command) string {
	if c.Parent == nil {
		return c.Name
	}
	return getCmdPath(c.Parent) + "/" + c.Name
}
