package cli

import (
	"fmt"
	"slices"
)

// DefinitionError reports a malformed command definition.
type DefinitionError struct {
	Line int
	Msg  string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("cli.def line %d: %s", e.Line, e.Msg)
}

// Mutable
type parser struct {
	lex    *lexer
	tok    token
	engine *Engine

	// scope for flag/arg/example and for text
	cmd   *Command
	topic *Topic
}

var statements map[string]func(*parser) error

func init() {
	statements = map[string]func(*parser) error{
		"global":  (*parser).global,
		"cmd":     (*parser).command,
		"flag":    (*parser).flag,
		"arg":     (*parser).arg,
		"example": (*parser).example,
		"topic":   (*parser).topicDecl,
		"text":    (*parser).text,
	}
}

var (
	flagTypes = []string{"bool", "string"}
	argTypes  = []string{"string"}
)

func newParser(dsl string, engine *Engine) *parser {
	p := &parser{lex: newLexer(dsl), engine: engine}
	p.next()
	return p
}

func (p *parser) next() {
	p.tok = p.lex.nextToken()
}

func (p *parser) errorf(format string, args ...any) error {
	return &DefinitionError{Line: p.tok.line, Msg: fmt.Sprintf(format, args...)}
}

// expect consumes a token of the given kind and returns its value.
func (p *parser) expect(kind tokenKind, what string) (string, error) {
	if p.tok.kind == tokError {
		return "", p.errorf("%s", p.tok.value)
	}
	if p.tok.kind != kind {
		return "", p.errorf("expected %s", what)
	}
	v := p.tok.value
	p.next()
	return v, nil
}

func (p *parser) parse() error {
	for p.tok.kind != tokEOF {
		keyword, err := p.expect(tokIdentifier, "keyword")
		if err != nil {
			return err
		}
		stmt, ok := statements[keyword]
		if !ok {
			return p.errorf("unknown keyword %q", keyword)
		}
		if err := stmt(p); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) global() error {
	p.cmd, p.topic = nil, nil
	return nil
}

// command declares "cmd a b ... [desc]", creating missing parents.
func (p *parser) command() error {
	var path []string
	for p.tok.kind == tokIdentifier {
		path = append(path, p.tok.value)
		p.next()
	}
	if len(path) == 0 {
		return p.errorf("expected command name or path")
	}
	desc := ""
	if p.tok.kind == tokString {
		desc = p.tok.value
		p.next()
	}

	list := &p.engine.Commands
	var current *Command
	for _, name := range path {
		idx := slices.IndexFunc(*list, func(c *Command) bool { return c.Name == name })
		if idx < 0 {
			*list = append(*list, &Command{Name: name, Parent: current})
			idx = len(*list) - 1
		}
		current = (*list)[idx]
		list = &current.Subs
	}
	if desc != "" {
		current.Desc = desc
	}
	p.cmd, p.topic = current, nil
	return nil
}

// flag declares "flag name type desc [short]" on the current command, or
// globally when no command is open.
func (p *parser) flag() error {
	name, err := p.expect(tokIdentifier, "flag name")
	if err != nil {
		return err
	}
	typ, err := p.expect(tokIdentifier, "flag type")
	if err != nil {
		return err
	}
	if !slices.Contains(flagTypes, typ) {
		return p.errorf("unknown flag type %q", typ)
	}
	desc, err := p.expect(tokString, "flag description")
	if err != nil {
		return err
	}
	f := &Flag{Name: name, Type: typ, Desc: desc}
	// A one-letter identifier right after the description is the short
	// name; anything longer is the next keyword.
	if p.tok.kind == tokIdentifier && len(p.tok.value) == 1 {
		f.Short = p.tok.value
		p.next()
	}

	scope := &p.engine.GlobalFlags
	if p.cmd != nil {
		scope = &p.cmd.Flags
	}
	for _, other := range *scope {
		if other.Name == f.Name || (f.Short != "" && other.Short == f.Short) {
			return p.errorf("flag %q clashes with --%s", name, other.Name)
		}
	}
	*scope = append(*scope, f)
	return nil
}

func (p *parser) arg() error {
	if p.cmd == nil {
		return p.errorf("'arg' must follow a 'cmd'")
	}
	name, err := p.expect(tokIdentifier, "arg name")
	if err != nil {
		return err
	}
	typ, err := p.expect(tokIdentifier, "arg type")
	if err != nil {
		return err
	}
	if !slices.Contains(argTypes, typ) {
		return p.errorf("unknown arg type %q", typ)
	}
	desc, err := p.expect(tokString, "arg description")
	if err != nil {
		return err
	}
	if slices.ContainsFunc(p.cmd.Args, func(a *Arg) bool { return a.Name == name }) {
		return p.errorf("duplicate arg %q", name)
	}
	p.cmd.Args = append(p.cmd.Args, &Arg{Name: name, Type: typ, Desc: desc})
	return nil
}

func (p *parser) example() error {
	if p.cmd == nil {
		return p.errorf("'example' must follow a 'cmd'")
	}
	ex, err := p.expect(tokString, "example string")
	if err != nil {
		return err
	}
	p.cmd.Examples = append(p.cmd.Examples, ex)
	return nil
}

func (p *parser) topicDecl() error {
	name, err := p.expect(tokIdentifier, "topic name")
	if err != nil {
		return err
	}
	desc, err := p.expect(tokString, "topic description")
	if err != nil {
		return err
	}
	t := &Topic{Name: name, Desc: desc}
	p.engine.Topics = append(p.engine.Topics, t)
	p.cmd, p.topic = nil, t
	return nil
}

func (p *parser) text() error {
	if p.topic == nil {
		return p.errorf("'text' must follow a 'topic'")
	}
	text, err := p.expect(tokString, "text string")
	if err != nil {
		return err
	}
	p.topic.Text = text
	return nil
}
