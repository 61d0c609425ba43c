package cli

import (
	"context"

	"progdemo/pkg/common"
)

type ExecutionResult = common.ExecutionResult

type Flag struct {
	Name  string
	Short string
	Type  string // "bool", "string"
	Desc  string
}

type Arg struct {
	Name string
	Type string
	Desc string
}

type Command struct {
	Name     string
	Desc     string
	Args     []*Arg
	Flags    []*Flag
	Subs     []*Command
	Parent   *Command
	Examples []string
}

type Topic struct {
	Name string
	Desc string
	Text string
}

type Invocation struct {
	Command *Command
	Args    map[string]string
	Flags   map[string]any
	Global  map[string]any
}

func (inv *Invocation) Arg(name string) string {
	return inv.Args[name]
}

func (inv *Invocation) Bool(name string) bool {
	b, _ := inv.Flags[name].(bool)
	return b
}

func (inv *Invocation) String(name string) string {
	s, _ := inv.Flags[name].(string)
	return s
}

func (inv *Invocation) GlobalBool(name string) bool {
	b, _ := inv.Global[name].(bool)
	return b
}

func (inv *Invocation) GlobalString(name string) string {
	s, _ := inv.Global[name].(string)
	return s
}

type Handler interface {
	Execute(ctx context.Context, inv *Invocation) (*ExecutionResult, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, inv *Invocation) (*ExecutionResult, error)

func (f HandlerFunc) Execute(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	return f(ctx, inv)
}
