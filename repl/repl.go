// Package repl implements an interactive prompt that parses and resolves
// Docsy expressions.
package repl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/docsy/ast"
	"github.com/dhamidi/docsy/format"
	"github.com/dhamidi/docsy/parser"
	"github.com/dhamidi/docsy/resolve"
)

var log = commonlog.GetLogger("docsy.repl")

const (
	promptMain = "docsy> "
	promptCont = "  ...> "
)

const help = `Enter an expression to resolve it, or a command:
  :doc          read documents instead of expressions
  :expr         read expressions (default)
  :ast          toggle printing the syntax tree
  :let NAME = EXPR
                define a global
  :globals      list globals
  :help         show this message
  :quit         leave
`

type Options struct {
	Globals     map[string]any
	Parser      []parser.Option
	HistoryFile string
}

type REPL struct {
	out      io.Writer
	opts     Options
	globals  map[string]any
	document bool
	showAST  bool
}

func New(out io.Writer, opts Options) *REPL {
	globals := make(map[string]any, len(opts.Globals))
	for k, v := range opts.Globals {
		globals[k] = v
	}
	return &REPL{out: out, opts: opts, globals: globals}
}

// ErrQuit is returned by Eval for the :quit command.
var ErrQuit = errors.New("quit")

// Run reads input until EOF or :quit.
func (r *REPL) Run() error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	r.loadHistory(ln)
	defer r.saveHistory(ln)

	fmt.Fprintln(r.out, "docsy repl, :help for commands")
	for {
		input, ok := r.read(ln)
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		out, err := r.Eval(input)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(r.out, err)
			continue
		}
		fmt.Fprint(r.out, out)
	}
}

// read collects lines until they parse or fail before the end of input.
func (r *REPL) read(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			log.Errorf("prompt: %s", err)
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !r.Incomplete(src) {
			return src, true
		}
	}
}

// Incomplete reports whether src fails to parse only because more input
// is needed.
func (r *REPL) Incomplete(src string) bool {
	_, err := r.parse(src)
	var perr *parser.ParsingError
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Position().Offset >= len(src)
}

// Eval runs one input and returns what should be printed.
func (r *REPL) Eval(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, ":") {
		return r.command(trimmed)
	}

	f, err := r.parse(input)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if r.showAST {
		var buf bytes.Buffer
		if err := format.NewLineEncoder(&buf).Encode(f); err != nil {
			return "", err
		}
		out.Write(buf.Bytes())
	}
	v, err := r.resolve(f)
	if err != nil {
		return out.String(), err
	}
	text, err := Format(v)
	if err != nil {
		return out.String(), err
	}
	out.WriteString(text)
	out.WriteByte('\n')
	return out.String(), nil
}

func (r *REPL) command(cmd string) (string, error) {
	name, arg, _ := strings.Cut(cmd, " ")
	switch name {
	case ":quit", ":q":
		return "", ErrQuit
	case ":help":
		return help, nil
	case ":doc":
		r.document = true
		return "reading documents\n", nil
	case ":expr":
		r.document = false
		return "reading expressions\n", nil
	case ":ast":
		r.showAST = !r.showAST
		return fmt.Sprintf("ast %s\n", onOff(r.showAST)), nil
	case ":globals":
		var b strings.Builder
		for _, k := range resolve.Keys(r.globals) {
			text, err := Format(r.globals[k])
			if err != nil {
				text = "?"
			}
			fmt.Fprintf(&b, "%s = %s\n", k, text)
		}
		return b.String(), nil
	case ":let":
		return r.let(arg)
	}
	return "", fmt.Errorf("unknown command %s, type :help", name)
}

func (r *REPL) let(arg string) (string, error) {
	name, src, ok := strings.Cut(arg, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", fmt.Errorf("usage: :let NAME = EXPR")
	}
	f, err := parser.ParseExpression(src, "<repl>", r.opts.Parser...)
	if err != nil {
		return "", err
	}
	v, err := r.resolve(f)
	if err != nil {
		return "", err
	}
	r.globals[name] = v
	return "", nil
}

func (r *REPL) parse(src string) (*ast.File, error) {
	if r.document {
		return parser.ParseDocument(src, "<repl>", r.opts.Parser...)
	}
	return parser.ParseExpression(src, "<repl>", r.opts.Parser...)
}

func (r *REPL) resolve(f *ast.File) (any, error) {
	return resolve.Resolve(f, r.resolveOptions())
}

func (r *REPL) resolveOptions() resolve.Options {
	return resolve.Options{Globals: r.globals, ElementConstructor: resolve.BuildElement}
}

// Format renders a resolved value as indented JSON.
func Format(v any) (string, error) {
	if v == resolve.Undefined {
		return "undefined", nil
	}
	data, err := json.MarshalIndent(resolve.JSON(v), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (r *REPL) loadHistory(ln *liner.State) {
	if r.opts.HistoryFile == "" {
		return
	}
	f, err := os.Open(r.opts.HistoryFile)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := ln.ReadHistory(f); err != nil {
		log.Warningf("read history: %s", err)
	}
}

func (r *REPL) saveHistory(ln *liner.State) {
	if r.opts.HistoryFile == "" {
		return
	}
	f, err := os.Create(r.opts.HistoryFile)
	if err != nil {
		log.Warningf("write history: %s", err)
		return
	}
	defer f.Close()
	if _, err := ln.WriteHistory(f); err != nil {
		log.Warningf("write history: %s", err)
	}
}
