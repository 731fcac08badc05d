package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Prompt is printed before every line of input.
const Prompt = "You: "

// Console is the line-oriented user surface of a chat.
type Console interface {
	// ReadLine prompts for and returns one line. It returns io.EOF at end
	// of input, ErrInterrupted when the user presses Ctrl-C, and ctx.Err()
	// when ctx is done first.
	ReadLine(ctx context.Context) (string, error)
	// Reply prints a model response as "AI: <text>".
	Reply(text string)
	// Notice prints an informational line.
	Notice(text string)
	// Error prints a failure as "Error: <err>".
	Error(err error)
	Close() error
}

// ConsoleOptions configure NewConsole.
type ConsoleOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// HistoryFile keeps input history for interactive terminals.
	HistoryFile string
	NoColor     bool
}

// NewConsole returns a readline console when In is a terminal and a plain
// line reader otherwise.
func NewConsole(opts ConsoleOptions) (Console, error) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	if f, ok := opts.In.(*os.File); ok && isTerminal(f) {
		return newReadlineConsole(opts)
	}
	return newLineConsole(opts), nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printer writes replies, notices and errors. Writes are serialized since
// notices can arrive from other goroutines while the chat loop prints.
type printer struct {
	mu     *sync.Mutex
	out    io.Writer
	err    io.Writer
	ai     *color.Color
	notice *color.Color
	failed *color.Color
}

func newPrinter(out, errOut io.Writer, noColor bool) printer {
	p := printer{
		mu:     &sync.Mutex{},
		out:    out,
		err:    errOut,
		ai:     color.New(color.FgGreen, color.Bold),
		notice: color.New(color.FgHiBlack),
		failed: color.New(color.FgRed),
	}
	if noColor {
		p.ai.DisableColor()
		p.notice.DisableColor()
		p.failed.DisableColor()
	}
	return p
}

func (p printer) write(w io.Writer, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	io.WriteString(w, text)
}

func (p printer) Reply(text string) {
	p.write(p.out, p.ai.Sprint("AI:")+" "+text+"\n")
}

func (p printer) Notice(text string) {
	p.write(p.out, p.notice.Sprint(text)+"\n")
}

func (p printer) Error(err error) {
	p.write(p.err, p.failed.Sprintf("Error: %v", err)+"\n")
}

type lineResult struct {
	line string
	err  error
}

// lineConsole reads lines in a background goroutine so that a cancelled
// context unblocks ReadLine.
type lineConsole struct {
	printer
	in    io.Reader
	lines chan lineResult
	done  chan struct{}
	start sync.Once
	stop  sync.Once
}

func newLineConsole(opts ConsoleOptions) *lineConsole {
	return &lineConsole{
		printer: newPrinter(opts.Out, opts.Err, opts.NoColor),
		in:      opts.In,
		lines:   make(chan lineResult),
		done:    make(chan struct{}),
	}
}

func (c *lineConsole) read() {
	defer close(c.lines)

	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case c.lines <- lineResult{line: scanner.Text()}:
		case <-c.done:
			return
		}
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case c.lines <- lineResult{err: err}:
	case <-c.done:
	}
}

func (c *lineConsole) ReadLine(ctx context.Context) (string, error) {
	c.start.Do(func() { go c.read() })
	c.write(c.out, Prompt)

	select {
	case <-ctx.Done():
		c.write(c.out, "\n")
		return "", ctx.Err()
	case r, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	}
}

func (c *lineConsole) Close() error {
	c.stop.Do(func() { close(c.done) })
	return nil
}

// readlineConsole edits input with history and completion.
type readlineConsole struct {
	printer
	rl *readline.Instance
}

func newReadlineConsole(opts ConsoleOptions) (*readlineConsole, error) {
	items := make([]readline.PrefixCompleterInterface, 0, len(commands))
	for _, name := range CommandNames() {
		items = append(items, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            Prompt,
		HistoryFile:       opts.HistoryFile,
		AutoComplete:      readline.NewPrefixCompleter(items...),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}

	return &readlineConsole{
		printer: newPrinter(rl.Stdout(), rl.Stderr(), opts.NoColor),
		rl:      rl,
	}, nil
}

func (c *readlineConsole) ReadLine(ctx context.Context) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := c.rl.Readline()
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		c.rl.Close()
		return "", ctx.Err()
	case r := <-ch:
		if errors.Is(r.err, readline.ErrInterrupt) {
			return "", ErrInterrupted
		}
		return r.line, r.err
	}
}

func (c *readlineConsole) Close() error {
	return c.rl.Close()
}
