package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"mashup/internal/workflow"
)

// progressRenderer prints pipeline checkpoints. On a terminal it rewrites a
// single line; otherwise each checkpoint gets its own line.
type progressRenderer struct {
	out     io.Writer
	inPlace bool
	width   int
	dirty   bool
}

func newProgressRenderer(out io.Writer) *progressRenderer {
	return &progressRenderer{out: out, inPlace: isTerminal(out)}
}

func (p *progressRenderer) observe(ev workflow.Event) {
	line := fmt.Sprintf("[%3d%%] %s", ev.Percent, ev.Message)
	if !p.inPlace {
		fmt.Fprintln(p.out, line)
		return
	}
	pad := ""
	if n := p.width - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprintf(p.out, "\r%s%s", line, pad)
	p.width = len(line)
	p.dirty = true
}

func (p *progressRenderer) finish() {
	if p.inPlace && p.dirty {
		fmt.Fprintln(p.out)
		p.dirty = false
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
