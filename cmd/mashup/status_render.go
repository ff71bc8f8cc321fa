package main

import (
	"fmt"
	"strings"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

// kindStyles holds the tag and ANSI color for each statusKind.
var kindStyles = [...]struct {
	tag   string
	color string
}{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

func (k statusKind) style() (tag, color string) {
	if k < 0 || int(k) >= len(kindStyles) {
		k = statusInfo
	}
	s := kindStyles[k]
	return s.tag, s.color
}

func paint(text, color string, colorize bool) string {
	if !colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

type statusLine struct {
	label   string
	kind    statusKind
	message string
}

func (l statusLine) render(colorize bool) string {
	tag, color := l.kind.style()
	var b strings.Builder
	fmt.Fprintf(&b, "  %-20s [%s]", l.label+":", tag)
	if l.message != "" {
		b.WriteByte(' ')
		b.WriteString(l.message)
	}
	return paint(b.String(), color, colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	_, color := statusInfo.style()
	return []string{
		paint(heading, color, colorize),
		paint(strings.Repeat("-", len(heading)), color, colorize),
	}
}
