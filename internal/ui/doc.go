// Package ui holds the color themes shared by the REPL, the sweep output and
// the terminal browser. ANSI themes serve line-oriented output; TUITheme
// carries the lipgloss palette.
package ui
