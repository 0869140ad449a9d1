package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/agbru/fibdev/internal/device"
	apperrors "github.com/agbru/fibdev/internal/errors"
	"github.com/agbru/fibdev/internal/format"
	"github.com/agbru/fibdev/internal/ui"
)

// REPL drives a device file from typed commands. The file stays open between
// commands until "close" or exit, so a second process (or the HTTP front on
// the same node) sees the device as busy meanwhile.
type REPL struct {
	node *device.Node
	file *device.File
	buf  []byte
	in   io.Reader
	out  io.Writer
}

// NewREPL creates a REPL over node reading stdin and writing stdout.
func NewREPL(node *device.Node) *REPL {
	return &REPL{
		node: node,
		buf:  make([]byte, device.BufferSize),
		in:   os.Stdin,
		out:  os.Stdout,
	}
}

// SetInput sets a custom input reader.
func (r *REPL) SetInput(in io.Reader) { r.in = in }

// SetOutput sets a custom output writer.
func (r *REPL) SetOutput(out io.Writer) { r.out = out }

// Start runs the loop until "exit" or end of input, then closes the file if
// it is still open.
func (r *REPL) Start() {
	defer r.closeFile()

	r.printBanner()
	reader := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, paintOK("fib> "))
		input, err := reader.ReadString('\n')
		if line := strings.TrimSpace(input); line != "" {
			if !r.processCommand(line) {
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, paintErr("read error: "+err.Error()))
			}
			fmt.Fprintln(r.out)
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "%s%s%s: Fibonacci device %q, indices 0..%d\n",
		ui.ColorBold(), "fibdev", ui.ColorReset(), r.node.Device().Name(), r.node.Device().MaxIndex())
	fmt.Fprintf(r.out, "Type %s for commands.\n\n", paintHi("help"))
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, ui.Paint(ui.ColorBold(), "Commands:"))
	for _, c := range [][2]string{
		{"open", "acquire the device"},
		{"close", "release the device"},
		{"seek <off> [set|cur|end]", "move the cursor (default set)"},
		{"read", "compute F(cursor)"},
		{"write <text>", "write to the device (acknowledged, ignored)"},
		{"<n>", "open if needed, seek to n and read"},
		{"status", "show device and cursor state"},
		{"help", "show this help"},
		{"exit", "release the device and quit"},
	} {
		fmt.Fprintf(r.out, "  %-26s %s\n", paintHi(c[0]), c[1])
	}
}

// processCommand executes one line and reports whether the loop continues.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "open", "o":
		r.cmdOpen()
	case "close":
		r.cmdClose()
	case "seek", "s":
		r.cmdSeek(args)
	case "read", "r":
		r.cmdRead()
	case "write", "w":
		r.cmdWrite(strings.Join(args, " "))
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintln(r.out, paintOK("bye"))
		return false
	default:
		n, err := strconv.ParseInt(cmd, 10, 64)
		if err != nil {
			fmt.Fprintln(r.out, paintErr("unknown command: "+cmd))
			fmt.Fprintf(r.out, "Type %s to see available commands.\n", paintHi("help"))
			return true
		}
		if r.file == nil && !r.cmdOpen() {
			return true
		}
		if _, err := r.file.Seek(n, io.SeekStart); err != nil {
			r.printErr(err)
			return true
		}
		r.cmdRead()
	}
	return true
}

func (r *REPL) cmdOpen() bool {
	if r.file != nil {
		fmt.Fprintln(r.out, "device already open")
		return true
	}
	f, err := r.node.Open()
	if err != nil {
		r.printErr(err)
		return false
	}
	r.file = f
	fmt.Fprintln(r.out, paintOK("opened"))
	return true
}

func (r *REPL) cmdClose() {
	if r.file == nil {
		fmt.Fprintln(r.out, "device not open")
		return
	}
	r.closeFile()
	fmt.Fprintln(r.out, paintOK("closed"))
}

func (r *REPL) closeFile() {
	if r.file == nil {
		return
	}
	if err := r.file.Close(); err != nil {
		r.printErr(err)
	}
	r.file = nil
}

func (r *REPL) cmdSeek(args []string) {
	if !r.requireOpen() {
		return
	}
	if len(args) == 0 || len(args) > 2 {
		fmt.Fprintln(r.out, paintErr("usage: seek <offset> [set|cur|end]"))
		return
	}
	off, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(r.out, paintErr("invalid offset: "+args[0]))
		return
	}
	whence := io.SeekStart
	if len(args) == 2 {
		if whence, err = device.ParseWhence(args[1]); err != nil {
			r.printErr(err)
			return
		}
	}
	pos, err := r.file.Seek(off, whence)
	if err != nil {
		r.printErr(err)
		return
	}
	fmt.Fprintf(r.out, "cursor = %s\n", paintHi(strconv.FormatInt(pos, 10)))
}

func (r *REPL) cmdRead() {
	if !r.requireOpen() {
		return
	}
	n, err := r.file.Read(r.buf)
	if err != nil {
		r.printErr(err)
		return
	}
	d, _ := r.file.LastComputeDuration()
	fmt.Fprintln(r.out, FormatReading(r.file.Cursor(), string(r.buf[:n]), d))
}

func (r *REPL) cmdWrite(text string) {
	if !r.requireOpen() {
		return
	}
	n, err := r.file.Write([]byte(text))
	if err != nil {
		r.printErr(err)
		return
	}
	fmt.Fprintf(r.out, "write acknowledged (%d)\n", n)
}

func (r *REPL) cmdStatus() {
	dev := r.node.Device()
	fmt.Fprintln(r.out, ui.Paint(ui.ColorBold(), "Device:"))
	fmt.Fprintf(r.out, "  Name:       %s\n", dev.Name())
	fmt.Fprintf(r.out, "  Engine:     %s\n", dev.Engine().Name())
	fmt.Fprintf(r.out, "  Max index:  %d\n", dev.MaxIndex())
	if r.file == nil {
		fmt.Fprintf(r.out, "  Open:       no (in use elsewhere: %t)\n", dev.InUse())
		return
	}
	fmt.Fprintln(r.out, "  Open:       yes")
	fmt.Fprintf(r.out, "  Cursor:     %d\n", r.file.Cursor())
	if d, ok := r.file.LastComputeDuration(); ok {
		fmt.Fprintf(r.out, "  Last read:  %s\n", format.FormatExecutionDuration(d))
	}
}

func (r *REPL) requireOpen() bool {
	if r.file == nil {
		fmt.Fprintf(r.out, "%s (use %s)\n", paintErr("device not open"), paintHi("open"))
		return false
	}
	return true
}

func (r *REPL) printErr(err error) {
	if errors.Is(err, apperrors.ErrBusy) {
		fmt.Fprintln(r.out, paintErr("device is in use"))
		return
	}
	fmt.Fprintln(r.out, paintErr("error: "+err.Error()))
}
