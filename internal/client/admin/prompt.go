package admin

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Input reads lines from stdin. All readers of stdin must share one Input,
// otherwise lines buffered by one of them are lost to the others.
type Input struct {
	file *os.File
	r    *bufio.Reader
}

// NewInput wraps r. Passwords are read without echo when r is a terminal.
func NewInput(r io.Reader) *Input {
	f, _ := r.(*os.File)
	return &Input{file: f, r: bufio.NewReader(r)}
}

// ReadLine reads one line without its trailing newline. A final line without
// a newline is returned as is; io.EOF is reported only when nothing is left.
func (in *Input) ReadLine() (string, error) {
	line, err := in.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptPassword asks for the admin password on out and reads it.
func (in *Input) PromptPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "Admin password: ")

	if in.file != nil && term.IsTerminal(int(in.file.Fd())) {
		b, err := term.ReadPassword(int(in.file.Fd()))
		fmt.Fprintln(out)
		return string(b), err
	}
	return in.ReadLine()
}
