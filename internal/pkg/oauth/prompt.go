package oauth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrEmptyCode = errors.New("no authorization code entered")

// TerminalPrompter prints the consent URL and reads the pasted redirect URL
// or code from a terminal.
type TerminalPrompter struct {
	in  io.Reader
	out io.Writer
}

func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out}
}

func (p *TerminalPrompter) Prompt(ctx context.Context, authURL string) (string, error) {
	fmt.Fprintf(p.out, "Open this URL in a browser and grant read access to the timesheet spreadsheets:\n\n  %s\n\nPaste the redirect URL or the authorization code: ", authURL)

	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(p.in).ReadString('\n')
		if errors.Is(err, io.EOF) && line != "" {
			err = nil
		}
		done <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("read authorization code: %w", r.err)
		}
		code := strings.TrimSpace(r.line)
		if code == "" {
			return "", ErrEmptyCode
		}
		return code, nil
	}
}
