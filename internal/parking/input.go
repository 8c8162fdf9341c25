package parking

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type InputReader interface {
	ReadSelection() (int, error)
	ReadRegistration() (string, error)
}

// ConsoleReader reads one answer per line. It is shared by the shell's menu
// loop and the check-in/check-out prompts so they consume the same stream.
type ConsoleReader struct {
	scanner *bufio.Scanner
}

func NewConsoleReader(r io.Reader) *ConsoleReader {
	return &ConsoleReader{scanner: bufio.NewScanner(r)}
}

func (c *ConsoleReader) readLine() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.scanner.Text()), nil
}

// ReadSelection returns -1 for input that is not a number.
func (c *ConsoleReader) ReadSelection() (int, error) {
	line, err := c.readLine()
	if err != nil {
		return -1, err
	}
	selection, err := strconv.Atoi(line)
	if err != nil {
		return -1, nil
	}
	return selection, nil
}

func (c *ConsoleReader) ReadRegistration() (string, error) {
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	return normalizeRegistration(line)
}

// StaticInput answers with fixed values, for callers that already hold the
// operator's choices (the HTTP API).
type StaticInput struct {
	Selection    int
	Registration string
}

func (s StaticInput) ReadSelection() (int, error) {
	return s.Selection, nil
}

func (s StaticInput) ReadRegistration() (string, error) {
	return normalizeRegistration(s.Registration)
}

func normalizeRegistration(reg string) (string, error) {
	reg = strings.TrimSpace(reg)
	if reg == "" {
		return "", fmt.Errorf("%w: registration number is empty", ErrInvalidArgument)
	}
	return reg, nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
