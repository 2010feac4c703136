package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// readPasswordNoEcho reads one line from a terminal with echo switched off.
// The terminal mode is restored before returning.
func readPasswordNoEcho(stdin *os.File) ([]byte, error) {
	if stdin == nil {
		return nil, errors.New("stdin unavailable")
	}

	restore, err := disableEcho(stdin)
	if err != nil {
		return nil, err
	}
	defer restore()

	return readSecretLine(stdin)
}

func readSecretLine(in io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
