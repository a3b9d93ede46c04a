// Command hashsecret prints the argon2id hash of a secret so operators can
// seed or reset account rows by hand. The secret is read without echo when
// stdin is a terminal and as a single line otherwise.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for golang.org/x/term.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func main() {
	if err := run(os.Stdin, os.Stdout, os.Stderr, int(os.Stdin.Fd())); err != nil {
		fmt.Fprintln(os.Stderr, "hashsecret:", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out, prompt io.Writer, fd int) error {
	secret, err := readSecret(in, prompt, fd)
	if err != nil {
		return err
	}
	defer wipe(secret)

	if len(secret) == 0 {
		return errors.New("empty secret")
	}

	hasher, err := credentials.NewArgon2(credentials.DefaultParams)
	if err != nil {
		return err
	}

	hash, err := hasher.Hash(string(secret))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, hash)
	return err
}

func readSecret(in io.Reader, prompt io.Writer, fd int) ([]byte, error) {
	if isTerminal(fd) {
		fmt.Fprint(prompt, "Secret: ")
		b, err := readPassword(fd)
		fmt.Fprintln(prompt)
		return b, err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
