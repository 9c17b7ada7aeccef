// Command murmur-credential encodes and checks stored credentials from a shell.
//
//	murmur-credential encode
//	murmur-credential validate <hex-digest>
//
// The password is read from the terminal without echo, or as one line from stdin
// when stdin is not a terminal.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"murmur/cmd/security/password"
)

const (
	exitOK       = 0
	exitMismatch = 1
	exitUsage    = 2
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	switch args[0] {
	case "encode":
		if len(args) != 1 {
			usage(stderr)
			return exitUsage
		}
		pw, err := promptPassword(stdin, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "read password: %v\n", err)
			return exitUsage
		}
		fmt.Fprintln(stdout, password.Default().Encode(pw).String())
		clear(pw)
		return exitOK

	case "validate":
		if len(args) != 2 {
			usage(stderr)
			return exitUsage
		}
		stored, err := password.ParseDigest(args[1])
		if err != nil {
			fmt.Fprintf(stderr, "invalid digest: %v\n", err)
			return exitUsage
		}
		pw, err := promptPassword(stdin, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "read password: %v\n", err)
			return exitUsage
		}
		ok := password.Default().Validate(pw, stored)
		clear(pw)
		if !ok {
			fmt.Fprintln(stdout, "mismatch")
			return exitMismatch
		}
		fmt.Fprintln(stdout, "ok")
		return exitOK

	case "-h", "--help", "help":
		usage(stdout)
		return exitOK

	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `usage:
  murmur-credential encode              read a password, print its stored form
  murmur-credential validate <digest>   read a password, print ok or mismatch

scheme v%d, max iterations %d
`, password.SchemeVersion, password.MaxIterations)
}

// promptPassword reads one password. A terminal gets a prompt and no echo,
// anything else is read up to the first newline.
func promptPassword(in io.Reader, prompt io.Writer) ([]byte, error) {
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return nil, err
		}
		return pw, nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
