package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// promptSecret asks for the password with masked input.
func promptSecret(in io.Reader, out io.Writer) (string, error) {
	prompt := promptui.Prompt{
		Label:  "WebDAV password",
		Mask:   '*',
		Stdin:  io.NopCloser(in),
		Stdout: nopWriteCloser{out},
	}
	secret, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", fmt.Errorf("password entry aborted")
		}
		return "", err
	}
	return secret, nil
}
