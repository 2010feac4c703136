package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errPasswordsDiffer = errors.New("passwords do not match")

type PasswordResetter interface {
	ResetPassword(email string) (string, error)
	SetPassword(email string, password string) error
}

// ResetOptions controls how reset-password picks the new password. With
// Prompt set the operator types it twice on Input without echo, otherwise a
// temporary password is generated and printed.
type ResetOptions struct {
	Prompt bool
	Input  *os.File
	Output io.Writer

	readSecret func(*os.File) ([]byte, error)
}

func RunResetPassword(resetter PasswordResetter, email string, options ResetOptions) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	out := options.Output
	if out == nil {
		out = os.Stdout
	}

	if !options.Prompt {
		temporary, err := resetter.ResetPassword(email)
		if err != nil {
			return fmt.Errorf("reset password for %s: %w", email, err)
		}
		fmt.Fprintln(out, "Password reset successful")
		fmt.Fprintf(out, "Temporary password: %s\n", temporary)
		fmt.Fprintln(out, "User must change password on next login.")
		return nil
	}

	password, err := promptNewPassword(out, options)
	if err != nil {
		return err
	}
	if err := resetter.SetPassword(email, password); err != nil {
		return fmt.Errorf("set password for %s: %w", email, err)
	}
	fmt.Fprintln(out, "Password updated")
	return nil
}

func promptNewPassword(out io.Writer, options ResetOptions) (string, error) {
	read := options.readSecret
	if read == nil {
		read = readPasswordNoEcho
	}
	in := options.Input
	if in == nil {
		in = os.Stdin
	}

	fmt.Fprint(out, "New password: ")
	first, err := read(in)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(out, "Repeat password: ")
	second, err := read(in)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errPasswordsDiffer
	}
	return string(first), nil
}
