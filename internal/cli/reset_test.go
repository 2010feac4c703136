package cli

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

type recordingResetter struct {
	resetEmail  string
	setEmail    string
	setPassword string
	err         error
}

func (resetter *recordingResetter) ResetPassword(email string) (string, error) {
	resetter.resetEmail = email
	if resetter.err != nil {
		return "", resetter.err
	}
	return "Tmp#Pass1234", nil
}

func (resetter *recordingResetter) SetPassword(email string, password string) error {
	resetter.setEmail = email
	resetter.setPassword = password
	return resetter.err
}

func scriptedSecrets(values ...string) func(*os.File) ([]byte, error) {
	return func(*os.File) ([]byte, error) {
		if len(values) == 0 {
			return nil, errors.New("no more input")
		}
		next := values[0]
		values = values[1:]
		return []byte(next), nil
	}
}

func TestRunResetPasswordPrintsTemporaryPassword(t *testing.T) {
	t.Parallel()

	resetter := &recordingResetter{}
	var out bytes.Buffer
	if err := RunResetPassword(resetter, " ama@example.com ", ResetOptions{Output: &out}); err != nil {
		t.Fatalf("RunResetPassword returned error: %v", err)
	}
	if resetter.resetEmail != "ama@example.com" {
		t.Fatalf("reset email = %q", resetter.resetEmail)
	}
	if !strings.Contains(out.String(), "Temporary password: Tmp#Pass1234") {
		t.Fatalf("output does not carry the temporary password: %q", out.String())
	}
}

func TestRunResetPasswordRequiresEmail(t *testing.T) {
	t.Parallel()

	if err := RunResetPassword(&recordingResetter{}, "  ", ResetOptions{Output: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for empty email")
	}
}

func TestRunResetPasswordWrapsServiceError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("user not found")
	err := RunResetPassword(&recordingResetter{err: sentinel}, "ama@example.com", ResetOptions{Output: &bytes.Buffer{}})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped service error, got %v", err)
	}
}

func TestRunResetPasswordPromptSetsChosenPassword(t *testing.T) {
	t.Parallel()

	resetter := &recordingResetter{}
	var out bytes.Buffer
	options := ResetOptions{Prompt: true, Output: &out, readSecret: scriptedSecrets("Chosen#Pass9", "Chosen#Pass9")}
	if err := RunResetPassword(resetter, "ama@example.com", options); err != nil {
		t.Fatalf("RunResetPassword returned error: %v", err)
	}
	if resetter.setPassword != "Chosen#Pass9" || resetter.resetEmail != "" {
		t.Fatalf("unexpected resetter state: %+v", resetter)
	}
	if strings.Contains(out.String(), "Chosen#Pass9") {
		t.Fatal("prompted password must not be echoed")
	}
}

func TestRunResetPasswordPromptRejectsMismatch(t *testing.T) {
	t.Parallel()

	resetter := &recordingResetter{}
	options := ResetOptions{Prompt: true, Output: &bytes.Buffer{}, readSecret: scriptedSecrets("Chosen#Pass9", "Other#Pass9")}
	if err := RunResetPassword(resetter, "ama@example.com", options); !errors.Is(err, errPasswordsDiffer) {
		t.Fatalf("expected errPasswordsDiffer, got %v", err)
	}
	if resetter.setEmail != "" {
		t.Fatal("password must not be stored after a mismatch")
	}
}

func TestReadSecretLineTrimsLineEnding(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Chosen#Pass9\n":   "Chosen#Pass9",
		"Chosen#Pass9\r\n": "Chosen#Pass9",
		"NoNewline":        "NoNewline",
		"":                 "",
	}
	for input, want := range cases {
		got, err := readSecretLine(strings.NewReader(input))
		if err != nil {
			t.Fatalf("readSecretLine(%q) error: %v", input, err)
		}
		if string(got) != want {
			t.Fatalf("readSecretLine(%q) = %q, want %q", input, got, want)
		}
	}
}
