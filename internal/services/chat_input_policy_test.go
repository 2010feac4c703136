package services

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateChatInput(t *testing.T) {
	t.Parallel()

	ptr := func(value string) *string { return &value }

	tests := []struct {
		name         string
		input        ChatInput
		wantLanguage string
		wantErr      error
	}{
		{name: "missing message", input: ChatInput{}, wantErr: ErrChatMessageRequired},
		{name: "empty message", input: ChatInput{Message: ptr("")}, wantErr: ErrChatMessageEmpty},
		{name: "whitespace message", input: ChatInput{Message: ptr("  \n ")}, wantErr: ErrChatMessageEmpty},
		{name: "too long", input: ChatInput{Message: ptr(strings.Repeat("a", 1001))}, wantErr: ErrChatMessageTooLong},
		{name: "limit counts runes", input: ChatInput{Message: ptr(strings.Repeat("ɛ", 1000))}, wantLanguage: ChatLanguageEnglish},
		{name: "default language", input: ChatInput{Message: ptr("Hello")}, wantLanguage: ChatLanguageEnglish},
		{name: "twi any case", input: ChatInput{Message: ptr("Maakye"), Language: "TWI"}, wantLanguage: ChatLanguageTwi},
		{name: "unknown language", input: ChatInput{Message: ptr("Bonjour"), Language: "french"}, wantErr: ErrChatLanguageInvalid},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			language, err := ValidateChatInput(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if language != tc.wantLanguage {
				t.Fatalf("expected language %q, got %q", tc.wantLanguage, language)
			}
		})
	}
}

func TestSanitizeChatText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "trims", raw: "  is spotting normal?  ", want: "is spotting normal?"},
		{name: "script block", raw: "hi<script type=\"text/javascript\">alert(1)</script> there", want: "hi there"},
		{name: "multiline script", raw: "a<SCRIPT>\nx()\n</SCRIPT>b", want: "ab"},
		{name: "javascript url", raw: "see JavaScript:alert(1)", want: "see alert(1)"},
		{name: "event handler", raw: `<img src=x onerror=alert(1)>`, want: `<img src=x alert(1)>`},
		{name: "plain text untouched", raw: "Me yam yɛ me ya", want: "Me yam yɛ me ya"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeChatText(tc.raw); got != tc.want {
				t.Fatalf("SanitizeChatText(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestSanitizeChatTextCapsLength(t *testing.T) {
	t.Parallel()

	got := SanitizeChatText(strings.Repeat("ɔ", 1500))
	if runeLength(got) != MaxChatMessageLength {
		t.Fatalf("expected %d runes, got %d", MaxChatMessageLength, runeLength(got))
	}
}
