package moderation

import "testing"

// TestSpam_CharFlood verifies that repeated character flooding is blocked.
func TestSpam_CharFlood(t *testing.T) {
	f := NewFilterWithTerms(nil) // no keyword blocklist, isolate spam checks

	tests := []struct {
		name    string
		input   string
		blocked bool
		term    string
	}{
		{"repeated o in word", "hellooooooo", true, "char_flood"},
		{"repeated A", "AAAAAA", true, "char_flood"},
		{"repeated exclamation", "wow!!!!!", true, "char_flood"},
		{"repeated equals", "=====", true, "char_flood"},
		{"four chars ok", "heeeel no", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := f.Check(tt.input)
			if result.Blocked != tt.blocked {
				t.Errorf("Check(%q).Blocked = %v, want %v", tt.input, result.Blocked, tt.blocked)
			}
			if tt.blocked && result.Term != tt.term {
				t.Errorf("Check(%q).Term = %q, want %q", tt.input, result.Term, tt.term)
			}
			if tt.blocked && result.Reason != "spam_pattern" {
				t.Errorf("Check(%q).Reason = %q, want %q", tt.input, result.Reason, "spam_pattern")
			}
		})
	}
}

// TestSpam_WordFlood verifies that repeated word flooding is blocked.
func TestSpam_WordFlood(t *testing.T) {
	f := NewFilterWithTerms(nil)

	tests := []struct {
		name    string
		input   string
		blocked bool
		term    string
	}{
		{"buy x3", "buy buy buy", true, "word_flood"},
		{"spam x4", "spam spam spam spam", true, "word_flood"},
		{"in sentence", "hey buy buy buy now", true, "word_flood"},
		{"case insensitive", "BUY buy Buy", true, "word_flood"},
		{"two repeats ok", "go go", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := f.Check(tt.input)
			if result.Blocked != tt.blocked {
				t.Errorf("Check(%q).Blocked = %v, want %v", tt.input, result.Blocked, tt.blocked)
			}
			if tt.blocked && result.Term != tt.term {
				t.Errorf("Check(%q).Term = %q, want %q", tt.input, result.Term, tt.term)
			}
		})
	}
}

// TestSpam_CleanMessages ensures normal messages are NOT flagged.
func TestSpam_CleanMessages(t *testing.T) {
	f := NewFilterWithTerms(nil)

	clean := []struct {
		name  string
		input string
	}{
		{"short number", "I have 3 cats"},
		{"casual chat", "lol that's cool"},
		{"version string", "upgrade to v2.0"},
		{"decimal number", "pi is about 3.14"},
		{"session link", "meet at https://meet.example.com/abc"},
		{"empty string", ""},
		{"single word", "hello"},
		{"normal excitement", "wow!!! that's great!!"},
		{"repeated letters short", "sooo cool"},
		{"double word ok", "yeah yeah whatever"},
		{"money amount", "it costs $5.99"},
	}

	for _, tt := range clean {
		t.Run(tt.name, func(t *testing.T) {
			result := f.Check(tt.input)
			if result.Blocked {
				t.Errorf("Check(%q) was blocked (reason=%q, term=%q), expected clean",
					tt.input, result.Reason, result.Term)
			}
		})
	}
}

// TestSpam_KeywordPriority ensures the keyword blocklist is checked before
// the flood patterns.
func TestSpam_KeywordPriority(t *testing.T) {
	f := NewFilterWithTerms([]string{"badword"})

	result := f.Check("badword badword badword")
	if !result.Blocked {
		t.Fatal("expected blocked")
	}
	if result.Reason != "blocked_keyword" {
		t.Errorf("Reason = %q, want %q", result.Reason, "blocked_keyword")
	}
}

// TestContactSpam covers the URL and phone patterns used for skill vetting.
func TestContactSpam(t *testing.T) {
	tests := []struct {
		name  string
		input string
		spam  bool
	}{
		{"http url", "check out http://evil.com", true},
		{"https url", "visit https://spam.xyz/click", true},
		{"www url", "go to www.phishing.net", true},
		{"bare domain with path", "visit evil.com/free", true},
		{"intl dashed phone", "+1-555-123-4567", true},
		{"parenthesized area code", "(555) 123-4567", true},
		{"dotted phone", "555.123.4567", true},
		{"in sentence", "call me at 555-123-4567 okay?", true},
		{"plain skill", "conversational spanish", false},
		{"short number", "grade 5 piano", false},
		{"version string", "python 3.12", false},
		{"year", "teaching since 2019", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasContactSpam(tt.input); got != tt.spam {
				t.Errorf("hasContactSpam(%q) = %v, want %v", tt.input, got, tt.spam)
			}
		})
	}
}

// TestSpam_EdgeCases covers boundary conditions.
func TestSpam_EdgeCases(t *testing.T) {
	f := NewFilterWithTerms(nil)

	tests := []struct {
		name    string
		input   string
		blocked bool
	}{
		{"empty", "", false},
		{"single char", "a", false},
		{"spaces only", "   ", false},
		{"exactly 4 repeated chars", "aaaa", false},
		{"exactly 5 repeated chars", "aaaaa", true},
		{"newlines", "hello\nworld", false},
		{"tabs", "hello\tworld", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := f.Check(tt.input)
			if result.Blocked != tt.blocked {
				t.Errorf("Check(%q).Blocked = %v, want %v (reason=%q, term=%q)",
					tt.input, result.Blocked, tt.blocked, result.Reason, result.Term)
			}
		})
	}
}
