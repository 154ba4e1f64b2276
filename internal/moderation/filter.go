// Package moderation provides content screening for the SkillSwap backend.
// It checks chat messages against a keyword blocklist and flood patterns,
// and vets profile skill lists for blocked terms and contact-info spam.
package moderation

import "strings"

// FilterResult is the outcome of a content check.
type FilterResult struct {
	Blocked bool
	Reason  string // "blocked_keyword" or "spam_pattern"
	Term    string // the matched term or pattern name
}

// Filter screens text against a blocklist of words and phrases. It is
// immutable after construction and safe for concurrent use.
type Filter struct {
	words   map[string]bool
	phrases [][]string // each phrase as a token sequence
}

// defaultBlocklist covers slurs, incitement, exploitation, and the scam
// phrases that show up in marketplace chats. Multi-word entries match as
// exact token sequences.
var defaultBlocklist = []string{
	// slurs
	"nigger", "nigga", "faggot", "kike", "spic", "chink", "tranny",
	// incitement and threats
	"kill yourself", "go die", "bomb threat", "heil hitler",
	// exploitation
	"child porn", "send nudes",
	// marketplace scams
	"free bitcoin", "wire transfer", "western union", "advance fee",
	"guaranteed returns", "crypto giveaway",
}

// NewFilter creates a filter loaded with the default blocklist.
func NewFilter() *Filter {
	return NewFilterWithTerms(defaultBlocklist)
}

// NewFilterWithTerms creates a filter from a custom term list. Empty and
// whitespace-only terms are dropped. Single-word terms match individual
// tokens; multi-word terms match consecutive token sequences.
func NewFilterWithTerms(terms []string) *Filter {
	f := &Filter{words: make(map[string]bool)}
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if tokens := strings.Fields(term); len(tokens) > 1 {
			f.phrases = append(f.phrases, tokens)
		} else {
			f.words[term] = true
		}
	}
	return f
}

// Check screens a chat message. The blocklist is checked first, on both the
// plain tokens and a leetspeak-normalized pass, then flood patterns. The
// first match wins.
func (f *Filter) Check(text string) FilterResult {
	lower := strings.ToLower(text)

	if r := f.checkTokens(tokenizePlain(lower)); r.Blocked {
		return r
	}

	leet := tokenizeLeet(lower)
	normalized := make([]string, len(leet))
	for i, tok := range leet {
		normalized[i] = normalizeLeet(tok)
	}
	if r := f.checkTokens(normalized); r.Blocked {
		return r
	}

	return f.checkSpamPatterns(text)
}

// CheckSkills vets a profile skill list. Entries that hit the blocklist or
// look like contact-info spam (URLs, phone numbers) are dropped; the
// remaining entries are returned in their original order.
func (f *Filter) CheckSkills(skills []string) []string {
	clean := make([]string, 0, len(skills))
	for _, skill := range skills {
		if f.Check(skill).Blocked {
			continue
		}
		if hasContactSpam(skill) {
			continue
		}
		clean = append(clean, skill)
	}
	return clean
}

// checkTokens runs the word and phrase blocklists over a token stream.
func (f *Filter) checkTokens(tokens []string) FilterResult {
	for _, tok := range tokens {
		if f.words[tok] {
			return FilterResult{Blocked: true, Reason: "blocked_keyword", Term: tok}
		}
	}

	for _, phrase := range f.phrases {
		if matchPhrase(tokens, phrase) {
			return FilterResult{
				Blocked: true,
				Reason:  "blocked_keyword",
				Term:    strings.Join(phrase, " "),
			}
		}
	}
	return FilterResult{}
}

// matchPhrase reports whether phrase appears as a consecutive token run.
func matchPhrase(tokens, phrase []string) bool {
	if len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j, p := range phrase {
			if tokens[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// leetMap translates common character substitutions back to letters.
var leetMap = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'@': 'a',
	'$': 's',
	'!': 'i',
}

// normalizeLeet maps leetspeak substitutions in a token back to letters.
func normalizeLeet(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range token {
		if sub, ok := leetMap[r]; ok {
			b.WriteRune(sub)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tokenizePlain splits text into lowercase word tokens, treating any
// non-alphanumeric rune as a delimiter.
func tokenizePlain(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		return !isAlnum
	})
}

// tokenizeLeet splits on whitespace only, so substitution characters like
// "@" and "$" stay inside their token for normalizeLeet to translate.
func tokenizeLeet(text string) []string {
	return strings.Fields(text)
}
