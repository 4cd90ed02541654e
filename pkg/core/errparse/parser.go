// Package errparse turns pasted error output into a structured reading:
// language, framework, error type, key terms, and source location. The
// reading drives a targeted search query and result ranking.
package errparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
)

// Language detection runs in a fixed order. JavaScript evidence is
// checked before Python because browser stack traces often mention
// file paths that the looser Python patterns would also match, and
// TypeScript before JavaScript since every TS signal implies JS.
var languageChecks = []struct {
	lang     research.Language
	patterns []*regexp.Regexp
}{
	{research.LangTypeScript, []*regexp.Regexp{
		regexp.MustCompile(`\.tsx?[:'")\s]`),
		regexp.MustCompile(`\bTS\d{4}\b`),
	}},
	{research.LangJavaScript, []*regexp.Regexp{
		regexp.MustCompile(`\.jsx?[:'")\s]`),
		regexp.MustCompile(`\bat\s+\S+\s+\(?\S+:\d+:\d+\)?`),
		// TypeError alone is ambiguous with Python; require a JS phrase.
		regexp.MustCompile(`\bReferenceError\b`),
		regexp.MustCompile(`\b(?:TypeError|SyntaxError|RangeError)\b.*(?:undefined|null|is not a function|Cannot read)`),
		regexp.MustCompile(`\bXMLHttpRequest\b`),
		regexp.MustCompile(`Cannot read propert(?:y|ies)`),
	}},
	{research.LangPython, []*regexp.Regexp{
		regexp.MustCompile(`Traceback \(most recent call last\)`),
		regexp.MustCompile(`File "[^"]+", line \d+`),
		regexp.MustCompile(`\b\w+Error:`),
	}},
	{research.LangRust, []*regexp.Regexp{
		regexp.MustCompile(`error\[E\d{4}\]`),
		regexp.MustCompile(`-->\s+\S+\.rs:\d+`),
		regexp.MustCompile(`panicked at`),
		regexp.MustCompile(`cannot borrow|borrow of moved value`),
	}},
	{research.LangJava, []*regexp.Regexp{
		regexp.MustCompile(`Exception in thread`),
		regexp.MustCompile(`\bat [\w.$]+\([\w.]+\.java:\d+\)`),
		regexp.MustCompile(`\b\w+Exception\b`),
	}},
	{research.LangGo, []*regexp.Regexp{
		regexp.MustCompile(`goroutine \d+ \[`),
		regexp.MustCompile(`panic:`),
		regexp.MustCompile(`\S+\.go:\d+`),
	}},
}

var frameworkTokens = []struct {
	framework research.Framework
	token     string
}{
	{research.FrameworkReact, "react"},
	{research.FrameworkVue, "vue"},
	{research.FrameworkAngular, "angular"},
	{research.FrameworkDjango, "django"},
	{research.FrameworkFlask, "flask"},
	{research.FrameworkFastAPI, "fastapi"},
	{research.FrameworkExpress, "express"},
	{research.FrameworkNext, "next.js"},
	{research.FrameworkNext, "nextjs"},
}

// Web error shapes are checked before the per-language tables since a
// browser TypeError about CORS is better searched as a CORS problem.
var webErrorTypes = []struct {
	errorType string
	pattern   *regexp.Regexp
}{
	{"CORS Error", regexp.MustCompile(`CORS policy|Access-Control-Allow-Origin|No ['"]?Access-Control`)},
	{"Fetch Error", regexp.MustCompile(`fetch.*failed|Failed to fetch|NetworkError`)},
	{"Cannot read property", regexp.MustCompile(`Cannot read propert(?:y|ies) ['"].+?['"] of`)},
}

var (
	pythonErrorType  = regexp.MustCompile(`\b(\w+Error)(?::|\b)`)
	jsErrorType      = regexp.MustCompile(`\b(ReferenceError|TypeError|SyntaxError|RangeError)\b`)
	javaErrorType    = regexp.MustCompile(`\b([\w.]*?(\w+Exception))\b`)
	rustErrorCode    = regexp.MustCompile(`error\[(E\d{4})\]`)
	goPanicPatterns  = []struct {
		errorType string
		pattern   *regexp.Regexp
	}{
		{"nil pointer dereference", regexp.MustCompile(`nil pointer dereference`)},
		{"index out of range", regexp.MustCompile(`index out of range`)},
	}

	rustErrorCodes = map[string]string{
		"E0382": "borrow error",
		"E0502": "borrow conflict",
		"E0308": "type mismatch",
	}
)

// Source location patterns per language family.
var (
	pythonLocation = regexp.MustCompile(`File "([^"]+)", line (\d+)`)
	jsLocation     = regexp.MustCompile(`\(?([\w./-]+\.[jt]sx?):(\d+)(?::\d+)?\)?`)
	rustLocation   = regexp.MustCompile(`-->\s+(\S+\.rs):(\d+)`)
	javaLocation   = regexp.MustCompile(`\(([\w.]+\.java):(\d+)\)`)
	goLocation     = regexp.MustCompile(`(\S+\.go):(\d+)`)
)

// Key-term extraction sources, applied in order.
var (
	termWhitelist = []string{
		"CORS", "cors", "fetch", "async", "await", "Promise", "undefined", "null",
		"map", "filter", "reduce", "Access-Control-Allow-Origin", "XMLHttpRequest",
		"module", "import", "export", "require",
	}
	quotedTerm     = regexp.MustCompile("'([^']{1,60})'|\"([^\"]{1,60})\"|`([^`]{1,60})`")
	identifierTerm = regexp.MustCompile(`\b([a-z]+(?:[A-Z]\w+)+|[a-zA-Z]\w*_\w+)\b`)
)

// maxKeyTerms caps the quoted and identifier passes. Whitelist hits are
// exempt: every whitelist term present in the input is always captured.
const maxKeyTerms = 8

// Parse reads raw error output into its structured form. langHint and
// fwHint override detection when non-empty.
func Parse(input, langHint, fwHint string) research.ParsedError {
	parsed := research.ParsedError{
		Language:  research.LangUnknown,
		Framework: research.FrameworkNone,
		Message:   firstMessageLine(input),
	}

	if langHint != "" {
		parsed.Language = research.Language(strings.ToLower(langHint))
	} else {
		parsed.Language = detectLanguage(input)
	}

	if fwHint != "" {
		parsed.Framework = research.Framework(strings.ToLower(fwHint))
	} else {
		parsed.Framework = detectFramework(input)
	}

	parsed.ErrorType = detectErrorType(input, parsed.Language)
	parsed.File, parsed.Line = detectLocation(input, parsed.Language)
	parsed.KeyTerms = extractKeyTerms(input, parsed.ErrorType)

	return parsed
}

func detectLanguage(input string) research.Language {
	for _, check := range languageChecks {
		for _, p := range check.patterns {
			if p.MatchString(input) {
				return check.lang
			}
		}
	}
	return research.LangUnknown
}

func detectFramework(input string) research.Framework {
	lower := strings.ToLower(input)
	for _, ft := range frameworkTokens {
		if strings.Contains(lower, ft.token) {
			return ft.framework
		}
	}
	return research.FrameworkNone
}

func detectErrorType(input string, lang research.Language) string {
	for _, wt := range webErrorTypes {
		if wt.pattern.MatchString(input) {
			return wt.errorType
		}
	}

	switch lang {
	case research.LangPython:
		if m := pythonErrorType.FindStringSubmatch(input); m != nil {
			return m[1]
		}
	case research.LangJavaScript, research.LangTypeScript:
		if m := jsErrorType.FindStringSubmatch(input); m != nil {
			return m[1]
		}
	case research.LangRust:
		if m := rustErrorCode.FindStringSubmatch(input); m != nil {
			if name, ok := rustErrorCodes[m[1]]; ok {
				return name
			}
			return m[1]
		}
	case research.LangJava:
		if m := javaErrorType.FindStringSubmatch(input); m != nil {
			return m[2]
		}
	case research.LangGo:
		for _, gp := range goPanicPatterns {
			if gp.pattern.MatchString(input) {
				return gp.errorType
			}
		}
	}

	// Language unknown or no table hit: try the generic shapes anyway.
	if m := pythonErrorType.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	if m := javaErrorType.FindStringSubmatch(input); m != nil {
		return m[2]
	}
	return "Unknown Error"
}

func detectLocation(input string, lang research.Language) (file string, line int) {
	var pattern *regexp.Regexp
	switch lang {
	case research.LangPython:
		pattern = pythonLocation
	case research.LangJavaScript, research.LangTypeScript:
		pattern = jsLocation
	case research.LangRust:
		pattern = rustLocation
	case research.LangJava:
		pattern = javaLocation
	case research.LangGo:
		pattern = goLocation
	default:
		return "", 0
	}

	m := pattern.FindStringSubmatch(input)
	if m == nil {
		return "", 0
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return m[1], 0
	}
	return m[1], n
}

// extractKeyTerms builds the insertion-ordered term set: whitelist
// occurrences, then quoted substrings, then multi-word identifiers.
// The error type itself is excluded so the query does not repeat it.
func extractKeyTerms(input, errorType string) []string {
	lowerInput := strings.ToLower(input)
	seen := map[string]bool{}
	var terms []string

	// Whitelist entries match case-insensitively but dedupe verbatim:
	// "CORS" and "cors" are distinct entries and both are captured when
	// either casing appears in the input.
	for _, w := range termWhitelist {
		if !strings.Contains(lowerInput, strings.ToLower(w)) {
			continue
		}
		if strings.EqualFold(w, errorType) || seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, w)
	}
	whitelisted := len(terms)

	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" || len(terms)-whitelisted >= maxKeyTerms {
			return
		}
		if strings.EqualFold(term, errorType) || seen[term] || seen[strings.ToLower(term)] {
			return
		}
		seen[strings.ToLower(term)] = true
		terms = append(terms, term)
	}

	for _, m := range quotedTerm.FindAllStringSubmatch(input, -1) {
		term := m[1] + m[2] + m[3]
		// Quoted fragments with spaces are messages, not terms.
		if !strings.Contains(term, " ") {
			add(term)
		}
	}
	for _, m := range identifierTerm.FindAllStringSubmatch(input, -1) {
		if len(m[1]) >= 3 {
			add(m[1])
		}
	}

	if terms == nil {
		terms = []string{}
	}
	return terms
}

// firstMessageLine keeps the first non-empty line as the display
// message, bounded to a sensible length.
func firstMessageLine(input string) string {
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			if len([]rune(line)) > 200 {
				return string([]rune(line)[:200])
			}
			return line
		}
	}
	return ""
}
