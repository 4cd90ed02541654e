package errparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searxng-tools/web-research-assist/pkg/domain/research"
)

const pythonTraceback = `Traceback (most recent call last):
  File "app/views.py", line 42, in get_user
    user = User.objects.get(pk=user_id)
django.core.exceptions.ObjectDoesNotExist: User matching query does not exist
ValueError: invalid literal for int() with base 10: 'abc'`

const jsCORSError = `Access to fetch at 'https://api.example.com/data' from origin 'http://localhost:3000'
has been blocked by CORS policy: No 'Access-Control-Allow-Origin' header is present
on the requested resource.`

const jsTypeError = `TypeError: Cannot read property 'map' of undefined
    at UserList (UserList.jsx:15:23)
    at renderWithHooks (react-dom.development.js:14985:18)`

const rustBorrowError = `error[E0382]: borrow of moved value: ` + "`config`" + `
  --> src/main.rs:24:20
   |
23 |     let parsed = parse(config);
   |                        ------ value moved here`

const goPanic = `panic: runtime error: invalid memory address or nil pointer dereference
goroutine 1 [running]:
main.handleRequest(0x0)
	/app/server.go:88 +0x1a`

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  research.Language
	}{
		{"python traceback", pythonTraceback, research.LangPython},
		{"js stack frames", jsTypeError, research.LangJavaScript},
		{"typescript diagnostic", "error TS2345: Argument of type 'string'", research.LangTypeScript},
		{"rust compiler", rustBorrowError, research.LangRust},
		{"java exception", "Exception in thread \"main\" java.lang.NullPointerException\n\tat com.app.Main.run(Main.java:10)", research.LangJava},
		{"go panic", goPanic, research.LangGo},
		{"plain text", "something went wrong", research.LangUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectLanguage(tt.input))
		})
	}
}

func TestParsePythonTraceback(t *testing.T) {
	parsed := Parse(pythonTraceback, "", "")

	assert.Equal(t, research.LangPython, parsed.Language)
	assert.Equal(t, research.FrameworkDjango, parsed.Framework)
	assert.Equal(t, "ValueError", parsed.ErrorType)
	assert.Equal(t, "app/views.py", parsed.File)
	assert.Equal(t, 42, parsed.Line)
	assert.Equal(t, "Traceback (most recent call last):", parsed.Message)
}

func TestParseCORS(t *testing.T) {
	parsed := Parse(jsCORSError, "", "")

	assert.Equal(t, "CORS Error", parsed.ErrorType)
	assert.Contains(t, parsed.KeyTerms, "CORS")
	assert.Contains(t, parsed.KeyTerms, "fetch")
}

func TestParseCORSWhitelistCasings(t *testing.T) {
	input := `Access to XMLHttpRequest at 'https://api.example.com/x' from origin 'https://app.example.com'
has been blocked by CORS policy: No 'Access-Control-Allow-Origin' header is present on the requested resource.`
	parsed := Parse(input, "", "")

	assert.Equal(t, "CORS Error", parsed.ErrorType)
	// Both whitelist casings are captured when either appears.
	assert.Contains(t, parsed.KeyTerms, "CORS")
	assert.Contains(t, parsed.KeyTerms, "cors")
	assert.Contains(t, parsed.KeyTerms, "Access-Control-Allow-Origin")
	assert.Contains(t, parsed.KeyTerms, "XMLHttpRequest")
}

func TestParseJSTypeError(t *testing.T) {
	parsed := Parse(jsTypeError, "", "react")

	assert.Equal(t, research.LangJavaScript, parsed.Language)
	assert.Equal(t, research.FrameworkReact, parsed.Framework)
	assert.Equal(t, "Cannot read property", parsed.ErrorType)
	assert.Equal(t, "UserList.jsx", parsed.File)
	assert.Equal(t, 15, parsed.Line)
	assert.Contains(t, parsed.KeyTerms, "undefined")
	assert.Contains(t, parsed.KeyTerms, "map")
}

func TestParseRust(t *testing.T) {
	parsed := Parse(rustBorrowError, "", "")

	assert.Equal(t, research.LangRust, parsed.Language)
	assert.Equal(t, "borrow error", parsed.ErrorType)
	assert.Equal(t, "src/main.rs", parsed.File)
	assert.Equal(t, 24, parsed.Line)
	assert.Contains(t, parsed.KeyTerms, "config")
}

func TestParseRustBacktickTerm(t *testing.T) {
	input := "error[E0382]: borrow of moved value: `data`\n  --> src/main.rs:7:5"
	parsed := Parse(input, "", "")

	assert.Equal(t, research.LangRust, parsed.Language)
	assert.Equal(t, "borrow error", parsed.ErrorType)
	assert.Equal(t, "src/main.rs", parsed.File)
	assert.Equal(t, 7, parsed.Line)
	assert.Contains(t, parsed.KeyTerms, "data")
}

func TestParseGoPanic(t *testing.T) {
	parsed := Parse(goPanic, "", "")

	assert.Equal(t, research.LangGo, parsed.Language)
	assert.Equal(t, "nil pointer dereference", parsed.ErrorType)
	assert.Equal(t, "/app/server.go", parsed.File)
	assert.Equal(t, 88, parsed.Line)
}

func TestParseHintsOverrideDetection(t *testing.T) {
	parsed := Parse("something broke", "Rust", "Vue")
	assert.Equal(t, research.LangRust, parsed.Language)
	assert.Equal(t, research.FrameworkVue, parsed.Framework)
}

func TestKeyTermsOrderAndDedup(t *testing.T) {
	input := `fetch failed: 'getUser' threw, getUser returned undefined undefined fetch`
	terms := extractKeyTerms(input, "Fetch Error")

	// Whitelist first, then quoted, then identifiers; no duplicates.
	require.NotEmpty(t, terms)
	assert.Equal(t, "fetch", terms[0])
	assert.Contains(t, terms, "undefined")
	assert.Contains(t, terms, "getUser")

	seen := map[string]int{}
	for _, term := range terms {
		seen[term]++
		assert.Equal(t, 1, seen[term], term)
	}
}

func TestKeyTermsWhitelistExemptFromCap(t *testing.T) {
	input := strings.Join(termWhitelist, " ") +
		" 'alpha' 'bravo' 'charlie' 'delta' 'echo' 'foxtrot' 'golf' 'hotel' 'india' 'juliet'"
	terms := extractKeyTerms(input, "Unknown Error")

	// Every whitelist term present in the input survives the cap; the
	// cap only bounds the quoted and identifier passes.
	for _, w := range termWhitelist {
		assert.Contains(t, terms, w)
	}
	assert.LessOrEqual(t, len(terms), len(termWhitelist)+maxKeyTerms)
}

func TestKeyTermsExcludeErrorType(t *testing.T) {
	terms := extractKeyTerms(`ValueError: bad 'myValue'`, "ValueError")
	assert.NotContains(t, terms, "ValueError")
	assert.Contains(t, terms, "myValue")
}

func TestUnknownError(t *testing.T) {
	parsed := Parse("the gizmo stopped gizmoing", "", "")
	assert.Equal(t, "Unknown Error", parsed.ErrorType)
	assert.Equal(t, research.LangUnknown, parsed.Language)
}
