package problem

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// SnippetMarkers delimit an embedded code block inside a description. The
// first backend revision used the Korean "코드:"; later ones use English.
var SnippetMarkers = []string{"코드:", "code:", "Code:", "CODE:"}

// wrapperKeys hold the problem array when a revision wraps it in an object.
var wrapperKeys = []string{"problems", "data"}

// Normalize converts one raw JSON object into a Problem. It never panics;
// unusable input yields a *MalformedProblemError.
func Normalize(raw []byte) (Problem, error) {
	return normalizeAt(raw, -1)
}

// NormalizeSet converts a problem-set body into problems, skipping malformed
// elements. The body is a JSON array, or an object wrapping the array under
// "problems" or "data". ErrNotArray is returned for anything else.
func NormalizeSet(body []byte) ([]Problem, []*MalformedProblemError, error) {
	if !gjson.ValidBytes(body) {
		return nil, nil, ErrNotArray
	}
	arr := gjson.ParseBytes(body)
	if arr.IsObject() {
		for _, k := range wrapperKeys {
			if v := arr.Get(k); v.IsArray() {
				arr = v
				break
			}
		}
	}
	if !arr.IsArray() {
		return nil, nil, ErrNotArray
	}

	elems := arr.Array()
	problems := make([]Problem, 0, len(elems))
	var skipped []*MalformedProblemError
	for i, elem := range elems {
		p, err := normalizeAt([]byte(elem.Raw), i)
		if err != nil {
			var mp *MalformedProblemError
			if errors.As(err, &mp) {
				skipped = append(skipped, mp)
			}
			continue
		}
		problems = append(problems, p)
	}
	return problems, skipped, nil
}

func normalizeAt(raw []byte, index int) (p Problem, err error) {
	malformed := func(cause error) error {
		return &MalformedProblemError{Index: index, Raw: string(raw), Err: cause}
	}
	defer func() {
		if r := recover(); r != nil {
			p, err = Problem{}, malformed(errors.New("normalizer panic"))
		}
	}()

	if err := validateElement(raw); err != nil {
		return Problem{}, malformed(err)
	}

	obj := gjson.ParseBytes(raw)
	p = Problem{
		ID:         resolveID(obj.Get("id")),
		Category:   text(obj.Get("category")),
		Type:       text(obj.Get("type")),
		Title:      text(obj.Get("title")),
		Answer:     text(obj.Get("answer")),
		CorrectFix: text(obj.Get("correctFix")),
		Choices:    choices(obj.Get("choices")),
	}

	p.Description = text(obj.Get("description"))
	if prefix, code, ok := SplitSnippet(p.Description); ok {
		p.Description = prefix
		p.TargetSnippet = code
	}
	if explicit := text(obj.Get("targetSnippet")); explicit != "" {
		p.TargetSnippet = explicit
	}
	return p, nil
}

// SplitSnippet splits desc at the earliest snippet marker into a trimmed
// prose prefix and a code suffix with leading whitespace removed.
func SplitSnippet(desc string) (prefix, code string, ok bool) {
	at, width := -1, 0
	for _, m := range SnippetMarkers {
		if i := strings.Index(desc, m); i >= 0 && (at < 0 || i < at) {
			at, width = i, len(m)
		}
	}
	if at < 0 {
		return desc, "", false
	}
	prefix = strings.TrimSpace(desc[:at])
	code = strings.TrimLeftFunc(desc[at+width:], unicode.IsSpace)
	return prefix, code, true
}

// resolveID reads a numeric string or a number; anything else is UnknownID.
func resolveID(v gjson.Result) int {
	switch v.Type {
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return UnknownID
		}
		return n
	case gjson.Number:
		return int(v.Int())
	default:
		return UnknownID
	}
}

// text reads a scalar as a string. Missing and null values are "".
func text(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	default:
		return ""
	}
}

func choices(v gjson.Result) []string {
	out := []string{}
	if !v.IsArray() {
		return out
	}
	v.ForEach(func(_, c gjson.Result) bool {
		out = append(out, text(c))
		return true
	})
	return out
}
