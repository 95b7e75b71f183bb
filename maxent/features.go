package maxent

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Template extracts one feature value from a History. Left and Right are how
// far the template looks at neighbouring tags; a template with no tag reach is
// local and its value depends on the words only.
type Template struct {
	Name        string
	Left, Right int
	Extract     func(h *History) string
}

// Local reports whether the template ignores tags.
func (t Template) Local() bool {
	return t.Left == 0 && t.Right == 0
}

// Feature returns the feature string the template fires for h.
func (t Template) Feature(h *History) string {
	return t.Name + ":" + t.Extract(h)
}

func word(offset int) func(*History) string {
	return func(h *History) string { return h.Word(offset) }
}

func tag(offset int) func(*History) string {
	return func(h *History) string { return h.Tag(offset) }
}

func suffix(n int) func(*History) string {
	return func(h *History) string {
		r := []rune(h.Word(0))
		if len(r) <= n {
			return string(r)
		}
		return string(r[len(r)-n:])
	}
}

func prefix(n int) func(*History) string {
	return func(h *History) string {
		r := []rune(h.Word(0))
		if len(r) <= n {
			return string(r)
		}
		return string(r[:n])
	}
}

// shape maps letters to X/x, digits to d, and collapses repeats: "McCain-3" -> "XxXx-d".
func shape(h *History) string {
	var sb strings.Builder
	var last rune
	for _, r := range h.Word(0) {
		var c rune
		switch {
		case unicode.IsUpper(r):
			c = 'X'
		case unicode.IsLetter(r):
			c = 'x'
		case unicode.IsDigit(r):
			c = 'd'
		default:
			c = r
		}
		if c != last {
			sb.WriteRune(c)
			last = c
		}
	}
	return sb.String()
}

var builtins = map[string]Template{
	"w0":     {Name: "w0", Extract: word(0)},
	"w-1":    {Name: "w-1", Extract: word(-1)},
	"w+1":    {Name: "w+1", Extract: word(1)},
	"w-2":    {Name: "w-2", Extract: word(-2)},
	"w+2":    {Name: "w+2", Extract: word(2)},
	"t-1":    {Name: "t-1", Left: 1, Extract: tag(-1)},
	"t-2":    {Name: "t-2", Left: 2, Extract: tag(-2)},
	"t+1":    {Name: "t+1", Right: 1, Extract: tag(1)},
	"t-2t-1": {Name: "t-2t-1", Left: 2, Extract: func(h *History) string { return h.Tag(-2) + "|" + h.Tag(-1) }},
	"t+1t+2": {Name: "t+1t+2", Right: 2, Extract: func(h *History) string { return h.Tag(1) + "|" + h.Tag(2) }},
	"t-1t+1": {Name: "t-1t+1", Left: 1, Right: 1, Extract: func(h *History) string { return h.Tag(-1) + "|" + h.Tag(1) }},
	"w0t-1":  {Name: "w0t-1", Left: 1, Extract: func(h *History) string { return h.Word(0) + "|" + h.Tag(-1) }},
	"suf1":   {Name: "suf1", Extract: suffix(1)},
	"suf2":   {Name: "suf2", Extract: suffix(2)},
	"suf3":   {Name: "suf3", Extract: suffix(3)},
	"suf4":   {Name: "suf4", Extract: suffix(4)},
	"pre1":   {Name: "pre1", Extract: prefix(1)},
	"pre2":   {Name: "pre2", Extract: prefix(2)},
	"pre3":   {Name: "pre3", Extract: prefix(3)},
	"shape":  {Name: "shape", Extract: shape},
}

// DefaultArch is a left-two-tags architecture over a five word window.
var DefaultArch = []string{"w0", "w-1", "w+1", "w-2", "w+2", "t-1", "t-2t-1", "w0t-1"}

// DefaultRareArch adds spelling features for rare and unknown words.
var DefaultRareArch = []string{"suf1", "suf2", "suf3", "suf4", "pre1", "pre2", "pre3", "shape"}

// LookupTemplates resolves template names.
func LookupTemplates(names []string) ([]Template, error) {
	templates := make([]Template, 0, len(names))
	for _, name := range names {
		t, ok := builtins[name]
		if !ok {
			return nil, errors.Errorf("unknown feature template %q", name)
		}
		templates = append(templates, t)
	}
	return templates, nil
}
