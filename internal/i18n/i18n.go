// Package i18n provides the translation table for FARMA conversations.
//
// Message templates and option labels are compiled into the binary. A Table
// is built once at startup and is read-only afterwards, so it can be shared by
// concurrent requests without locking.
package i18n

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// DefaultLang is the fallback language when a key or language is not found.
const DefaultLang = "en"

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Collision records two canonical options that share one localized label.
// The reverse map keeps Current (last write wins).
type Collision struct {
	Label    string
	Language string
	Previous string
	Current  string
}

// Table resolves message templates and option labels per language and maps
// localized labels back to canonical options.
type Table struct {
	messages   map[string]map[string]string
	options    map[string]map[string]string
	reverse    map[string]string
	collisions []Collision
}

// New builds a Table from the compiled-in translations.
func New() *Table {
	return NewFromData(messages, optionLabels)
}

// NewFromData builds a Table from the given message and option-label tables.
// The inputs are copied, so later changes to them do not affect the Table.
func NewFromData(msgs map[string]map[string]string, opts map[string]map[string]string) *Table {
	t := &Table{
		messages: copyNested(msgs),
		options:  copyNested(opts),
		reverse:  make(map[string]string),
	}

	// Iterate in a fixed order so last-write-wins is deterministic.
	langs := make([]string, 0, len(t.options))
	for lang := range t.options {
		if lang != DefaultLang {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)

	for _, lang := range langs {
		labels := t.options[lang]
		canonicals := make([]string, 0, len(labels))
		for canonical := range labels {
			canonicals = append(canonicals, canonical)
		}
		sort.Strings(canonicals)

		for _, canonical := range canonicals {
			key := strings.ToLower(strings.TrimSpace(labels[canonical]))
			if prev, exists := t.reverse[key]; exists && prev != canonical {
				t.collisions = append(t.collisions, Collision{Label: key, Language: lang, Previous: prev, Current: canonical})
				slog.Warn("i18n.NewFromData: localized label collision", "label", key, "language", lang, "previous", prev, "current", canonical)
			}
			t.reverse[key] = canonical
		}
	}

	slog.Debug("i18n.NewFromData: translation table built", "languages", len(t.messages), "reverseEntries", len(t.reverse), "collisions", len(t.collisions))
	return t
}

// Translate returns the localized template for key with {name} placeholders
// substituted from args. Falls back to English when lang or key is unknown,
// and to key itself when English has no entry either. If a placeholder has
// no value in args the template is returned unsubstituted.
func (t *Table) Translate(key, lang string, args map[string]any) string {
	tmpl, ok := t.messages[lang][key]
	if !ok {
		tmpl, ok = t.messages[DefaultLang][key]
		if !ok {
			return key
		}
	}
	return format(tmpl, args)
}

// TranslateOptions maps canonical options to their labels in lang.
// Options without a label (state and district names, English) pass through.
func (t *Table) TranslateOptions(options []string, lang string) []string {
	out := make([]string, len(options))
	labels := t.options[lang]
	for i, opt := range options {
		if label, ok := labels[opt]; ok {
			out[i] = label
			continue
		}
		out[i] = opt
	}
	return out
}

// NormalizeInput maps a localized option label back to its canonical token.
// The lookup is case-insensitive; unknown text is returned unchanged.
func (t *Table) NormalizeInput(raw string) string {
	if canonical, ok := t.reverse[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return canonical
	}
	return raw
}

// Collisions returns the label collisions found while building the table.
func (t *Table) Collisions() []Collision {
	return append([]Collision(nil), t.collisions...)
}

// Languages returns the languages that have message templates, sorted.
func (t *Table) Languages() []string {
	langs := make([]string, 0, len(t.messages))
	for lang := range t.messages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// OptionLanguages returns the non-default languages with option labels, sorted.
func (t *Table) OptionLanguages() []string {
	langs := make([]string, 0, len(t.options))
	for lang := range t.options {
		if lang != DefaultLang {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}

func format(tmpl string, args map[string]any) string {
	matches := placeholderPattern.FindAllStringSubmatch(tmpl, -1)
	if len(matches) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(matches)*2)
	for _, m := range matches {
		value, ok := args[m[1]]
		if !ok {
			return tmpl
		}
		pairs = append(pairs, m[0], fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func copyNested(in map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(in))
	for outer, inner := range in {
		m := make(map[string]string, len(inner))
		for k, v := range inner {
			m[k] = v
		}
		out[outer] = m
	}
	return out
}
