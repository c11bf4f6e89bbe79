// Package i18n provides the translation layer every user-visible string in
// amanmcp-memory passes through (SPEC_FULL.md §9 "Textual translation
// layer"). Only English ships; the fallback chain (current locale ->
// default locale -> key) is still real code so a future locale file drops
// in without any call-site change.
package i18n

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// DefaultLocale is the always-present fallback locale.
const DefaultLocale = "en"

var (
	mu      sync.RWMutex
	current = DefaultLocale
	dicts   = map[string]map[string]string{
		DefaultLocale: enDict,
	}
)

// SetLocale switches the active locale for subsequent T calls. Passing a
// locale with no registered dictionary is not an error: T falls back to
// DefaultLocale for every key, exactly as if the locale were registered but
// empty.
func SetLocale(locale string) {
	mu.Lock()
	defer mu.Unlock()
	current = locale
}

// Register installs (or replaces) the dictionary for locale. Intended for a
// future locale package to call from an init function; not used by the
// shipped English-only build.
func Register(locale string, dict map[string]string) {
	mu.Lock()
	defer mu.Unlock()
	dicts[locale] = dict
}

// T looks up key through the fallback chain current-locale -> default-locale
// -> key, substituting params by positional %s-style replacement of
// "{0}", "{1}", ... placeholders in the template.
func T(key string, params ...interface{}) string {
	mu.RLock()
	loc := current
	mu.RUnlock()

	template, ok := lookup(loc, key)
	if !ok {
		template, ok = lookup(DefaultLocale, key)
	}
	if !ok {
		template = key
	}
	return substitute(template, params)
}

func lookup(locale, key string) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	dict, ok := dicts[locale]
	if !ok {
		return "", false
	}
	v, ok := dict[key]
	return v, ok
}

func substitute(template string, params []interface{}) string {
	if len(params) == 0 {
		return template
	}
	out := template
	for i, p := range params {
		placeholder := "{" + strconv.Itoa(i) + "}"
		out = strings.ReplaceAll(out, placeholder, toString(p))
	}
	return out
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
