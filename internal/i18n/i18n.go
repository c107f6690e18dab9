// Package i18n provides localized response strings for the bot.
// Locales are matched with golang.org/x/text so that region variants
// (e.g. en_GB) resolve to the closest shipped catalog.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is used when the requested locale cannot be parsed or matched.
const DefaultLocale = "en_US"

var supportedTags = []language.Tag{
	language.MustParse("en-US"), // first tag is the fallback
}

var matcher = language.NewMatcher(supportedTags)

// Translator resolves catalog keys to localized strings.
type Translator struct {
	tag   language.Tag
	table map[string]string
}

// New creates a Translator for the given locale. Locales may use either
// underscore (en_US) or hyphen (en-US) form. Unknown locales fall back
// to the default catalog.
func New(locale string) *Translator {
	normalized := strings.ReplaceAll(locale, "_", "-")

	tag := supportedTags[0]
	if desired, err := language.Parse(normalized); err == nil {
		matched, _, confidence := matcher.Match(desired)
		if confidence > language.No {
			tag = matched
		}
	}

	table, ok := catalogs[canonicalKey(tag)]
	if !ok {
		table = catalogs[canonicalKey(supportedTags[0])]
	}

	return &Translator{tag: tag, table: table}
}

// canonicalKey maps a matched tag back to its catalog key. Matcher results
// can carry extensions, so only base and region are considered.
func canonicalKey(tag language.Tag) string {
	base, _ := tag.Base()
	region, _ := tag.Region()
	return base.String() + "-" + region.String()
}

// Locale returns the resolved locale in underscore form (e.g. en_US).
func (t *Translator) Locale() string {
	return strings.ReplaceAll(canonicalKey(t.tag), "-", "_")
}

// Get returns the localized string for key with {name} placeholders
// substituted from vars. Unknown keys return the key itself so a missing
// catalog entry is visible in conversation logs instead of silently empty.
func (t *Translator) Get(key string, vars map[string]string) string {
	s, ok := t.table[key]
	if !ok {
		return key
	}
	if len(vars) == 0 {
		return s
	}

	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// T returns the localized string for key without substitution.
func (t *Translator) T(key string) string {
	return t.Get(key, nil)
}
