// Package i18n holds the static dictionaries used to talk to farmers in their language.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Lang is a supported language code (ISO 639-1 base).
type Lang string

const (
	English  Lang = "en"
	Hindi    Lang = "hi"
	Telugu   Lang = "te"
	Tamil    Lang = "ta"
	Bengali  Lang = "bn"
	Marathi  Lang = "mr"
	Gujarati Lang = "gu"
	Punjabi  Lang = "pa"
)

// Default is used whenever a code or a key is not covered.
const Default = English

type LanguageInfo struct {
	Code Lang   `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Languages are the codes a user can select; not all of them have dictionaries.
var Languages = []LanguageInfo{
	{English, "English", "🇺🇸"},
	{Hindi, "Hindi", "🇮🇳"},
	{Telugu, "Telugu", "🇮🇳"},
	{Tamil, "Tamil", "🇮🇳"},
	{Bengali, "Bengali", "🇧🇩"},
	{Marathi, "Marathi", "🇮🇳"},
	{Gujarati, "Gujarati", "🇮🇳"},
	{Punjabi, "Punjabi", "🇮🇳"},
}

// ParseLang accepts a BCP-47 style code ("hi", "hi-IN", "ta_IN", "TE") and
// reports whether its base language is selectable.
func ParseLang(code string) (Lang, bool) {
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if code == "" {
		return "", false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	l := Lang(base.String())
	for _, info := range Languages {
		if info.Code == l {
			return l, true
		}
	}
	return "", false
}

// Resolve never fails: unknown codes become Default.
func Resolve(code string) Lang {
	if l, ok := ParseLang(code); ok {
		return l
	}
	return Default
}

// SpeechLocale is the voice locale used to read text in l.
func SpeechLocale(l Lang) string {
	return string(l) + "-IN"
}

type dict map[Lang]map[string]string

// lookup returns the entry for key in l, or the Default entry, and the language it came from.
func (d dict) lookup(l Lang, key string) (string, Lang) {
	if m, ok := d[l]; ok {
		if s, ok := m[key]; ok && s != "" {
			return s, l
		}
	}
	return d[Default][key], Default
}
