package speech

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// DetectLanguage guesses the ISO 639-1 language of text. It reports false
// when the guess is unreliable.
func DetectLanguage(text string) (string, bool) {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "", false
	}

	code := info.Lang.Iso6391()
	if code == "" {
		return "", false
	}
	return code, true
}

// MatchVoice returns the first voice speaking lang. lang may be a bare
// language ("en") or a regional tag ("en-GB", "en_GB").
func MatchVoice(voices []Voice, lang string) (Voice, bool) {
	lang = normalizeTag(lang)
	if lang == "" {
		return Voice{}, false
	}

	base, _, _ := strings.Cut(lang, "-")
	var fallback *Voice
	for i, v := range voices {
		tag := normalizeTag(v.Language)
		if tag == lang {
			return v, true
		}
		if fallback == nil {
			if vbase, _, _ := strings.Cut(tag, "-"); vbase == base {
				fallback = &voices[i]
			}
		}
	}

	if fallback != nil {
		return *fallback, true
	}
	return Voice{}, false
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}
