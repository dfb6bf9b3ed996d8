// Package locale maps the short language tags users pick ("en", "sv") to the
// full recognition locales the speech backends expect ("en-US", "sv-SE").
// The mapping is configuration, not algorithm, but it must be applied before
// a recognition stream is started — backends reject bare language tags.
package locale

import "strings"

// table holds the curated tag → locale mapping. Tags not listed here fall
// back to the "{lang}-{LANG}" rule, which is right for languages whose main
// region code equals the language code: de→de-DE needs no entry, sv→sv-SE
// does because the fallback would produce sv-SV.
var table = map[string]string{
	"en": "en-US",
	"sv": "sv-SE",
	"da": "da-DK",
	"nb": "nb-NO",
	"no": "nb-NO",
	"ja": "ja-JP",
	"ko": "ko-KR",
	"zh": "zh-CN",
	"cs": "cs-CZ",
	"el": "el-GR",
	"he": "he-IL",
	"ar": "ar-SA",
	"hi": "hi-IN",
	"uk": "uk-UA",
	"vi": "vi-VN",
}

// Resolve returns the full recognition locale for a short language tag.
// Tags already containing a region ("en-GB") pass through unchanged. Unknown
// bare tags use the "{lang}-{LANG}" fallback. overrides, when non-nil, wins
// over the built-in table.
func Resolve(tag string, overrides map[string]string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if strings.Contains(tag, "-") {
		return tag
	}

	lower := strings.ToLower(tag)
	if overrides != nil {
		if loc, ok := overrides[lower]; ok {
			return loc
		}
	}
	if loc, ok := table[lower]; ok {
		return loc
	}
	return lower + "-" + strings.ToUpper(lower)
}
