package taste

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "into": {}, "you": {},
	"your": {}, "are": {}, "was": {}, "but": {}, "not": {}, "this": {}, "that": {},
	"feat": {}, "featuring": {}, "official": {}, "video": {}, "audio": {}, "lyrics": {},
	"lyric": {}, "music": {}, "version": {}, "remastered": {}, "remaster": {}, "edit": {},
	"radio": {}, "explicit": {}, "clean": {}, "live": {}, "mix": {}, "remix": {},
	"original": {}, "visualizer": {}, "full": {}, "album": {}, "song": {},
}

// Keywords extracts up to 10 lowercase words from a track name, dropping
// punctuation, stop words, numbers and words shorter than three letters.
func Keywords(name string) []string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	words = lo.FilterMap(words, func(w string, _ int) (string, bool) {
		w = strings.Trim(w, "'")
		if len([]rune(w)) < 3 || isNumber(w) {
			return "", false
		}
		_, stop := stopWords[w]
		return w, !stop
	})
	return lo.Slice(lo.Uniq(words), 0, maxKeywords)
}

func isNumber(w string) bool {
	return strings.IndexFunc(w, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}
