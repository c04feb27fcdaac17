package transcript

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// soundEffectPattern strips non-linguistic annotations the vendor interleaves
// with speech, e.g. "(laughs)" or "(door slams)".
var soundEffectPattern = regexp.MustCompile(`\([^()]*\)`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// sentenceEnders covers the punctuation alphabets the product sees in family
// recordings: Latin, CJK, Arabic/Urdu, Devanagari, plus ellipsis.
var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true,
	'؟': true, '۔': true,
	'।': true,
	'…': true,
}

// Normalize converts a vendor diarized word list into ordered utterance
// segments. Boundaries fall on speaker change or sentence-ending punctuation;
// text is cleaned of sound-effect annotations and collapsed whitespace, and
// segments that clean down to nothing are dropped. Empty input yields an
// empty (non-nil) slice. Single pass over the words.
func Normalize(res VendorResult) []Segment {
	segments := []Segment{}
	if len(res.Words) == 0 {
		return segments
	}

	words := make([]Word, len(res.Words))
	copy(words, res.Words)
	sort.SliceStable(words, func(i, j int) bool { return words[i].Start < words[j].Start })

	speakerIDs := map[int]string{}
	speakerID := func(tag int) string {
		if id, ok := speakerIDs[tag]; ok {
			return id
		}
		id := fmt.Sprintf("speaker_%d", len(speakerIDs))
		speakerIDs[tag] = id
		return id
	}

	var (
		parts      []string
		curSpeaker int
		start, end float64
		open       bool
	)

	flush := func() {
		if !open {
			return
		}
		text := cleanText(strings.Join(parts, " "))
		if text != "" {
			segments = append(segments, Segment{
				SpeakerID: speakerID(curSpeaker),
				Text:      text,
				Start:     start,
				End:       end,
				Order:     len(segments),
			})
		}
		parts = parts[:0]
		open = false
	}

	for _, w := range words {
		if open && w.SpeakerTag != curSpeaker {
			flush()
		}
		if !open {
			curSpeaker = w.SpeakerTag
			start = w.Start
			open = true
		}
		parts = append(parts, w.Text)
		end = w.End
		if endsSentence(w.Text) {
			flush()
		}
	}
	flush()

	return segments
}

func cleanText(text string) string {
	text = soundEffectPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func endsSentence(token string) bool {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return false
	}
	runes := []rune(trimmed)
	return sentenceEnders[runes[len(runes)-1]]
}
