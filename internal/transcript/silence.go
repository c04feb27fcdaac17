package transcript

import "sort"

// DefaultSilenceThreshold is the minimum gap, in seconds, that becomes a
// silent slot.
const DefaultSilenceThreshold = 3.0

// Coaching feedback per silence duration bucket.
const (
	FeedbackLongSilence   = "That was a long pause. Try narrating what your child is doing to stay connected."
	FeedbackMediumSilence = "A quiet stretch here. A labeled praise can restart the back-and-forth."
	FeedbackShortSilence  = "Brief pause. Silence is fine, but an echo keeps your child talking."
)

// InsertSilences scans a chronologically sorted segment list for gaps of at
// least threshold seconds — before the first segment, between segments, and
// after the last one when recordingDuration is known (pass 0 when it is not) —
// and inserts one silent slot spanning each gap. The merged timeline is
// re-sorted by start time and re-numbered densely from 0. Running it again on
// its own output adds nothing: every former gap is filled by a slot, so no
// remaining gap reaches the threshold.
func InsertSilences(segments []Segment, threshold float64, recordingDuration float64) []Segment {
	if threshold <= 0 {
		threshold = DefaultSilenceThreshold
	}

	merged := make([]Segment, 0, len(segments)+4)
	merged = append(merged, segments...)

	if len(segments) > 0 {
		if first := segments[0]; first.Start >= threshold {
			merged = append(merged, silentSlot(0, first.Start))
		}
		for i := 0; i < len(segments)-1; i++ {
			cur, next := segments[i], segments[i+1]
			if next.Start-cur.End >= threshold {
				merged = append(merged, silentSlot(cur.End, next.Start))
			}
		}
		if last := segments[len(segments)-1]; recordingDuration > 0 && recordingDuration-last.End >= threshold {
			merged = append(merged, silentSlot(last.End, recordingDuration))
		}
	} else if recordingDuration >= threshold {
		merged = append(merged, silentSlot(0, recordingDuration))
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Start < merged[j].Start })
	for i := range merged {
		merged[i].Order = i
	}
	return merged
}

func silentSlot(start, end float64) Segment {
	return Segment{
		SpeakerID: SilentSpeakerID,
		Start:     start,
		End:       end,
		Feedback:  silenceFeedback(end - start),
	}
}

func silenceFeedback(duration float64) string {
	switch {
	case duration >= 10:
		return FeedbackLongSilence
	case duration >= 5:
		return FeedbackMediumSilence
	default:
		return FeedbackShortSilence
	}
}
