package transcript

// Word is one diarized token from the transcription vendor, already converted
// to provider-agnostic units (seconds).
type Word struct {
	Text       string  `json:"text"`
	SpeakerTag int     `json:"speaker_tag"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
}

// VendorResult is the provider-agnostic shape of a completed diarized
// transcription. DurationSeconds is 0 when the vendor did not report a total
// recording length.
type VendorResult struct {
	Words           []Word  `json:"words"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Segment is one entry of the session timeline before persistence: either a
// spoken utterance draft or a synthetic silent slot.
type Segment struct {
	SpeakerID string
	Text      string
	Start     float64
	End       float64
	Order     int

	// Feedback is set on silent slots only.
	Feedback string
}

// SilentSpeakerID marks synthetic gap segments. Matches the reserved speaker
// id on persisted utterances.
const SilentSpeakerID = "silence"

func (s Segment) IsSilent() bool { return s.SpeakerID == SilentSpeakerID }
