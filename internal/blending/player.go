package blending

// Playback is one in-flight audio clip. Done is closed when the clip
// finishes on its own; Stop halts it immediately and releases the resource.
// Stop must be safe to call more than once.
type Playback interface {
	Done() <-chan struct{}
	Stop()
}

// Player abstracts the audio backend. Implementations own fetching and
// decoding; the controller only sequences and cancels clips.
type Player interface {
	PlayPhoneme(phoneme string) (Playback, error)
	PlayWord(word string) (Playback, error)
}

// Word pairs a whole word with its phoneme split
type Word struct {
	Word     string   `json:"word"`
	Phonemes []string `json:"phonemes"`
}
