package content

// Static learning content served to the frontend. The letter set, blend
// words and pair categories are fixed; mastery percentages elsewhere are
// computed against these counts.

// Letter is a single flashcard entry
type Letter struct {
	Letter string `json:"letter"`
	Sound  string `json:"sound"`
	Word   string `json:"word"`
}

// BlendWord is a word broken into playable phoneme segments
type BlendWord struct {
	Word     string   `json:"word"`
	Phonemes []string `json:"phonemes"`
}

// PairCategory is a minimal-pair sorting exercise: two contrasting sounds
// and words belonging to each
type PairCategory struct {
	Category string     `json:"category"`
	SoundA   string     `json:"soundA"`
	SoundB   string     `json:"soundB"`
	Pairs    []WordPair `json:"pairs"`
}

// WordPair holds one word for each contrasting sound
type WordPair struct {
	WordA string `json:"wordA"`
	WordB string `json:"wordB"`
}

// Letters returns the 26 flashcard letters with their sounds and example words
func Letters() []Letter {
	return []Letter{
		{Letter: "a", Sound: "ah", Word: "apple"},
		{Letter: "b", Sound: "buh", Word: "ball"},
		{Letter: "c", Sound: "kuh", Word: "cat"},
		{Letter: "d", Sound: "duh", Word: "dog"},
		{Letter: "e", Sound: "eh", Word: "egg"},
		{Letter: "f", Sound: "fff", Word: "fish"},
		{Letter: "g", Sound: "guh", Word: "goat"},
		{Letter: "h", Sound: "huh", Word: "hat"},
		{Letter: "i", Sound: "ih", Word: "igloo"},
		{Letter: "j", Sound: "juh", Word: "jam"},
		{Letter: "k", Sound: "kuh", Word: "kite"},
		{Letter: "l", Sound: "lll", Word: "leaf"},
		{Letter: "m", Sound: "mmm", Word: "moon"},
		{Letter: "n", Sound: "nnn", Word: "nest"},
		{Letter: "o", Sound: "oh", Word: "octopus"},
		{Letter: "p", Sound: "puh", Word: "pig"},
		{Letter: "q", Sound: "kwuh", Word: "queen"},
		{Letter: "r", Sound: "rrr", Word: "rain"},
		{Letter: "s", Sound: "sss", Word: "sun"},
		{Letter: "t", Sound: "tuh", Word: "tree"},
		{Letter: "u", Sound: "uh", Word: "umbrella"},
		{Letter: "v", Sound: "vvv", Word: "van"},
		{Letter: "w", Sound: "wuh", Word: "web"},
		{Letter: "x", Sound: "ks", Word: "box"},
		{Letter: "y", Sound: "yuh", Word: "yoyo"},
		{Letter: "z", Sound: "zzz", Word: "zebra"},
	}
}

// BlendWords returns the CVC words used by the sound-it-out blender
func BlendWords() []BlendWord {
	return []BlendWord{
		{Word: "fit", Phonemes: []string{"f", "i", "t"}},
		{Word: "cat", Phonemes: []string{"c", "a", "t"}},
		{Word: "dog", Phonemes: []string{"d", "o", "g"}},
		{Word: "hop", Phonemes: []string{"h", "o", "p"}},
	}
}

// PairCategories returns the four minimal-pair sorting categories
func PairCategories() []PairCategory {
	return []PairCategory{
		{
			Category: "/p/ vs /b/",
			SoundA:   "p",
			SoundB:   "b",
			Pairs: []WordPair{
				{WordA: "pat", WordB: "bat"},
				{WordA: "pin", WordB: "bin"},
				{WordA: "pig", WordB: "big"},
				{WordA: "pack", WordB: "back"},
			},
		},
		{
			Category: "/t/ vs /d/",
			SoundA:   "t",
			SoundB:   "d",
			Pairs: []WordPair{
				{WordA: "tip", WordB: "dip"},
				{WordA: "ten", WordB: "den"},
				{WordA: "toe", WordB: "doe"},
				{WordA: "tot", WordB: "dot"},
			},
		},
		{
			Category: "/k/ vs /g/",
			SoundA:   "k",
			SoundB:   "g",
			Pairs: []WordPair{
				{WordA: "cap", WordB: "gap"},
				{WordA: "coat", WordB: "goat"},
				{WordA: "curl", WordB: "girl"},
				{WordA: "cold", WordB: "gold"},
			},
		},
		{
			Category: "/f/ vs /v/",
			SoundA:   "f",
			SoundB:   "v",
			Pairs: []WordPair{
				{WordA: "fan", WordB: "van"},
				{WordA: "fat", WordB: "vat"},
				{WordA: "fine", WordB: "vine"},
				{WordA: "fast", WordB: "vast"},
			},
		},
	}
}
