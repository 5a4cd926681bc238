package accent

// Label names an accent profile. Uncertain is the catch-all result label and
// never names a profile.
type Label string

const (
	American   Label = "American"
	British    Label = "British"
	Australian Label = "Australian"
	Canadian   Label = "Canadian"
	Uncertain  Label = "Uncertain"
)

// Match weights.
const (
	KeywordWeight    = 15
	CommonWordWeight = 10
)

// Profile is a named bundle of lexical cues. Indicators are descriptive only
// and take no part in scoring.
type Profile struct {
	Label       Label    `json:"label" yaml:"label"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	CommonWords []string `json:"common_words" yaml:"common_words"`
	Indicators  []string `json:"indicators" yaml:"indicators"`
}

// declaration order is the tie-break order
var defaultProfiles = []Profile{
	{
		Label:       American,
		Keywords:    []string{"really", "water", "better", "letter", "butter", "car", "hard", "start"},
		CommonWords: []string{"dance", "can't", "ask", "answer"},
		Indicators:  []string{"rhotic r", "flat a", "dropped t"},
	},
	{
		Label:       British,
		Keywords:    []string{"bath", "dance", "ask", "class", "half", "rather", "after"},
		CommonWords: []string{"water", "better", "matter", "butter"},
		Indicators:  []string{"non-rhotic", "broad a", "received pronunciation"},
	},
	{
		Label:       Australian,
		Keywords:    []string{"day", "mate", "today", "place", "face", "way", "say"},
		CommonWords: []string{"no", "go", "so", "know"},
		Indicators:  []string{"rising intonation", "diphthong variation"},
	},
	{
		Label:       Canadian,
		Keywords:    []string{"about", "house", "out", "now", "how", "south"},
		CommonWords: []string{"sorry", "process", "been"},
		Indicators:  []string{"canadian raising", "eh marker"},
	},
}

// DefaultProfiles returns a copy of the built-in profile table in
// declaration order.
func DefaultProfiles() []Profile {
	return cloneProfiles(defaultProfiles)
}

func cloneProfiles(in []Profile) []Profile {
	out := make([]Profile, len(in))
	for i, p := range in {
		out[i] = Profile{
			Label:       p.Label,
			Keywords:    append([]string(nil), p.Keywords...),
			CommonWords: append([]string(nil), p.CommonWords...),
			Indicators:  append([]string(nil), p.Indicators...),
		}
	}
	return out
}
