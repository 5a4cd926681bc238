// Package accent assigns a coarse accent label to transcribed speech by
// matching surface vocabulary against a fixed table of accent profiles.
//
// Matching is plain substring containment on the already lower-cased
// transcript. There is no tokenisation and no word-boundary check, so "ask"
// also matches inside "mask".
package accent

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MinConfidence is the lowest winning score reported with a label.
	MinConfidence = 25
	// MaxConfidence caps the reported confidence.
	MaxConfidence = 100

	lengthBonusMinWords = 20
	lengthBonusDivisor  = 5
	lengthBonusCap      = 20
	explanationFeatures = 3
)

const (
	ExplanationNoSpeech      = "No valid speech"
	ExplanationLowConfidence = "Low confidence detection"
)

// ScoreResult is the outcome of scoring one profile.
type ScoreResult struct {
	Label           Label    `json:"label"`
	Score           int      `json:"score"`
	MatchedFeatures []string `json:"matched_features"`
}

// Classification is the final verdict for a transcript.
type Classification struct {
	Label       Label  `json:"label"`
	Confidence  int    `json:"confidence"`
	Explanation string `json:"explanation"`
}

// Scorer holds an immutable profile table. A Scorer is safe for concurrent
// use.
type Scorer struct {
	profiles []Profile
}

// NewScorer returns a Scorer over the built-in profiles.
func NewScorer() *Scorer {
	return &Scorer{profiles: cloneProfiles(defaultProfiles)}
}

// NewScorerWithProfiles returns a Scorer over a custom table. Labels must be
// unique, non-empty and must not collide with Uncertain.
func NewScorerWithProfiles(profiles []Profile) (*Scorer, error) {
	if len(profiles) == 0 {
		return nil, errors.New("accent: no profiles")
	}
	seen := make(map[Label]struct{}, len(profiles))
	for _, p := range profiles {
		if p.Label == "" {
			return nil, errors.New("accent: profile with empty label")
		}
		if p.Label == Uncertain {
			return nil, fmt.Errorf("accent: profile label %q is reserved", p.Label)
		}
		if _, dup := seen[p.Label]; dup {
			return nil, fmt.Errorf("accent: duplicate profile %q", p.Label)
		}
		seen[p.Label] = struct{}{}
	}
	return &Scorer{profiles: cloneProfiles(profiles)}, nil
}

// Profiles returns a copy of the scorer's table in declaration order.
func (s *Scorer) Profiles() []Profile {
	return cloneProfiles(s.profiles)
}

// WordCount is the number of whitespace-delimited tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// LengthBonus is added to every profile's score. It is zero up to 20 words,
// then words/5 capped at 20.
func LengthBonus(wordCount int) int {
	if wordCount <= lengthBonusMinWords {
		return 0
	}
	return min(wordCount/lengthBonusDivisor, lengthBonusCap)
}

// Score scores text against every profile.
func (s *Scorer) Score(text string) map[Label]ScoreResult {
	ranked := s.Ranked(text)
	out := make(map[Label]ScoreResult, len(ranked))
	for _, r := range ranked {
		out[r.Label] = r
	}
	return out
}

// Ranked is Score with results kept in profile declaration order.
func (s *Scorer) Ranked(text string) []ScoreResult {
	bonus := LengthBonus(WordCount(text))
	out := make([]ScoreResult, 0, len(s.profiles))
	for _, p := range s.profiles {
		r := ScoreResult{Label: p.Label, MatchedFeatures: []string{}}
		for _, k := range p.Keywords {
			if strings.Contains(text, k) {
				r.Score += KeywordWeight
				r.MatchedFeatures = append(r.MatchedFeatures, "keyword: "+k)
			}
		}
		for _, w := range p.CommonWords {
			if strings.Contains(text, w) {
				r.Score += CommonWordWeight
				r.MatchedFeatures = append(r.MatchedFeatures, "variant: "+w)
			}
		}
		r.Score += bonus
		out = append(out, r)
	}
	return out
}

// Classify picks the best scoring profile for text. Ties go to the profile
// declared first. A winner below MinConfidence is reported as Uncertain but
// keeps its confidence.
func (s *Scorer) Classify(text string) Classification {
	if strings.TrimSpace(text) == "" {
		return Classification{Label: Uncertain, Confidence: 0, Explanation: ExplanationNoSpeech}
	}

	ranked := s.Ranked(text)
	best := 0
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[best].Score {
			best = i
		}
	}
	win := ranked[best]

	confidence := min(win.Score, MaxConfidence)
	if confidence < MinConfidence {
		return Classification{Label: Uncertain, Confidence: confidence, Explanation: ExplanationLowConfidence}
	}

	features := win.MatchedFeatures
	if len(features) > explanationFeatures {
		features = features[:explanationFeatures]
	}
	return Classification{
		Label:       win.Label,
		Confidence:  confidence,
		Explanation: "Features: " + strings.Join(features, ", "),
	}
}
