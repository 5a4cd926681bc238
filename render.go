package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/midhat81/Accent-Detection/accent"
	"github.com/midhat81/Accent-Detection/orchestrator"
)

var (
	headColor  = color.New(color.Bold)
	okColor    = color.New(color.FgGreen, color.Bold)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed, color.Bold)
	labelColor = color.New(color.FgCyan)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderResult(w io.Writer, res *orchestrator.Result) {
	if !res.Success {
		errColor.Fprintln(w, "Analysis failed")
		fmt.Fprintln(w, res.Error)
		return
	}
	okColor.Fprintln(w, "Analysis complete")
	headColor.Fprintln(w, "Detected Accent")
	accentColor := labelColor
	if res.Accent == accent.Uncertain {
		accentColor = warnColor
	}
	fmt.Fprintf(w, "%s with confidence %d%%\n", accentColor.Sprint(res.Accent), res.Confidence)
	fmt.Fprintln(w, res.Explanation)
	if res.Transcription != "" {
		headColor.Fprintln(w, "Transcription")
		fmt.Fprintln(w, res.Transcription)
	}
	fmt.Fprintf(w, "Words: %d\n", res.WordCount)
}

func renderProfiles(w io.Writer, profiles []accent.Profile) {
	for i, p := range profiles {
		if i > 0 {
			fmt.Fprintln(w)
		}
		labelColor.Fprintln(w, string(p.Label))
		fmt.Fprintf(w, "  keywords (%d): %s\n", accent.KeywordWeight, strings.Join(p.Keywords, ", "))
		fmt.Fprintf(w, "  variants (%d): %s\n", accent.CommonWordWeight, strings.Join(p.CommonWords, ", "))
		fmt.Fprintf(w, "  indicators:    %s\n", strings.Join(p.Indicators, ", "))
	}
}
