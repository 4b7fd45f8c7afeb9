package lexical

import (
	"math"

	"github.com/jdkato/prose/summarize"
)

// readability holds the indices computed for one text.
type readability struct {
	ease float64
	fog  float64
}

// assess runs the summarize readability assessment. Text without words
// scores 0 on both indices.
func assess(text string) readability {
	if WordCount(text) == 0 {
		return readability{}
	}
	doc := summarize.NewDocument(text)
	if doc.NumWords == 0 || doc.NumSentences == 0 {
		return readability{}
	}
	return readability{
		ease: finite(doc.FleschReadingEase()),
		fog:  finite(doc.GunningFog()),
	}
}

// FleschReadingEase scores text on the Flesch reading-ease scale.
//
// The scale nominally runs 0-100 (higher is easier) but degenerate text can
// fall outside it. Empty text scores 0.
func FleschReadingEase(text string) float64 {
	return assess(text).ease
}

// GunningFog returns the Gunning fog index, an estimate of the years of
// schooling needed to read the text. Empty text scores 0.
func GunningFog(text string) float64 {
	return assess(text).fog
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
