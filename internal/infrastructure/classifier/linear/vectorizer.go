package linear

import (
	"math"
	"strings"
	"unicode"
)

// vectorizer turns text into the sparse TF-IDF feature vector the model
// was trained on. It must mirror the training-side transform exactly:
// lowercase alphanumeric tokens of two or more characters, stop word
// removal, word n-grams, optional sublinear term frequency, IDF
// weighting and L2 normalisation.
type vectorizer struct {
	vocabulary  map[string]int
	idf         []float64
	ngramMin    int
	ngramMax    int
	sublinearTF bool
	stopWords   map[string]struct{}
}

func newVectorizer(art vectorizerArtifact) *vectorizer {
	stop := make(map[string]struct{}, len(art.StopWords))
	for _, w := range art.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &vectorizer{
		vocabulary:  art.Vocabulary,
		idf:         art.IDF,
		ngramMin:    art.NgramMin,
		ngramMax:    art.NgramMax,
		sublinearTF: art.SublinearTF,
		stopWords:   stop,
	}
}

// transformBatch vectorizes all texts in one call and returns one row
// per input, in input order.
func (v *vectorizer) transformBatch(texts []string) []map[int]float64 {
	rows := make([]map[int]float64, len(texts))
	for i, text := range texts {
		rows[i] = v.transform(text)
	}
	return rows
}

// transform returns the normalised feature vector as index->weight.
// An empty map means no token of the text appears in the vocabulary.
func (v *vectorizer) transform(text string) map[int]float64 {
	tokens := v.tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	tf := make(map[int]float64, len(tokens))
	for n := v.ngramMin; n <= v.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := strings.Join(tokens[i:i+n], " ")
			if idx, ok := v.vocabulary[term]; ok {
				tf[idx]++
			}
		}
	}
	if len(tf) == 0 {
		return nil
	}

	var norm float64
	for idx, count := range tf {
		if v.sublinearTF {
			count = 1 + math.Log(count)
		}
		weight := count * v.idf[idx]
		tf[idx] = weight
		norm += weight * weight
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil
	}
	for idx := range tf {
		tf[idx] /= norm
	}
	return tf
}

// tokenize lowercases and splits on non-alphanumeric runes, drops
// single-character tokens and stop words.
func (v *vectorizer) tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() >= 2 {
			token := b.String()
			if _, stop := v.stopWords[token]; !stop {
				tokens = append(tokens, token)
			}
		}
		b.Reset()
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()
	return tokens
}
