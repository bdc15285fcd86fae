package nlp

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var termPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// ExtractKeywords fits a TF-IDF vocabulary over texts and returns at most n
// terms. As with a max-features cap, the vocabulary is cut by total term
// frequency across the corpus; ties prefer the rarer term, then sort
// alphabetically. Stop words and
// single-character tokens never qualify.
func ExtractKeywords(texts []string, n int) []string {
	if n <= 0 {
		return nil
	}
	weights := tfidf(texts)
	if len(weights) == 0 {
		return nil
	}

	terms := make([]string, 0, len(weights))
	for term := range weights {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		a, b := weights[terms[i]], weights[terms[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		if a.idf != b.idf {
			return a.idf > b.idf
		}
		return terms[i] < terms[j]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

type termStat struct {
	count int
	df    int
	idf   float64
}

// tfidf returns corpus statistics per term with smoothed idf.
func tfidf(texts []string) map[string]*termStat {
	stats := make(map[string]*termStat)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, term := range termPattern.FindAllString(strings.ToLower(text), -1) {
			if _, stop := englishStopWords[term]; stop {
				continue
			}
			st, ok := stats[term]
			if !ok {
				st = &termStat{}
				stats[term] = st
			}
			st.count++
			if _, dup := seen[term]; !dup {
				seen[term] = struct{}{}
				st.df++
			}
		}
	}
	docs := float64(len(texts))
	for _, st := range stats {
		st.idf = math.Log((1+docs)/(1+float64(st.df))) + 1
	}
	return stats
}
