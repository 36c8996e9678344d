package eval

import (
	"strings"
	"unicode"
)

// RougeScore holds precision, recall and F1 for one ROUGE variant.
type RougeScore struct {
	Precision float64
	Recall    float64
	F1        float64
}

// ComputeRouge scores a generated output against a reference text with
// ROUGE-1, ROUGE-2 and ROUGE-L. Tokenization is lowercase alphanumeric
// words; no stemming.
func ComputeRouge(output, reference string) map[string]RougeScore {
	outTokens := tokenize(output)
	refTokens := tokenize(reference)

	return map[string]RougeScore{
		"rouge1": rougeN(outTokens, refTokens, 1),
		"rouge2": rougeN(outTokens, refTokens, 2),
		"rougeL": rougeL(outTokens, refTokens),
	}
}

// rougeN computes n-gram overlap with clipped counts.
func rougeN(out, ref []string, n int) RougeScore {
	outGrams := ngramCounts(out, n)
	refGrams := ngramCounts(ref, n)
	if len(outGrams) == 0 || len(refGrams) == 0 {
		return RougeScore{}
	}

	var overlap, outTotal, refTotal int
	for gram, c := range outGrams {
		outTotal += c
		if rc, ok := refGrams[gram]; ok {
			if c < rc {
				overlap += c
			} else {
				overlap += rc
			}
		}
	}
	for _, c := range refGrams {
		refTotal += c
	}

	return score(overlap, outTotal, refTotal)
}

// rougeL scores on the longest common subsequence of the token streams.
func rougeL(out, ref []string) RougeScore {
	if len(out) == 0 || len(ref) == 0 {
		return RougeScore{}
	}
	lcs := lcsLength(out, ref)
	return score(lcs, len(out), len(ref))
}

func score(match, outTotal, refTotal int) RougeScore {
	if match == 0 || outTotal == 0 || refTotal == 0 {
		return RougeScore{}
	}
	p := float64(match) / float64(outTotal)
	r := float64(match) / float64(refTotal)
	return RougeScore{
		Precision: p,
		Recall:    r,
		F1:        2 * p * r / (p + r),
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}
	return counts
}

// lcsLength uses the classic two-row dynamic program.
func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
