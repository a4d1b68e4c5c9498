package core

import (
	"sort"

	"golang.org/x/text/unicode/norm"

	"sigil/internal/names"
)

// FuzzyResult is one near-miss candidate from FindMemberFuzzy.
type FuzzyResult struct {
	Symbol   SymbolRef
	Name     names.Ref
	Distance int
}

// FindMemberFuzzy returns members transitively reachable from sym whose
// names are close to name, every result strictly better than betterThan
// (pass -1 for the default bound: a distance of at most half the name's
// byte length plus one, and at least 2). The identifier and constant name spaces are
// partitioned and searched independently; results are sorted by distance,
// then name, for determinism.
func (gs *GlobalState) FindMemberFuzzy(sym SymbolRef, name names.Ref, betterThan int) []FuzzyResult {
	if gs.Names.Kind(name) != names.UTF8 {
		return nil
	}
	wantConstant := gs.Names.IsConstant(name)
	target := norm.NFC.String(gs.Names.Value(name))
	if target == "" {
		return nil
	}

	best := betterThan
	if best < 0 {
		// Generous default: nobody wants corrections further than half the
		// identifier away.
		best = len(target)/2 + 1
		if best < 2 {
			best = 2
		}
	}

	var results []FuzzyResult
	seen := make(map[names.Ref]bool)
	for _, ancestor := range gs.Linearization(sym) {
		for memberName, memberSym := range gs.Symbol(ancestor).Members {
			if seen[memberName] {
				continue
			}
			seen[memberName] = true
			if gs.Names.Kind(memberName) != names.UTF8 {
				continue
			}
			if memberName == names.AttachedClass {
				continue
			}
			if gs.Names.IsConstant(memberName) != wantConstant {
				continue
			}
			candidate := norm.NFC.String(gs.Names.Value(memberName))
			d := editDistance(target, candidate, best)
			if d < 0 || d > best {
				continue
			}
			if betterThan >= 0 && d >= betterThan {
				continue
			}
			results = append(results, FuzzyResult{Symbol: memberSym, Name: memberName, Distance: d})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return gs.Names.Value(results[i].Name) < gs.Names.Value(results[j].Name)
	})
	return results
}

// editDistance is the optimal-string-alignment Damerau-Levenshtein
// distance with an early cutoff: once every entry of a row exceeds the
// bound, -1 is returned.
func editDistance(a, b string, bound int) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if bound >= 0 && diff > bound {
		return -1
	}

	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			m := prev[j] + 1 // deletion
			if v := cur[j-1] + 1; v < m { // insertion
				m = v
			}
			if v := prev[j-1] + cost; v < m { // substitution
				m = v
			}
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if v := prev2[j-2] + 1; v < m { // transposition
					m = v
				}
			}
			cur[j] = m
			if m < rowMin {
				rowMin = m
			}
		}
		if bound >= 0 && rowMin > bound {
			return -1
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[lb]
}
