// Package ranking implements workspace symbol search: a parallel match filter
// followed by a closeness-and-locality sort.
package ranking

import (
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/phobologic/rustsym/internal/model"
)

// OutOfRootPenalty is added to the score of symbols outside the workspace
// root. It exceeds any possible length term, so such symbols always sort
// after in-root ones.
const OutOfRootPenalty = 9999

// Matches reports whether sym matches query: its name starts with or contains
// the raw query, or its lowercased name contains queryLower.
func Matches(sym *model.Symbol, query, queryLower string) bool {
	return strings.HasPrefix(sym.Name, query) ||
		strings.Contains(sym.Name, query) ||
		strings.Contains(sym.NameLower, queryLower)
}

// Filter returns the records matching query, preserving record order.
// An empty query matches everything. Records are split into contiguous chunks
// evaluated by up to workers goroutines (GOMAXPROCS if workers <= 0).
func Filter(records []model.Symbol, query string, workers int) []model.Symbol {
	if query == "" {
		return append([]model.Symbol(nil), records...)
	}
	if len(records) == 0 {
		return nil
	}

	queryLower := strings.ToLower(query)

	numWorkers := workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(records) {
		numWorkers = len(records)
	}
	chunkSize := (len(records) + numWorkers - 1) / numWorkers

	type chunk struct {
		index      int
		start, end int
	}

	work := make(chan chunk, numWorkers)
	matched := make([][]model.Symbol, numWorkers)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range work {
				var out []model.Symbol
				for i := c.start; i < c.end; i++ {
					if Matches(&records[i], query, queryLower) {
						out = append(out, records[i])
					}
				}
				matched[c.index] = out
			}
		}()
	}

	for i := range numWorkers {
		start := i * chunkSize
		end := min(start+chunkSize, len(records))
		if start > end {
			start = end
		}
		work <- chunk{index: i, start: start, end: end}
	}
	close(work)
	wg.Wait()

	// Merge in chunk order so ties later break by record order.
	var results []model.Symbol
	for _, out := range matched {
		results = append(results, out...)
	}
	return results
}

// Score ranks sym against query: lower is better. Symbols outside root get
// OutOfRootPenalty; the remainder is how much longer the name is than the
// query, a cheap closeness proxy.
func Score(sym *model.Symbol, query, root string) int {
	score := 0
	if !InRoot(sym.Location.File, root) {
		score += OutOfRootPenalty
	}
	score += max(0, len(sym.Name)-len(query))
	return score
}

// Sort stable-sorts results by ascending Score.
func Sort(results []model.Symbol, query, root string) {
	scores := make([]int, len(results))
	order := make([]int, len(results))
	for i := range results {
		scores[i] = Score(&results[i], query, root)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	sorted := make([]model.Symbol, len(results))
	for i, j := range order {
		sorted[i] = results[j]
	}
	copy(results, sorted)
}

// Search filters records by query and, for a non-empty query, ranks them.
// Results are never capped.
func Search(records []model.Symbol, query, root string, workers int) []model.Symbol {
	results := Filter(records, query, workers)
	if query != "" {
		Sort(results, query, root)
	}
	return results
}

// InRoot reports whether file lies under root, comparing whole path components.
func InRoot(file, root string) bool {
	if root == "" {
		return false
	}
	file = filepath.Clean(file)
	root = filepath.Clean(root)
	if file == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(file, root)
}

// Limit returns at most n results. If n is <= 0 or >= len(results), results
// is returned unchanged.
func Limit(results []model.Symbol, n int) []model.Symbol {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}
