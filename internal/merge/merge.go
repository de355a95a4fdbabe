// Package merge implements the ordered merge of spec.md §4.4: findings
// from all scanners, for one window step, interleaved by byte offset
// with scanner-id tie-breaking, while keeping continuation chains
// (force-split pieces) glued together and in original order.
package merge

import "sort"

import "github.com/rclone/stringsext/internal/finding"

// chain is one run of findings from a single scanner where every
// element after the first has ContinuesPrevious set - spec.md §4.4:
// "a record with continues_previous = true is emitted immediately
// after its predecessor from the same scanner, regardless of offsets
// from other scanners."
type chain struct {
	offset    int64
	scannerID int
	records   []finding.Finding
}

// Step merges the per-scanner finding lists produced by one window
// step into the single ordered stream spec.md §4.4 and §8 invariant 3
// require. perScanner[i] must already be in non-decreasing byte_offset
// order (guaranteed by scanner.Scanner.Step).
func Step(perScanner [][]finding.Finding) []finding.Finding {
	var chains []chain
	for _, list := range perScanner {
		i := 0
		for i < len(list) {
			j := i + 1
			for j < len(list) && list[j].ContinuesPrevious {
				j++
			}
			chains = append(chains, chain{
				offset:    list[i].ByteOffset,
				scannerID: list[i].ScannerID,
				records:   list[i:j],
			})
			i = j
		}
	}

	sort.SliceStable(chains, func(a, b int) bool {
		if chains[a].offset != chains[b].offset {
			return chains[a].offset < chains[b].offset
		}
		return chains[a].scannerID < chains[b].scannerID
	})

	var out []finding.Finding
	for _, c := range chains {
		out = append(out, c.records...)
	}
	return out
}
