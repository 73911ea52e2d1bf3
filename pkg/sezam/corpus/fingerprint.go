package corpus

import (
	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes a (normalized) text.
func Fingerprint(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Dedupe keeps the first record for every distinct key(record)
// fingerprint. It returns the kept records and the indices (into records)
// of the dropped ones. Records whose key is empty are always kept.
func Dedupe(records []Record, key func(Record) string) (kept []Record, dropped []int) {
	seen := make(map[uint64]struct{}, len(records))
	for i, r := range records {
		k := key(r)
		if k == "" {
			kept = append(kept, r)
			continue
		}
		fp := Fingerprint(k)
		if _, ok := seen[fp]; ok {
			dropped = append(dropped, i)
			continue
		}
		seen[fp] = struct{}{}
		kept = append(kept, r)
	}
	return kept, dropped
}
