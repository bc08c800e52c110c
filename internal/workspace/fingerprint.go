package workspace

import (
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint computes a deterministic, order-sensitive hash over a
// descriptor sequence. It is a change-detector, not a security primitive:
// two sequences that serialize identically always hash identically, and a
// collision across different sequences costs at most one missed update.
func Fingerprint(tabs []TabDescriptor) string {
	h := xxhash.New()
	for _, tab := range tabs {
		// Marshal of a fixed struct is deterministic.
		b, err := json.Marshal(tab)
		if err != nil {
			// Descriptors are plain strings and bools; this cannot fail.
			continue
		}
		_, _ = h.Write(b)
		_, _ = h.Write([]byte{'\n'})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
