package driver

import (
	"sort"
	"strconv"
)

// GoCardless accepts at most 3 metadata entries per resource, with bounded
// key and value lengths.
const (
	metadataMaxEntries  = 3
	metadataMaxKeyLen   = 50
	metadataMaxValueLen = 500
)

// ExtractMetadata builds the transaction annotation set. The invoice id and
// reference are always present and never evicted; caller-supplied entries
// fill the remaining slots in key order until the cap, the rest are silently
// dropped.
func ExtractMetadata(invoiceID uint, invoiceRef string, custom map[string]string) map[string]string {
	meta := map[string]string{
		"invoiceId":  truncate(strconv.FormatUint(uint64(invoiceID), 10), metadataMaxValueLen),
		"invoiceRef": truncate(invoiceRef, metadataMaxValueLen),
	}

	keys := make([]string, 0, len(custom))
	for k := range custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if len(meta) >= metadataMaxEntries {
			break
		}
		key := truncate(k, metadataMaxKeyLen)
		if _, taken := meta[key]; taken {
			continue
		}
		meta[key] = truncate(custom[k], metadataMaxValueLen)
	}
	return meta
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
