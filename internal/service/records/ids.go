package records

import (
	"fmt"
	"strconv"
	"strings"
)

// nextID returns prefix followed by one more than the largest numeric
// suffix among keys carrying that prefix, zero-padded to three digits.
func nextID[T any](prefix string, table map[string]T) string {
	highest := 0
	for key := range table {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		n, err := strconv.Atoi(key[len(prefix):])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, highest+1)
}
