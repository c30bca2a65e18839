package employee

import "fmt"

// FormatCode renders the sequential employee identifier, e.g. EMP00001.
func FormatCode(seq int64) string {
	return fmt.Sprintf("%s%05d", codePrefix, seq)
}
