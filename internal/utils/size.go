package utils

import "fmt"

// byteCountUnits lists the base-1024 size ladder from largest-divisor order.
var byteCountUnits = []string{"KB", "MB", "GB", "TB", "PB", "EB"}

// bytesPerUnit is the scaling factor between adjacent units.
const bytesPerUnit = 1024

// FormatByteCount converts a byte total into a human-readable string using a
// base-1024 ladder. Values below one kilobyte render as plain bytes; scaled
// values keep two decimal places and pick the largest unit with a value of
// at least one.
func FormatByteCount(totalBytes int64) string {
	if totalBytes < bytesPerUnit {
		return fmt.Sprintf("%d B", totalBytes)
	}
	scaledValue := float64(totalBytes)
	unitIndex := -1
	for scaledValue >= bytesPerUnit && unitIndex < len(byteCountUnits)-1 {
		scaledValue /= bytesPerUnit
		unitIndex++
	}
	return fmt.Sprintf("%.2f %s", scaledValue, byteCountUnits[unitIndex])
}
