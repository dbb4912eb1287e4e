package utils

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"
)

// DefaultSniffLimit is the number of leading bytes inspected when classifying
// content as text or binary.
const DefaultSniffLimit = 8000

// SniffBinary reads at most sampleLimit bytes from contentReader and reports
// whether the sample looks like binary data. Read failures are returned to the
// caller instead of silently classifying the content as text. A sampleLimit
// of zero or less falls back to DefaultSniffLimit.
func SniffBinary(contentReader io.Reader, sampleLimit int) (bool, error) {
	if sampleLimit <= 0 {
		sampleLimit = DefaultSniffLimit
	}
	sample := make([]byte, sampleLimit)
	bytesRead, readError := io.ReadFull(contentReader, sample)
	if readError != nil && !errors.Is(readError, io.EOF) && !errors.Is(readError, io.ErrUnexpectedEOF) {
		return false, readError
	}
	return containsBinaryData(sample[:bytesRead]), nil
}

// containsBinaryData applies the content heuristic: a NUL byte or invalid
// UTF-8 marks the sample as binary. A multi-byte rune cut at the sample
// boundary is discarded first so the truncation itself never flags a text
// file.
func containsBinaryData(sample []byte) bool {
	if bytes.IndexByte(sample, 0x00) >= 0 {
		return true
	}
	return !utf8.Valid(trimPartialTrailingRune(sample))
}

// trimPartialTrailingRune drops the bytes of a multi-byte sequence that the
// sample boundary cut short, leaving complete runes only.
func trimPartialTrailingRune(sample []byte) []byte {
	runeStart := len(sample)
	for runeStart > 0 && len(sample)-runeStart < utf8.UTFMax {
		runeStart--
		if utf8.RuneStart(sample[runeStart]) {
			if !utf8.FullRune(sample[runeStart:]) {
				return sample[:runeStart]
			}
			return sample
		}
	}
	return sample
}
