package fileval

import (
	"errors"
	"io"
	"os"
	"unicode/utf8"
)

const chunkSize = 32 * 1024 // 32 KB

// LooksUTF8 checks whether the file at path appears to contain valid UTF-8
// text. It checks at most maxBytes (0 = whole file) and fails fast on the
// first invalid chunk.
func LooksUTF8(path string, maxBytes int64) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	var r io.Reader = f
	truncated := false
	if maxBytes > 0 {
		if info, err := f.Stat(); err == nil && info.Size() > maxBytes {
			truncated = true
		}
		r = io.LimitReader(f, maxBytes)
	}
	return ReaderLooksUTF8(r, truncated)
}

// ReaderLooksUTF8 reads r to the end in chunks, carrying a partial code point
// over chunk boundaries. When truncated is set, an incomplete code point at
// the very end is accepted since the limit may have cut it.
func ReaderLooksUTF8(r io.Reader, truncated bool) (bool, error) {
	buf := make([]byte, chunkSize+utf8.UTFMax)
	carried := 0

	for {
		n, err := r.Read(buf[carried : carried+chunkSize])
		chunk := buf[:carried+n]

		tail := incompleteTail(chunk)
		if !utf8.Valid(chunk[:len(chunk)-tail]) {
			return false, nil
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				return false, err
			}
			return tail == 0 || truncated, nil
		}

		carried = copy(buf, chunk[len(chunk)-tail:])
	}
}

// incompleteTail returns the number of trailing bytes of data that start a
// code point without finishing it.
func incompleteTail(data []byte) int {
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		if utf8.RuneStart(data[len(data)-i]) {
			if utf8.FullRune(data[len(data)-i:]) {
				return 0
			}
			return i
		}
	}
	return 0
}
