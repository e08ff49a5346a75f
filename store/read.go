package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// ErrCorruptFile marks a log file whose tail could not be read.
var ErrCorruptFile = errors.New("corrupt sample file")

// ReadAll streams every stored sample to out, newest block first, then
// closes out. It returns the number of samples streamed. A corrupt or
// truncated block stops the scan with an error after streaming the
// blocks that were intact, so one bad run never kills the process.
func ReadAll(filename string, out chan<- *Sample) (uint32, error) {
	defer close(out)
	file, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open file for reading: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat file: %w", err)
	}

	// starting from the end of the file, read backwards
	var count uint32
	remaining := info.Size()
	for remaining > 0 {
		if remaining < 4 {
			return count, fmt.Errorf("%w: %d trailing bytes", ErrCorruptFile, remaining)
		}
		// the four-byte big-endian length sits at the end of each block
		offset := remaining - 4
		lengthBytes := make([]byte, 4)
		if _, err := file.ReadAt(lengthBytes, offset); err != nil {
			return count, fmt.Errorf("failed to read block length: %w", err)
		}
		length := int64(lengthBytes[0])<<24 | int64(lengthBytes[1])<<16 | int64(lengthBytes[2])<<8 | int64(lengthBytes[3])
		if length <= 0 || length > offset {
			return count, fmt.Errorf("%w: block length %d at offset %d", ErrCorruptFile, length, offset)
		}
		offset -= length
		compressed := make([]byte, length)
		if _, err := file.ReadAt(compressed, offset); err != nil {
			return count, fmt.Errorf("failed to read block payload: %w", err)
		}
		gzr, err := gzip.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return count, fmt.Errorf("%w: %v", ErrCorruptFile, err)
		}
		data, err := io.ReadAll(gzr)
		gzr.Close()
		if err != nil {
			return count, fmt.Errorf("%w: %v", ErrCorruptFile, err)
		}
		samples, err := unmarshalBlock(data)
		if err != nil {
			return count, fmt.Errorf("%w: %v", ErrCorruptFile, err)
		}
		for _, s := range samples {
			out <- s
		}
		count += uint32(len(samples))
		remaining = offset
	}
	return count, nil
}
