// Package store is the append-only sample log: gzipped protowire blocks,
// each followed by a 4-byte big-endian length so the file reads
// newest-block-first from EOF.
package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/klauspost/compress/gzip"
)

type Cfg struct {
	Filename      string
	BlockSize     int           // samples per block
	FlushInterval time.Duration // partial-block flush period
	Ctx           context.Context
}

// Store buffers incoming samples and appends them to the log file in
// compressed blocks.
type Store struct {
	filename      string
	blockSize     int
	flushInterval time.Duration
	samples       chan *Sample
	done          chan struct{}
	ctx           context.Context
}

// NewStore opens (creating if needed) the log file and starts the write
// loop.
func NewStore(cfg *Cfg) (*Store, error) {
	file, err := os.OpenFile(cfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	s := &Store{
		filename:      cfg.Filename,
		blockSize:     cfg.BlockSize,
		flushInterval: cfg.FlushInterval,
		samples:       make(chan *Sample, cfg.BlockSize),
		done:          make(chan struct{}),
		ctx:           cfg.Ctx,
	}
	go s.writeSamples(file)
	return s, nil
}

// Add queues one sample for writing.
func (s *Store) Add(sample *Sample) {
	s.samples <- sample
}

// Done is closed once the final block has been flushed after the
// context is cancelled.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// Filename returns the log file path.
func (s *Store) Filename() string {
	return s.filename
}

// Size returns the current log file size in bytes.
func (s *Store) Size() int64 {
	info, err := os.Stat(s.filename)
	if err != nil {
		return 0
	}
	return info.Size()
}

// writeSamples writes to the file in a loop, flushing a block when full,
// on the flush tick, and on shutdown.
func (s *Store) writeSamples(file *os.File) {
	defer close(s.done)
	defer file.Close()
	block := make([]*Sample, 0, s.blockSize)
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()
	flush := func() {
		if len(block) == 0 {
			return
		}
		if err := writeBlock(block, file); err != nil {
			slog.Error("failed to write block", "err", err)
			return
		}
		block = block[:0]
	}
	for {
		select {
		case sample := <-s.samples:
			block = append(block, sample)
			if len(block) >= s.blockSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.ctx.Done():
			// drain whatever is queued, then flush the tail
			for {
				select {
				case sample := <-s.samples:
					block = append(block, sample)
					if len(block) >= s.blockSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// writeBlock gzips & writes a block to the io.Writer, followed by the
// 4-byte big-endian length of the compressed payload.
func writeBlock(block []*Sample, w io.Writer) error {
	gzbuf := &bytes.Buffer{}
	gw := gzip.NewWriter(gzbuf)
	if _, err := gw.Write(marshalBlock(block)); err != nil {
		return fmt.Errorf("failed to write block: %w", err)
	}
	// close before reading the buffer so everything is flushed
	if err := gw.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	gzipped := gzbuf.Bytes()
	if _, err := w.Write(gzipped); err != nil {
		return fmt.Errorf("failed to write gzipped block: %w", err)
	}
	lengthBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(lengthBytes, uint32(len(gzipped)))
	if _, err := w.Write(lengthBytes); err != nil {
		return fmt.Errorf("failed to write gzipped block length: %w", err)
	}
	return nil
}
