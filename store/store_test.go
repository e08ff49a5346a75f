package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "samples")
	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewStore(&Cfg{
		Filename:      filename,
		BlockSize:     2,
		FlushInterval: time.Hour, // flush on block size and shutdown only
		Ctx:           ctx,
	})
	if err != nil {
		t.Fatal(err)
	}
	in := []*Sample{
		{Time: 100, Label: "requests", Domain: "count", Value: 1500},
		{Time: 101, Label: "requests", Domain: "count", Value: 2500},
		{Time: 102, Label: "latency", Domain: "duration", Value: 1.5e6},
	}
	for _, sample := range in {
		s.Add(sample)
	}
	cancel()
	<-s.Done()

	if s.Size() == 0 {
		t.Fatal("Size() = 0 after flush")
	}
	out := make(chan *Sample, len(in))
	count, err := ReadAll(filename, out)
	if err != nil {
		t.Fatal(err)
	}
	if count != uint32(len(in)) {
		t.Fatalf("ReadAll count = %d, want %d", count, len(in))
	}
	var got []*Sample
	for sample := range out {
		got = append(got, sample)
	}
	// two blocks were written, newest first: [latency], [requests x2]
	want := []*Sample{in[2], in[0], in[1]}
	for i := range want {
		if *got[i] != *want[i] {
			t.Errorf("sample %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadAllEmptyFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "samples")
	if err := os.WriteFile(filename, nil, 0644); err != nil {
		t.Fatal(err)
	}
	out := make(chan *Sample, 1)
	count, err := ReadAll(filename, out)
	if err != nil || count != 0 {
		t.Fatalf("ReadAll(empty) = (%d, %v), want (0, nil)", count, err)
	}
	if _, open := <-out; open {
		t.Error("out not closed")
	}
}

func TestReadAllCorruptTail(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "samples")
	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewStore(&Cfg{Filename: filename, BlockSize: 1, FlushInterval: time.Hour, Ctx: ctx})
	if err != nil {
		t.Fatal(err)
	}
	s.Add(&Sample{Time: 1, Label: "a", Domain: "count", Value: 1})
	cancel()
	<-s.Done()

	// append garbage with a bogus length suffix
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := file.Write([]byte{0xde, 0xad, 0xff, 0xff, 0xff, 0xff}); err != nil {
		t.Fatal(err)
	}
	file.Close()

	out := make(chan *Sample, 8)
	_, err = ReadAll(filename, out)
	if !errors.Is(err, ErrCorruptFile) {
		t.Errorf("ReadAll(corrupt) err = %v, want ErrCorruptFile", err)
	}
	if _, open := <-out; open {
		t.Error("out not closed after corrupt tail")
	}
}

func TestCodecSkipsUnknownFields(t *testing.T) {
	in := []*Sample{{Time: 7, Label: "x", Domain: "bytes", Value: 4096}}
	data := marshalBlock(in)
	// a block written by a future revision may carry extra fields
	data = append(data, 0x28, 0x01) // field 5, varint 1
	got, err := unmarshalBlock(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || *got[0] != *in[0] {
		t.Errorf("unmarshalBlock = %+v, want %+v", got, in)
	}
}
