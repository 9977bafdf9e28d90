package listener

import (
	"bytes"
	"errors"
	"sync"
	"testing"
)

func TestSinkKeepsChunksWhole(t *testing.T) {
	out := new(bytes.Buffer)
	sink := NewSink(out)

	const writers, writes = 8, 50

	wg := new(sync.WaitGroup)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(b byte) {
			defer wg.Done()

			chunk := bytes.Repeat([]byte{b}, ChunkSize)
			for j := 0; j < writes; j++ {
				if _, err := sink.Write(chunk); err != nil {
					t.Error(err)
					return
				}
			}
		}(byte('a' + i))
	}
	wg.Wait()

	data := out.Bytes()
	if expected, actual := writers*writes*ChunkSize, len(data); expected != actual {
		t.Fatalf("expected %d bytes but was %d", expected, actual)
	}

	for off := 0; off < len(data); off += ChunkSize {
		chunk := data[off : off+ChunkSize]
		if n := bytes.Count(chunk, chunk[:1]); n != ChunkSize {
			t.Fatalf("chunk at offset %d was split by another writer", off)
		}
	}
}

type countingWriter struct {
	writes int
	buf    bytes.Buffer
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.buf.Write(p)
}

func TestSinkWritesImmediately(t *testing.T) {
	w := new(countingWriter)
	sink := NewSink(w)

	for i, s := range []string{"a", "bc", "\x00\r\n"} {
		if _, err := sink.Write([]byte(s)); err != nil {
			t.Fatal(err)
		}
		if expected, actual := i+1, w.writes; expected != actual {
			t.Errorf("expected %d underlying writes but was %d", expected, actual)
		}
	}

	if expected, actual := []byte("abc\x00\r\n"), w.buf.Bytes(); !bytes.Equal(expected, actual) {
		t.Errorf("expected %q but was %q", expected, actual)
	}
}

type failingWriter struct{}

var errFull = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) { return 0, errFull }

func TestSinkError(t *testing.T) {
	sink := NewSink(failingWriter{})

	if _, err := sink.Write([]byte("hello")); !errors.Is(err, errFull) {
		t.Errorf("expected %v but was %v", errFull, err)
	}
}

type flakyWriter struct {
	failures int
	buf      bytes.Buffer
}

var errTransient = errors.New("resource temporarily unavailable")

func (w *flakyWriter) Write(p []byte) (int, error) {
	if w.failures > 0 {
		w.failures--
		return 0, errTransient
	}
	return w.buf.Write(p)
}

func TestSinkRecoversAfterError(t *testing.T) {
	w := &flakyWriter{failures: 1}
	sink := NewSink(w)

	if _, err := sink.Write([]byte("lost")); !errors.Is(err, errTransient) {
		t.Fatalf("expected %v but was %v", errTransient, err)
	}

	// A later chunk, typically from another connection, still goes through.
	if _, err := sink.Write([]byte("hello")); err != nil {
		t.Fatalf("expected write to succeed but was %v", err)
	}

	if expected, actual := []byte("hello"), w.buf.Bytes(); !bytes.Equal(expected, actual) {
		t.Errorf("expected %q but was %q", expected, actual)
	}
}
