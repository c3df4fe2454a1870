package mapper

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"unsafe"

	"golang.org/x/exp/mmap"
)

var ErrEOF = errors.New("EOF")

// Source reads fixed-width binary records of type T from a memory-mapped
// file. Records are reinterpreted in place, so T must carry no padding.
type Source[T any] struct {
	path       string
	reader     *mmap.ReaderAt
	bufferPool *sync.Pool
}

func Open[T any](path string) (*Source[T], error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open data source %q: %w", path, err)
	}
	return &Source[T]{
		path:   path,
		reader: reader,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, int(unsafe.Sizeof(*new(T))))
				return &buffer
			},
		},
	}, nil
}

func (s *Source[T]) Close() error {
	return s.reader.Close()
}

func (s *Source[T]) Read(index int64, out *T) error {
	buffer := s.bufferPool.Get().(*[]byte)
	defer s.bufferPool.Put(buffer)

	offset := index * int64(len(*buffer))

	n, err := s.reader.ReadAt(*buffer, offset)
	if err != nil && err != io.EOF {
		return fmt.Errorf("unable to read: %w", err)
	}
	if n < len(*buffer) {
		return ErrEOF
	}

	*out = *(*T)(unsafe.Pointer(&(*buffer)[0])) // #nosec G103
	return nil
}

func (s *Source[T]) EntryCount() (int64, error) {
	entrySize := int64(unsafe.Sizeof(*new(T)))
	if entrySize == 0 {
		return 0, fmt.Errorf("size of record type is zero")
	}

	totalSize := int64(s.reader.Len())
	if totalSize%entrySize != 0 {
		return 0, fmt.Errorf("data source %q size is not a multiple of the record size", s.path)
	}

	return totalSize / entrySize, nil
}
