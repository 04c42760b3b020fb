package corpus

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	qerrors "github.com/quaero-search/quaero/pkg/errors"
)

const maxLineBytes = 4 * 1024 * 1024

// FileDocumentSource reads a counted document stream from a file: a decimal
// count on the first line, then one document per line.
type FileDocumentSource struct {
	mu      sync.Mutex
	file    *os.File
	scanner *bufio.Scanner
	total   int
	next    int
	err     error
}

// OpenDocuments opens a document file and reads its count header.
func OpenDocuments(path string) (*FileDocumentSource, error) {
	file, scanner, total, err := openCounted(path)
	if err != nil {
		return nil, err
	}
	return &FileDocumentSource{file: file, scanner: scanner, total: total}, nil
}

// TotalDocs returns the count from the stream header.
func (s *FileDocumentSource) TotalDocs() int {
	return s.total
}

// Next returns the next document. The returned docID is the 0-based index
// of the record within the stream.
func (s *FileDocumentSource) Next() (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= s.total || s.err != nil {
		return Document{}, false
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			s.err = fmt.Errorf("reading document %d: %w", s.next, err)
		}
		return Document{}, false
	}
	doc := Document{ID: s.next, Text: s.scanner.Text()}
	s.next++
	return doc, true
}

// Err returns the first read error encountered, if any.
func (s *FileDocumentSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the underlying file.
func (s *FileDocumentSource) Close() error {
	return s.file.Close()
}

// FileQuerySource reads a counted query stream from a file, in the same
// layout as the document stream.
type FileQuerySource struct {
	mu      sync.Mutex
	file    *os.File
	scanner *bufio.Scanner
	total   int
	next    int
	err     error
}

// OpenQueries opens a query file and reads its count header.
func OpenQueries(path string) (*FileQuerySource, error) {
	file, scanner, total, err := openCounted(path)
	if err != nil {
		return nil, err
	}
	return &FileQuerySource{file: file, scanner: scanner, total: total}, nil
}

// TotalQueries returns the count from the stream header.
func (s *FileQuerySource) TotalQueries() int {
	return s.total
}

// Next returns the next raw query line.
func (s *FileQuerySource) Next() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= s.total || s.err != nil {
		return "", false
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			s.err = fmt.Errorf("reading query %d: %w", s.next, err)
		}
		return "", false
	}
	s.next++
	return s.scanner.Text(), true
}

// Err returns the first read error encountered, if any.
func (s *FileQuerySource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the underlying file.
func (s *FileQuerySource) Close() error {
	return s.file.Close()
}

// openCounted opens path and parses the decimal count on its first line.
func openCounted(path string) (*os.File, *bufio.Scanner, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: opening %s: %v", qerrors.ErrMissingInput, path, err)
	}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	if !scanner.Scan() {
		file.Close()
		if err := scanner.Err(); err != nil {
			return nil, nil, 0, fmt.Errorf("%w: reading header of %s: %v", qerrors.ErrMalformedCount, path, err)
		}
		return nil, nil, 0, fmt.Errorf("%w: %s is empty", qerrors.ErrMalformedCount, path)
	}
	total, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || total < 0 {
		file.Close()
		return nil, nil, 0, fmt.Errorf("%w: header %q of %s", qerrors.ErrMalformedCount, scanner.Text(), path)
	}
	return file, scanner, total, nil
}
