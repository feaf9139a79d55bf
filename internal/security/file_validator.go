// Package security screens files before the linter parses them, so a
// binary or generated file with a source extension never reaches the
// tree-sitter parser.
package security

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrTooLarge is returned for files over the size limit.
	ErrTooLarge = errors.New("file exceeds the size limit")
	// ErrBinary is returned for files whose content is not text.
	ErrBinary = errors.New("file appears to be binary")
	// ErrMinified is returned for minified bundles.
	ErrMinified = errors.New("file appears to be minified")
	// ErrNotSource is returned when a large file shows no trace of
	// JavaScript or TypeScript.
	ErrNotSource = errors.New("no JavaScript or TypeScript found")
)

// FileValidator validates source files before they are read fully.
type FileValidator struct {
	ValidationThreshold int64 // Files larger than this are validated first
	MaxFileSize         int64 // Files larger than this are rejected, 0 = no limit
	HeaderSize          int64 // Size of header to read for validation
	MaxLineLength       int   // Average line length above which a file counts as minified
}

// NewFileValidator validates files over thresholdKB and rejects files over
// maxKB.
func NewFileValidator(thresholdKB, maxKB int64) *FileValidator {
	return &FileValidator{
		ValidationThreshold: thresholdKB * 1024,
		MaxFileSize:         maxKB * 1024,
		HeaderSize:          64 * 1024, // 64KB header
		MaxLineLength:       500,
	}
}

// Validate checks path and returns nil when it is safe to lint. Small
// files pass without being opened.
func (fv *FileValidator) Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if fv.MaxFileSize > 0 && info.Size() > fv.MaxFileSize {
		return fmt.Errorf("%w (%d KB > %d KB)", ErrTooLarge, info.Size()/1024, fv.MaxFileSize/1024)
	}
	if info.Size() <= fv.ValidationThreshold {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, fv.HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read header: %w", err)
	}
	return fv.validateHeader(path, header[:n])
}

func (fv *FileValidator) validateHeader(path string, header []byte) error {
	if hasMagicBytes(header) {
		return fmt.Errorf("%w (known binary signature)", ErrBinary)
	}
	if isBinaryData(header) {
		return ErrBinary
	}
	if fv.isMinified(header) {
		return ErrMinified
	}
	return validateSourceFile(path, header)
}

// signatures of files that turn up in app directories with the wrong
// extension
var magicBytes = [][]byte{
	{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, // png
	{0xFF, 0xD8, 0xFF},                               // jpeg
	{0x47, 0x49, 0x46, 0x38},                         // gif
	{0x25, 0x50, 0x44, 0x46, 0x2D},                   // pdf
	{0x50, 0x4B, 0x03, 0x04},                         // zip
	{0x00, 0x61, 0x73, 0x6D},                         // wasm
	{0x7F, 0x45, 0x4C, 0x46},                         // elf
	{0x4D, 0x5A},                                     // PE executable
}

func hasMagicBytes(header []byte) bool {
	for _, magic := range magicBytes {
		if bytes.HasPrefix(header, magic) {
			return true
		}
	}
	return false
}

// isBinaryData checks if file contains binary data
func isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}

	// Control characters (0-31 except tab, LF, CR) and DEL
	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}

	// If more than 30% non-printable, consider binary
	ratio := float64(nonPrintable) / float64(len(data))
	return ratio > 0.3
}

// isMinified reports headers whose lines are far longer than hand-written
// code.
func (fv *FileValidator) isMinified(header []byte) bool {
	if fv.MaxLineLength <= 0 || len(header) == 0 {
		return false
	}
	lines := bytes.Count(header, []byte("\n")) + 1
	return len(header)/lines > fv.MaxLineLength
}

// validateSourceFile checks for JavaScript patterns, plus type syntax for
// TypeScript extensions.
func validateSourceFile(path string, header []byte) error {
	patterns := [][]byte{
		[]byte("import "),
		[]byte("export "),
		[]byte("function "),
		[]byte("const "),
		[]byte("let "),
		[]byte("var "),
		[]byte("=>"),
		[]byte("class "),
		[]byte("require("),
		[]byte("module.exports"),
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".mts", ".cts":
		patterns = append(patterns,
			[]byte("interface "),
			[]byte("type "),
			[]byte("declare "),
			[]byte("namespace "),
		)
	}

	for _, pattern := range patterns {
		if bytes.Contains(header, pattern) {
			return nil
		}
	}
	return ErrNotSource
}
