// Package mprfile enforces the MPR file discipline: exactly one CRLF between
// lines, single empty lines as section separators, Windows-1252 encoding, and
// whole-buffer binary writes so no layer retranslates the line endings.
package mprfile

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Normalize repairs arbitrary mixed CR/LF/CRLF content into strict CRLF form:
// trailing horizontal whitespace is trimmed per line, runs of two or more
// empty lines collapse to one (single empty lines are intentional section
// separators), and the result ends with exactly one CRLF. Normalize is
// idempotent.
func Normalize(content string) string {
	if content == "" {
		return ""
	}

	// Doubled CRs come from buggy upstream concatenation; fold them before
	// the uniform line split.
	for strings.Contains(content, "\r\r") {
		content = strings.ReplaceAll(content, "\r\r", "\r")
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" && len(lines) > 0 && lines[len(lines)-1] == "" {
			continue
		}
		lines = append(lines, line)
	}

	result := strings.Join(lines, "\r\n")
	if result != "" && !strings.HasSuffix(result, "\r\n") {
		result += "\r\n"
	}
	return result
}

// Verify reports formatting violations without repairing them: doubled CRs,
// LF without a preceding CR, CR without a following LF, and a missing final
// CRLF. An empty slice means the content is well formed.
func Verify(content string) []string {
	var issues []string
	if n := strings.Count(content, "\r\r"); n > 0 {
		issues = append(issues, fmt.Sprintf("found %d CR CR sequences", n))
	}
	bareLF, bareCR := 0, 0
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\n':
			if i == 0 || content[i-1] != '\r' {
				bareLF++
			}
		case '\r':
			if i+1 >= len(content) || content[i+1] != '\n' {
				bareCR++
			}
		}
	}
	if bareLF > 0 {
		issues = append(issues, fmt.Sprintf("found %d LF without CR", bareLF))
	}
	if bareCR > 0 {
		issues = append(issues, fmt.Sprintf("found %d CR without LF", bareCR))
	}
	if content != "" && !strings.HasSuffix(content, "\r\n") {
		issues = append(issues, "content does not end with CRLF")
	}
	return issues
}

// Encode maps the content into Windows-1252. Characters outside the codepage
// are substituted rather than failing the export.
func Encode(content string) ([]byte, error) {
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	out, err := enc.Bytes([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("encode cp1252: %w", err)
	}
	return out, nil
}

// Write normalizes, encodes, and writes the content in one whole-buffer
// binary write, so the byte sequence chosen here reaches the disk untouched.
func Write(filename, content string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	encoded, err := Encode(Normalize(content))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, encoded, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}
