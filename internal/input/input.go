// Package input loads probe texts and labels from files. Plain text files
// carry one text per line; HTML files are reduced to their visible sentences.
package input

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadTexts loads probe texts from path. Files ending in .html or .htm are
// parsed and their visible text split into sentences; anything else is read
// as one text per line, skipping blank lines and # comments.
func ReadTexts(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()

		texts, err := TextsFromHTML(f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return texts, nil
	default:
		return readLines(path)
	}
}

// ReadLabels loads one label per line, skipping blank lines and # comments.
// Labels pair with the texts of a line-based texts file read the same way.
func ReadLabels(path string) ([]string, error) {
	return readLines(path)
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return lines, nil
}
