package fileutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoFiles is returned when a pattern expands to nothing
var ErrNoFiles = errors.New("no files match")

// ExpandPattern returns the files matched by a glob, or the path itself when it
// has no wildcard
func ExpandPattern(pattern string) ([]string, error) {
	if !strings.Contains(pattern, "*") {
		return []string{pattern}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w %q", ErrNoFiles, pattern)
	}

	sort.Strings(matches)
	return matches, nil
}

// Exists reports whether a file exists at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ConfirmOverwrite asks on out whether an existing file may be overwritten.
// A missing file needs no confirmation. An empty answer or "y" confirms, "n"
// declines, anything else asks again.
func ConfirmOverwrite(path string, in io.Reader, out io.Writer) (bool, error) {
	if !Exists(path) {
		return true, nil
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "Warning: %s already exists. Overwrite? (Y/n): ", path)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return false, fmt.Errorf("reading confirmation: %w", err)
			}
			return false, nil
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "", "y":
			return true, nil
		case "n":
			fmt.Fprintln(out, "Operation cancelled.")
			return false, nil
		default:
			fmt.Fprintln(out, "Invalid input. Please enter 'y' for yes or 'n' for no.")
		}
	}
}
