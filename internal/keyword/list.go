package keyword

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultKeywords is the built-in banned phrase list, used when no keyword
// file is configured. Order matters: earlier entries win when several would
// match. Entries are raw, case- and accent-original; normalization happens
// in NewMatcher.
var DefaultKeywords = []string{
	"crypto",
	"bitcoin",
	"usdt",
	"airdrop",
	"forex",
	"binary options",
	"investment plan",
	"guaranteed profit",
	"passive income",
	"casino",
	"free money",
	"earn from home",
	"dm me",
	"escort",
	"onlyfans",
}

// LoadFile reads an ordered keyword list from path, one phrase per line.
// Blank lines and lines starting with # are skipped. Line order is
// preserved, since it defines match priority.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("keyword: open %s: %w", path, err)
	}
	defer f.Close()

	var keywords []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keywords = append(keywords, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("keyword: read %s: %w", path, err)
	}
	return keywords, nil
}
