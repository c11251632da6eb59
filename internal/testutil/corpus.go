// Package testutil reads the parser test corpus.
package testutil

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Case is one corpus entry: a template and the tree it must parse to.
type Case struct {
	Name     string
	File     string // corpus file the case came from
	Line     int    // line of the case header
	Input    string
	Expected string
	Attrs    map[string]bool // header attributes such as :strict
}

// ParseCorpusFile reads a corpus file.
func ParseCorpusFile(path string) ([]*Case, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cases := ParseCorpus(string(content))
	for _, c := range cases {
		c.File = filepath.Base(path)
	}
	return cases, nil
}

// ParseCorpus parses corpus content. Entries look like
//
//	==================
//	name :attr
//	==================
//	template
//	------------------
//	(document ...)
//
// Header and separator rules are runs of at least three `=` or `-`.
func ParseCorpus(content string) []*Case {
	lines := strings.Split(content, "\n")
	var cases []*Case
	for i := 0; i < len(lines); i++ {
		if !isRule(lines[i], '=') || i+2 >= len(lines) || !isRule(lines[i+2], '=') {
			continue
		}
		c := &Case{Line: i + 1, Attrs: make(map[string]bool)}
		fields := strings.Fields(lines[i+1])
		var name []string
		for _, f := range fields {
			if strings.HasPrefix(f, ":") {
				c.Attrs[f[1:]] = true
				continue
			}
			name = append(name, f)
		}
		c.Name = strings.Join(name, " ")

		j := i + 3
		var input []string
		for j < len(lines) && !isRule(lines[j], '-') {
			input = append(input, lines[j])
			j++
		}
		var expected []string
		for j++; j < len(lines); j++ {
			if isRule(lines[j], '=') && j+2 < len(lines) && isRule(lines[j+2], '=') {
				break
			}
			expected = append(expected, lines[j])
		}
		c.Input = strings.Trim(strings.Join(input, "\n"), "\n")
		c.Expected = NormalizeSExpr(strings.Join(expected, "\n"))
		cases = append(cases, c)
		i = j - 1
	}
	return cases
}

func isRule(line string, ch byte) bool {
	line = strings.TrimRight(line, " \r")
	if len(line) < 3 {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != ch {
			return false
		}
	}
	return true
}

// NormalizeSExpr collapses whitespace so expected trees may be written
// over several lines.
func NormalizeSExpr(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, "( ", "(")
	return strings.ReplaceAll(s, " )", ")")
}

// LoadSkipList loads a skip list file (one test name per line, # for comments).
func LoadSkipList(path string) (map[string]bool, error) {
	skipList := make(map[string]bool)

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return skipList, nil
	}
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		skipList[line] = true
	}

	return skipList, nil
}
