// Package docs embeds the user manual of mdz: one markdown file per topic,
// plus readme.md which lists them.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
)

//go:embed *.md
var manual embed.FS

// index is the topic shown when none is asked for.
const index = "readme"

// Topics returns the documented topics in alphabetical order, the index excluded.
func Topics() ([]string, error) {
	entries, err := fs.ReadDir(manual, ".")
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, e := range entries { // sorted by file name
		name, ok := strings.CutSuffix(e.Name(), ".md")
		if e.IsDir() || !ok || name == index {
			continue
		}
		topics = append(topics, name)
	}
	return topics, nil
}

// Read returns the markdown of the topics, one after the other. "*" stands
// for every topic, and no topic at all for the index.
func Read(topics ...string) (string, error) {
	if len(topics) == 0 {
		topics = []string{index}
	}
	var b strings.Builder
	for _, topic := range topics {
		names := []string{topic}
		if topic == "*" {
			all, err := Topics()
			if err != nil {
				return "", err
			}
			names = all
		}
		for _, name := range names {
			content, err := manual.ReadFile(name + ".md")
			if err != nil {
				return "", fmt.Errorf("unknown topic %q: %w", name, err)
			}
			b.Write(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
