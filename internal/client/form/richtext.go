package form

import (
	"encoding/json"
	"strings"

	"github.com/dmitrijs2005/nobs/internal/client/models"
)

// editorState is the part of the rich-text editor JSON the form reads:
// paragraphs under root, text nodes under each paragraph.
type editorState struct {
	Root struct {
		Children []struct {
			Children []struct {
				Text string `json:"text"`
			} `json:"children"`
		} `json:"children"`
	} `json:"root"`
}

// HasText reports whether rt parses and holds at least one text node that is
// not blank.
func HasText(rt models.RichText) bool {
	if len(rt) == 0 {
		return false
	}
	var st editorState
	if err := json.Unmarshal(rt, &st); err != nil {
		return false
	}
	for _, p := range st.Root.Children {
		for _, n := range p.Children {
			if strings.TrimSpace(n.Text) != "" {
				return true
			}
		}
	}
	return false
}

// PlainText joins the text of every paragraph with newlines.
func PlainText(rt models.RichText) string {
	var st editorState
	if len(rt) == 0 || json.Unmarshal(rt, &st) != nil {
		return ""
	}
	lines := make([]string, 0, len(st.Root.Children))
	for _, p := range st.Root.Children {
		var b strings.Builder
		for _, n := range p.Children {
			b.WriteString(n.Text)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

type textNode struct {
	Detail  int    `json:"detail"`
	Format  int    `json:"format"`
	Mode    string `json:"mode"`
	Style   string `json:"style"`
	Text    string `json:"text"`
	Type    string `json:"type"`
	Version int    `json:"version"`
}

type paragraphNode struct {
	Children   []textNode `json:"children"`
	Direction  *string    `json:"direction"`
	Format     string     `json:"format"`
	Indent     int        `json:"indent"`
	Type       string     `json:"type"`
	Version    int        `json:"version"`
	TextFormat int        `json:"textFormat"`
}

// RichTextFromPlain builds editor JSON with one paragraph per line of s.
// An empty s yields nil.
func RichTextFromPlain(s string) models.RichText {
	if s == "" {
		return nil
	}
	ltr := "ltr"
	lines := strings.Split(s, "\n")
	paras := make([]paragraphNode, 0, len(lines))
	for _, line := range lines {
		p := paragraphNode{Children: []textNode{}, Type: "paragraph", Version: 1}
		if line != "" {
			p.Direction = &ltr
			p.Children = append(p.Children, textNode{Mode: "normal", Text: line, Type: "text", Version: 1})
		}
		paras = append(paras, p)
	}

	doc := map[string]any{
		"root": map[string]any{
			"children":  paras,
			"direction": "ltr",
			"format":    "",
			"indent":    0,
			"type":      "root",
			"version":   1,
		},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	return b
}
