package notion

import "strings"

// Page is a single data source row. Only the fields the kiosk reads are decoded.
type Page struct {
	ID         string              `json:"id"`
	Archived   bool                `json:"archived"`
	InTrash    bool                `json:"in_trash"`
	Properties map[string]Property `json:"properties"`
}

// Property is a page property value.
type Property struct {
	Type     string     `json:"type"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
}

// RichText is one rich text run.
type RichText struct {
	PlainText string `json:"plain_text"`
	Text      *struct {
		Content string `json:"content"`
	} `json:"text,omitempty"`
}

func (r RichText) content() string {
	if r.PlainText != "" {
		return r.PlainText
	}
	if r.Text != nil {
		return r.Text.Content
	}
	return ""
}

// Text returns the concatenated text of a title or rich_text property.
func (p Property) Text() string {
	runs := p.Title
	if len(runs) == 0 {
		runs = p.RichText
	}
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.content())
	}
	return b.String()
}

// Title returns the text of the named property, and false when the page has
// no such property or it is empty.
func (p Page) Title(property string) (string, bool) {
	prop, ok := p.Properties[property]
	if !ok {
		return "", false
	}
	text := strings.TrimSpace(prop.Text())
	return text, text != ""
}
