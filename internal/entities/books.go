package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// BookSummary is one entry of a catalog search page.
type BookSummary struct {
	AuthorNames      []string    `json:"author_name"`
	CoverEditionKey  string      `json:"cover_edition_key"`
	Key              string      `json:"key"`
	Title            string      `json:"title"`
	FirstPublishYear PublishYear `json:"first_publish_year"`
}

// BookDetail is the full record of a single work or edition.
type BookDetail struct {
	AuthorNames []string    `json:"author_name"`
	CoverID     int         `json:"cover_i"`
	Key         string      `json:"key"`
	Title       string      `json:"title"`
	Description Description `json:"description"`
	Subjects    []string    `json:"subjects,omitempty"`
}

// EmptyBookDetail returns the placeholder shown before any detail fetch completes.
func EmptyBookDetail() BookDetail {
	return BookDetail{
		AuthorNames: []string{},
		Subjects:    []string{},
	}
}

// PublishYear holds a year as text. The catalog sends it as a number on search
// docs and as a string elsewhere; both decode to the same value.
type PublishYear string

func (y *PublishYear) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*y = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode publish year: %w", err)
		}
		*y = PublishYear(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode publish year: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*y = PublishYear(strconv.FormatInt(i, 10))
		return nil
	}
	*y = PublishYear(n.String())
	return nil
}

// DescriptionKind tells which shape a Description was received in.
type DescriptionKind int

const (
	DescriptionNone DescriptionKind = iota
	DescriptionPlainText
	DescriptionRichText
)

func (k DescriptionKind) String() string {
	switch k {
	case DescriptionPlainText:
		return "plain"
	case DescriptionRichText:
		return "rich"
	default:
		return "none"
	}
}

// Description is the catalog's description field, which arrives either as a
// bare string or as a {type, value} object.
type Description struct {
	Kind  DescriptionKind
	Type  string // only set for DescriptionRichText, e.g. "/type/text"
	Value string
}

// PlainText builds a Description received as a bare string.
func PlainText(value string) Description {
	return Description{Kind: DescriptionPlainText, Value: value}
}

// RichText builds a Description received as a {type, value} object.
func RichText(typ, value string) Description {
	return Description{Kind: DescriptionRichText, Type: typ, Value: value}
}

// Text returns the readable text regardless of shape.
func (d Description) Text() string {
	return d.Value
}

func (d Description) IsZero() bool {
	return d.Kind == DescriptionNone
}

type richDescription struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (d *Description) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Description{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode description: %w", err)
		}
		*d = PlainText(s)
		return nil
	case '{':
		var rich richDescription
		if err := json.Unmarshal(data, &rich); err != nil {
			return fmt.Errorf("decode description: %w", err)
		}
		*d = RichText(rich.Type, rich.Value)
		return nil
	default:
		return fmt.Errorf("decode description: unsupported JSON value %s", string(data))
	}
}

// MarshalJSON writes the description back in the shape it was received in.
// An absent description is written as null.
func (d Description) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DescriptionRichText:
		return json.Marshal(richDescription{Type: d.Type, Value: d.Value})
	case DescriptionPlainText:
		return json.Marshal(d.Value)
	default:
		return []byte("null"), nil
	}
}
