package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescription_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Description
	}{
		{"plain string", `"A desert planet."`, PlainText("A desert planet.")},
		{"typed object", `{"type": "/type/text", "value": "A desert planet."}`, RichText("/type/text", "A desert planet.")},
		{"null", `null`, Description{}},
		{"empty string", `""`, PlainText("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Description
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestDescription_UnmarshalJSON_RejectsOtherShapes(t *testing.T) {
	var d Description
	err := json.Unmarshal([]byte(`42`), &d)
	assert.Error(t, err)
}

func TestDescription_Text(t *testing.T) {
	assert.Equal(t, "plain", PlainText("plain").Text())
	assert.Equal(t, "rich", RichText("/type/text", "rich").Text())
	assert.Equal(t, "", Description{}.Text())
}

func TestDescription_MarshalJSON(t *testing.T) {
	t.Run("plain text is written as a string", func(t *testing.T) {
		data, err := json.Marshal(PlainText("hello"))
		require.NoError(t, err)
		assert.JSONEq(t, `"hello"`, string(data))
	})

	t.Run("rich text keeps its type", func(t *testing.T) {
		data, err := json.Marshal(RichText("/type/text", "hello"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"type": "/type/text", "value": "hello"}`, string(data))
	})

	t.Run("absent description is null", func(t *testing.T) {
		data, err := json.Marshal(Description{})
		require.NoError(t, err)
		assert.JSONEq(t, `null`, string(data))
	})
}

func TestDescription_KeepsKindThroughJSON(t *testing.T) {
	for _, d := range []Description{{}, PlainText(""), PlainText("hello"), RichText("/type/text", "hello")} {
		t.Run(d.Kind.String(), func(t *testing.T) {
			data, err := json.Marshal(d)
			require.NoError(t, err)

			var back Description
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, d, back)
		})
	}
}

func TestBookDetail_EmptyPlaceholderThroughJSON(t *testing.T) {
	data, err := json.Marshal(EmptyBookDetail())
	require.NoError(t, err)

	var back BookDetail
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, DescriptionNone, back.Description.Kind)
}

func TestPublishYear_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected PublishYear
	}{
		{`1965`, "1965"},
		{`"1965"`, "1965"},
		{`null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var y PublishYear
			require.NoError(t, json.Unmarshal([]byte(tt.input), &y))
			assert.Equal(t, tt.expected, y)
		})
	}
}

func TestBookDetail_DecodesCatalogRecord(t *testing.T) {
	payload := `{
		"key": "/works/OL1W",
		"title": "Dune",
		"author_name": ["Frank Herbert"],
		"cover_i": 123,
		"description": {"type": "/type/text", "value": "Spice."},
		"subjects": ["Science fiction"]
	}`

	var book BookDetail
	require.NoError(t, json.Unmarshal([]byte(payload), &book))

	assert.Equal(t, "/works/OL1W", book.Key)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, []string{"Frank Herbert"}, book.AuthorNames)
	assert.Equal(t, 123, book.CoverID)
	assert.Equal(t, DescriptionRichText, book.Description.Kind)
	assert.Equal(t, "Spice.", book.Description.Text())
	assert.Equal(t, []string{"Science fiction"}, book.Subjects)
}

func TestEmptyBookDetail(t *testing.T) {
	book := EmptyBookDetail()

	assert.Empty(t, book.Key)
	assert.Empty(t, book.Title)
	assert.Zero(t, book.CoverID)
	assert.NotNil(t, book.AuthorNames)
	assert.NotNil(t, book.Subjects)
	assert.True(t, book.Description.IsZero())
}
