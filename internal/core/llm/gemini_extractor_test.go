package llm

import (
	"encoding/base64"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain csv untouched", in: "a,b\n1,2", want: "a,b\n1,2"},
		{name: "csv fence", in: "```csv\na,b\n1,2\n```", want: "a,b\n1,2"},
		{name: "upper case csv fence", in: "```CSV\na,b\n```", want: "a,b"},
		{name: "bare fence", in: "```\na,b\n```", want: "a,b"},
		{name: "fence with trailing newline", in: "```csv\na,b\n```\n", want: "a,b"},
		{name: "surrounding whitespace", in: "  \n a,b \n ", want: "a,b"},
		{name: "empty", in: "", want: ""},
		{name: "inner fence kept", in: "a,b\n```\n1,2", want: "a,b\n```\n1,2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestRequestParts(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	parts, err := requestParts(base64.StdEncoding.EncodeToString(pdf))
	require.NoError(t, err)
	require.Len(t, parts, 2)

	blob, ok := parts[0].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "application/pdf", blob.MIMEType)
	assert.Equal(t, pdf, blob.Data)

	text, ok := parts[1].(genai.Text)
	require.True(t, ok)
	assert.Contains(t, string(text), "Output ONLY the CSV data.")
	assert.Contains(t, string(text), "return an empty string")
}

func TestRequestParts_InvalidBase64(t *testing.T) {
	_, err := requestParts("not base64!!")
	assert.Error(t, err)
}

func TestResponseText(t *testing.T) {
	assert.Equal(t, "", responseText(nil))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("a,b\n"), genai.Text("1,2")}},
		}},
	}
	assert.Equal(t, "a,b\n1,2", responseText(resp))
}
