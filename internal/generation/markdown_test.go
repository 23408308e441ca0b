package generation

import (
	"strings"
	"testing"

	"github.com/mexffff/PromptUzman/internal/prompt"
)

func TestExtractPrompt(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"no fence", "  Sen bir uzmansın.\n", "Sen bir uzmansın."},
		{"backtick fence", "Prompt:\n```\nsatır 1\nsatır 2\n```\nBol şans!", "satır 1\nsatır 2"},
		{"info string", "```markdown\n# Rol\n```", "# Rol"},
		{"tilde fence", "~~~\nx\n~~~", "x"},
		{"two fences kept whole", "```\nbir\n```\n\n```\niki\n```", "```\nbir\n```\n\n```\niki\n```"},
		{
			"example block inside prompt",
			"# Görev\nMetin yaz.\n\n# Çıktı Formatı\nŞu biçimde ver:\n```json\n{\"baslik\": \"[BASLIK]\"}\n```\n",
			"# Görev\nMetin yaz.\n\n# Çıktı Formatı\nŞu biçimde ver:\n```json\n{\"baslik\": \"[BASLIK]\"}\n```",
		},
		{"fence in a list", "- madde\n\n  ```\nx\n  ```", "- madde\n\n  ```\nx\n  ```"},
		{"long lead-in kept whole", strings.Repeat("uzun ", 50) + "\n```\nx\n```", strings.Repeat("uzun ", 50) + "\n```\nx\n```"},
		{"unclosed fence", "```\nyarım", "yarım"},
		{"empty fence", "```\n```", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPrompt(tt.response); got != tt.want {
				t.Errorf("ExtractPrompt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractSources(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []prompt.Source
	}{
		{
			name:     "no links",
			response: "Sadece metin.",
			want:     []prompt.Source{},
		},
		{
			name:     "inline links in order",
			response: "Bkz. [B kaynağı](https://b.example.com) ve [*A* kaynağı](https://a.example.com/x).",
			want: []prompt.Source{
				{Title: "B kaynağı", URI: "https://b.example.com"},
				{Title: "A kaynağı", URI: "https://a.example.com/x"},
			},
		},
		{
			name:     "duplicates kept",
			response: "[x](https://x.example.com) [x](https://x.example.com)",
			want: []prompt.Source{
				{Title: "x", URI: "https://x.example.com"},
				{Title: "x", URI: "https://x.example.com"},
			},
		},
		{
			name:     "non web links skipped",
			response: "[yerel](/docs) [posta](mailto:a@b.c) [web](http://w.example.com)",
			want:     []prompt.Source{{Title: "web", URI: "http://w.example.com"}},
		},
		{
			name:     "empty title uses uri",
			response: "[](https://e.example.com)",
			want:     []prompt.Source{{Title: "https://e.example.com", URI: "https://e.example.com"}},
		},
		{
			name:     "bare url",
			response: "Kaynak: https://bare.example.com/page\n",
			want:     []prompt.Source{{Title: "https://bare.example.com/page", URI: "https://bare.example.com/page"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSources(tt.response)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractSources() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("source[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
