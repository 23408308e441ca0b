package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MockModel is an offline Model with deterministic output, for local runs
// without an API key and for tests.
type MockModel struct{}

// Complete implements Model.
func (MockModel) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	last := ""
	if n := len(req.Messages); n > 0 {
		last = req.Messages[n-1].Text
	}

	switch {
	case req.Schema != nil:
		out, err := json.Marshal(map[string]any{
			"score":    70,
			"category": "Genel",
			"suggestions": []string{
				"Daha iyi bir bağlam için şunu deneyin: Hedef kitlenin kim olduğunu belirtin.",
				"Daha iyi bir ton için şunu deneyin: Profesyonel mi samimi mi olacağını ekleyin.",
				"Daha iyi bir çıktı için şunu deneyin: İstediğiniz formatı tanımlayın.",
			},
		})
		return string(out), err

	case req.WebSearch:
		var sb strings.Builder
		sb.WriteString("Bu konu için öne çıkan terimler, sektör standartları ve temel performans göstergeleri özetlenmiştir.\n\n")
		sb.WriteString("- [Örnek Kaynak 1](https://example.com/kaynak-1)\n")
		sb.WriteString("- [Örnek Kaynak 2](https://example.com/kaynak-2)\n")
		return sb.String(), nil

	case strings.Contains(req.System, "REFINEMENT STRATEGY:"):
		var sb strings.Builder
		sb.WriteString("# Görev\n[UZMANLIK_ALANI] uzmanı olarak şu isteği yeniden ele al: ")
		sb.WriteString(firstLine(strings.TrimPrefix(last, "Original Idea: ")))
		sb.WriteString("\n\n# Eylem\n[TARGET_AUDIENCE] için adım adım bir plan çıkar.\n\n# Hedef\nNet ve uygulanabilir bir sonuç ver.")
		return sb.String(), nil

	case req.System == ChatInstruction:
		return fmt.Sprintf("Fikrinizi netleştirmek için hedef kitleyi ve beklenen çıktıyı belirtin. (%s)", last), nil

	default:
		var sb strings.Builder
		sb.WriteString("```\n")
		sb.WriteString("# Bağlam\nSen [UZMANLIK_ALANI] alanında deneyimli bir uzmansın.\n\n")
		sb.WriteString("# Amaç\n")
		sb.WriteString(firstLine(last))
		sb.WriteString("\n\n# Hedef Kitle\n[TARGET_AUDIENCE]\n\n# Yanıt\nMarkdown formatında yanıt ver.\n")
		sb.WriteString("```\n")
		return sb.String(), nil
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
