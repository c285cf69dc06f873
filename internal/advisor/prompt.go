package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/sadopc/studyplan/internal/study"
	"github.com/sadopc/studyplan/internal/summary"
)

// DefaultImagePrompt asks for a student-level explanation of the pictured problem.
const DefaultImagePrompt = "この画像に写っている問題の解き方とポイントを、高校生にもわかるように解説してください。"

const noEntries = "まだ計画が入力されていません。"

// AdvicePrompt renders the current goals and entries as a plain-text
// request for short study advice.
func AdvicePrompt(entries []study.Entry, goals []study.Goal) string {
	var b strings.Builder
	b.WriteString("あなたは高校生の学習を支える経験豊富な教師です。\n")
	b.WriteString("次の学習データを読んで、定期考査に向けた短いアドバイスをしてください。\n\n")

	b.WriteString("【目標と結果】\n")
	for _, g := range goals {
		actual := "N/A"
		if g.ActualScore != nil {
			actual = fmt.Sprint(*g.ActualScore)
		}
		done, total := summary.TodoProgress(g)
		fmt.Fprintf(&b, "%s: Target %dpts, Actual %spts, Todos: %d/%d\n",
			g.Subject, g.TargetScore, actual, done, total)
	}

	b.WriteString("\n【学習履歴】\n")
	if len(entries) == 0 {
		b.WriteString(noEntries + "\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "%s: %s - %s (Plan: %dmin, Actual: %dmin)\n",
			e.DateStr, e.Subject, e.Content, e.PlannedMinutes, e.ActualMinutes)
	}

	b.WriteString("\n300文字程度で、次の点に触れてください:\n")
	b.WriteString("1. 目標と学習量のバランス（点数の結果があればそれも）\n")
	b.WriteString("2. 試験日までのペース配分\n")
	b.WriteString("3. 前向きになれる一言\n")
	b.WriteString("Markdownは使わず、やさしい話し言葉のプレーンテキストで答えてください。\n")
	return b.String()
}

// Advice requests study advice for the given snapshot.
func Advice(ctx context.Context, g Generator, entries []study.Entry, goals []study.Goal) (string, error) {
	text, err := g.Generate(ctx, Request{Prompt: AdvicePrompt(entries, goals)})
	if err != nil {
		return "", fmt.Errorf("generate advice: %w", err)
	}
	return text, nil
}

// AnalyzeImage asks for an explanation of an image. An empty prompt uses
// DefaultImagePrompt; an empty mimeType is sniffed from the bytes.
func AnalyzeImage(ctx context.Context, g Generator, image []byte, mimeType, prompt string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("analyze image: no image data")
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultImagePrompt
	}
	text, err := g.Generate(ctx, Request{Prompt: prompt, Image: image, MIMEType: mimeType})
	if err != nil {
		return "", fmt.Errorf("analyze image: %w", err)
	}
	return text, nil
}
