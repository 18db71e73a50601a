package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/alswn8268/ai-cii/internal/budget"
	"github.com/alswn8268/ai-cii/internal/logging"
)

// FallbackAnswer is returned when retrieval produced no candidates. The
// generation backend is not called in that case — there is no context to
// ground an answer in.
const FallbackAnswer = "죄송합니다. 조건에 맞는 맛집을 찾을 수 없습니다. 다른 조건으로 다시 검색해보시겠어요?"

// systemInstruction pins the model to the retrieved context. The rules are
// numbered so refusals and deviations are easy to spot in transcripts.
const systemInstruction = `당신은 친절하고 전문적인 맛집 추천 AI 어시스턴트입니다.

다음 규칙을 따라주세요:
1. 주어진 맛집 정보만을 바탕으로 추천해주세요
2. 각 맛집의 특징, 메뉴, 가격대를 간단히 설명해주세요
3. 사용자의 위치와 예산을 고려해주세요
4. 친근하고 자연스러운 톤으로 답변해주세요
5. 추천 맛집은 최대 3-5개 정도로 제한해주세요
6. 각 맛집에 대해 간단한 추천 이유를 함께 제공해주세요`

// groundedPromptFormat wraps the retrieved context and the user question.
// The <context> tags give the model an unambiguous grounding boundary.
const groundedPromptFormat = `다음은 사용자의 질문에 답변하기 위한 관련 정보입니다:

<context>
%s
</context>

위 정보를 바탕으로 다음 질문에 답변해주세요. 정보에 없는 내용은 추측하지 말고, 주어진 정보 내에서만 답변하세요.

사용자 질문: %s`

const (
	// groundedTemperature is lower than the providers' unconstrained
	// default (0.7) to reduce hallucination variance in grounded answers.
	groundedTemperature float32 = 0.5

	// defaultAnswerMaxTokens caps the generated recommendation length.
	defaultAnswerMaxTokens = 2000
)

// wonPrinter formats won amounts with Korean digit grouping (30,000원).
var wonPrinter = message.NewPrinter(language.Korean)

// SynthesizerConfig holds the tuning knobs for a Synthesizer.
type SynthesizerConfig struct {
	// MaxTokens caps the generated answer length. 0 means 2000.
	MaxTokens int
	// MaxContextTokens caps the grounding context size; lowest-ranked
	// restaurant blocks are dropped first. 0 means budget.DefaultMaxContextTokens.
	MaxContextTokens int
}

// Synthesizer formats ranked retrieval results into a grounding context and
// delegates answer generation to a chat model with a system/user role split.
type Synthesizer struct {
	// model generates the final answer.
	model Generator
	// maxTokens caps the generated answer length.
	maxTokens int
	// maxContextTokens caps the grounding context size.
	maxContextTokens int
}

// NewSynthesizer constructs a Synthesizer around the given chat model.
// cfg may be nil for defaults.
func NewSynthesizer(chatModel Generator, cfg *SynthesizerConfig) (*Synthesizer, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("rag: chat model must not be nil")
	}
	if cfg == nil {
		cfg = &SynthesizerConfig{}
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnswerMaxTokens
	}
	maxContextTokens := cfg.MaxContextTokens
	if maxContextTokens <= 0 {
		maxContextTokens = budget.DefaultMaxContextTokens
	}
	return &Synthesizer{
		model:            chatModel,
		maxTokens:        maxTokens,
		maxContextTokens: maxContextTokens,
	}, nil
}

// Synthesize produces a grounded recommendation for the user query from the
// ranked results. An empty result set short-circuits to [FallbackAnswer]
// without touching the generation backend. Generation failures propagate.
func (s *Synthesizer) Synthesize(ctx context.Context, userQuery string, results []Hit, lat, lng *float64, budgetWon *int) (string, error) {
	if len(results) == 0 {
		return FallbackAnswer, nil
	}

	contextText := s.buildContext(ctx, results, lat, lng, budgetWon)
	prompt := fmt.Sprintf(groundedPromptFormat, contextText, userQuery)

	msgs := []*schema.Message{
		schema.SystemMessage(systemInstruction),
		schema.UserMessage(prompt),
	}

	logging.FromContext(ctx).Debug("rag: generating grounded answer",
		slog.Int("results", len(results)),
		slog.Int("prompt_tokens_est", budget.EstimateMessages(msgs)),
	)

	resp, err := s.model.Generate(ctx, msgs,
		model.WithTemperature(groundedTemperature),
		model.WithMaxTokens(s.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("rag: answer generation failed: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return "", fmt.Errorf("rag: generation returned an empty response")
	}
	return resp.Content, nil
}

// buildContext renders the user constraints and the retrieved restaurants
// into the grounding context. Blocks are rendered rank-first so the token
// budget trims the least relevant candidates.
func (s *Synthesizer) buildContext(ctx context.Context, results []Hit, lat, lng *float64, budgetWon *int) string {
	var header strings.Builder
	if lat != nil && lng != nil {
		fmt.Fprintf(&header, "사용자 위치: 위도 %v, 경도 %v\n", *lat, *lng)
	}
	if budgetWon != nil {
		fmt.Fprintf(&header, "사용자 예산: %s원\n", wonPrinter.Sprintf("%d", *budgetWon))
	}
	header.WriteString("\n검색된 맛집 정보:\n")

	blocks := make([]string, 0, len(results))
	for i, hit := range results {
		blocks = append(blocks, restaurantBlock(i+1, hit))
	}

	trimmed := budget.TrimBlocks(blocks, budget.Estimate(header.String()), s.maxContextTokens)
	if len(trimmed) < len(blocks) {
		logging.FromContext(ctx).Warn("rag: grounding context trimmed to token budget",
			slog.Int("kept", len(trimmed)),
			slog.Int("dropped", len(blocks)-len(trimmed)),
		)
	}

	return header.String() + strings.Join(trimmed, "\n")
}

// restaurantBlock renders one enumerated restaurant entry. Missing
// attributes render as placeholder text rather than empty lines.
func restaurantBlock(idx int, hit Hit) string {
	d := hit.Data

	price := "정보 없음"
	if d.Price > 0 {
		price = wonPrinter.Sprintf("%d", d.Price)
	}
	rating := "N/A"
	if d.Rating > 0 {
		rating = fmt.Sprintf("%.1f", d.Rating)
	}

	return fmt.Sprintf(`
%d. %s
   - 카테고리: %s
   - 위치: %s
   - 가격대: %s원
   - 설명: %s
   - 메뉴: %s
   - 평점: %s점
   - 검색 점수: %.4f
`,
		idx,
		orDefault(d.Name, "이름 없음"),
		orDefault(d.Category, "정보 없음"),
		orDefault(d.Location, "정보 없음"),
		price,
		orDefault(d.Description, "설명 없음"),
		orDefault(d.Menu, "메뉴 정보 없음"),
		rating,
		hit.Score,
	)
}

// orDefault returns s, or fallback when s is empty.
func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
