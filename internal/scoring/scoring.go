// Package scoring grades a submitted answer set against a test's
// questions. All arithmetic runs on exact decimals; per-question and
// aggregate scores are rounded to one decimal place, half up.
package scoring

import (
	"time"

	"gamify_backend/internal/model"
	"gamify_backend/internal/util"

	"github.com/shopspring/decimal"
)

// Answer 单题提交内容，按题目位置（1-based）为键
type Answer struct {
	Options []int  `json:"options,omitempty"` // 选中的选项序号（1-based）
	Text    string `json:"text,omitempty"`    // text 题的原文
}

// QuestionResult 结果负载中的逐题条目
type QuestionResult struct {
	Position          int      `json:"position"`
	Text              string   `json:"text"`
	Type              string   `json:"type"`
	Points            float64  `json:"points"`
	Score             float64  `json:"score"`
	IsCorrect         bool     `json:"isCorrect"`
	PartiallyCorrect  bool     `json:"partiallyCorrect"`
	SelectedOptions   []int    `json:"selectedOptions,omitempty"`
	SubmittedText     string   `json:"submittedText,omitempty"`
	ModerationScore   *float64 `json:"moderationScore,omitempty"`
	ModerationComment string   `json:"moderationComment,omitempty"`
}

// Result 一次尝试的结构化评分结果，入库前整体序列化
type Result struct {
	Questions   []QuestionResult `json:"questions"`
	Score       float64          `json:"score"`
	MaxScore    float64          `json:"maxScore"`
	ModeratorID *uint            `json:"moderatorId,omitempty"`
	ModeratedAt *time.Time       `json:"moderatedAt,omitempty"`
}

// HasTextQuestions reports whether any question needs human moderation.
func (r *Result) HasTextQuestions() bool {
	for _, q := range r.Questions {
		if q.Type == model.QuestionTypeText {
			return true
		}
	}
	return false
}

// Grade scores every question in position order. Questions the answer
// map does not cover still produce an entry with a zero score.
func Grade(questions []model.TestQuestion, answers map[int]Answer) Result {
	result := Result{Questions: make([]QuestionResult, 0, len(questions))}

	maxScore := decimal.Zero
	for _, q := range questions {
		entry := QuestionResult{
			Position: q.Position,
			Text:     q.Text,
			Type:     q.QuestionType,
			Points:   q.Points,
		}
		ans, answered := answers[q.Position]

		switch q.QuestionType {
		case model.QuestionTypeSingle:
			if answered {
				entry.SelectedOptions = ans.Options
				entry.Score, entry.IsCorrect = scoreSingle(q, ans)
			}
		case model.QuestionTypeMultiple:
			if answered {
				entry.SelectedOptions = ans.Options
				entry.Score, entry.IsCorrect, entry.PartiallyCorrect = scoreMultiple(q, ans)
			}
		case model.QuestionTypeText:
			// 零分挂起，等待人工评分
			entry.SubmittedText = ans.Text
		}

		maxScore = maxScore.Add(decimal.NewFromFloat(q.Points))
		result.Questions = append(result.Questions, entry)
	}

	result.MaxScore = maxScore.Round(1).InexactFloat64()
	result.Recompute()
	return result
}

// Recompute sums per-question scores into the aggregate. Called after
// automatic grading and again after moderation overrides are merged.
func (r *Result) Recompute() {
	total := decimal.Zero
	for _, q := range r.Questions {
		total = total.Add(decimal.NewFromFloat(q.Score))
	}
	r.Score = total.Round(1).InexactFloat64()
}

// ApplyOverride merges a moderator-assigned score for a text question
// into the payload. The caller recomputes the aggregate afterwards.
func (r *Result) ApplyOverride(questionNumber int, score float64, comment string) error {
	var entry *QuestionResult
	for i := range r.Questions {
		if r.Questions[i].Position == questionNumber {
			entry = &r.Questions[i]
			break
		}
	}
	if entry == nil {
		return util.ErrInvalidQuestionNumber
	}
	if entry.Type != model.QuestionTypeText {
		return util.ErrNotTextQuestion
	}
	if score < 0 || score > entry.Points {
		return util.ErrScoreExceedsMaximum
	}

	rounded := decimal.NewFromFloat(score).Round(1).InexactFloat64()
	entry.Score = rounded
	entry.ModerationScore = &rounded
	entry.ModerationComment = comment
	entry.IsCorrect = rounded == entry.Points
	entry.PartiallyCorrect = rounded > 0 && rounded < entry.Points
	return nil
}

func scoreSingle(q model.TestQuestion, ans Answer) (float64, bool) {
	if len(ans.Options) != 1 {
		return 0, false
	}
	for _, opt := range q.Options {
		if opt.Position == ans.Options[0] {
			if opt.IsCorrect {
				return decimal.NewFromFloat(q.Points).Round(1).InexactFloat64(), true
			}
			return 0, false
		}
	}
	return 0, false
}

// scoreMultiple awards points*(correctSelected-incorrectSelected)/correctCount,
// floored at zero. Every wrong selection cancels one right selection's credit.
func scoreMultiple(q model.TestQuestion, ans Answer) (score float64, correct, partial bool) {
	correctByPos := make(map[int]bool, len(q.Options))
	correctCount := 0
	for _, opt := range q.Options {
		correctByPos[opt.Position] = opt.IsCorrect
		if opt.IsCorrect {
			correctCount++
		}
	}
	if correctCount == 0 {
		return 0, false, false
	}

	selectedCorrect := 0
	selectedIncorrect := 0
	seen := make(map[int]bool, len(ans.Options))
	for _, pos := range ans.Options {
		isCorrect, exists := correctByPos[pos]
		if !exists || seen[pos] {
			continue
		}
		seen[pos] = true
		if isCorrect {
			selectedCorrect++
		} else {
			selectedIncorrect++
		}
	}

	raw := decimal.NewFromFloat(q.Points).
		Mul(decimal.NewFromInt(int64(selectedCorrect - selectedIncorrect))).
		Div(decimal.NewFromInt(int64(correctCount)))
	if raw.IsNegative() {
		raw = decimal.Zero
	}

	correct = selectedCorrect == correctCount && selectedIncorrect == 0
	partial = selectedCorrect > 0 && selectedIncorrect > 0
	return raw.Round(1).InexactFloat64(), correct, partial
}
