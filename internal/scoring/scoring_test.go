package scoring

import (
	"testing"

	"gamify_backend/internal/model"
	"gamify_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleQuestion(position int, points float64, correctPos int, total int) model.TestQuestion {
	q := model.TestQuestion{
		QuestionType: model.QuestionTypeSingle,
		Text:         "pick one",
		Points:       points,
		Position:     position,
	}
	for i := 1; i <= total; i++ {
		q.Options = append(q.Options, model.AnswerOption{
			Text:      "option",
			Position:  i,
			IsCorrect: i == correctPos,
		})
	}
	return q
}

func multipleQuestion(position int, points float64, correct []int, total int) model.TestQuestion {
	correctSet := make(map[int]bool, len(correct))
	for _, c := range correct {
		correctSet[c] = true
	}
	q := model.TestQuestion{
		QuestionType: model.QuestionTypeMultiple,
		Text:         "pick all that apply",
		Points:       points,
		Position:     position,
	}
	for i := 1; i <= total; i++ {
		q.Options = append(q.Options, model.AnswerOption{
			Text:      "option",
			Position:  i,
			IsCorrect: correctSet[i],
		})
	}
	return q
}

func textQuestion(position int, points float64) model.TestQuestion {
	return model.TestQuestion{
		QuestionType: model.QuestionTypeText,
		Text:         "explain",
		Points:       points,
		Position:     position,
	}
}

func TestGradeSingleChoice(t *testing.T) {
	questions := []model.TestQuestion{singleQuestion(1, 10, 2, 4)}

	tests := []struct {
		name      string
		answer    Answer
		wantScore float64
		wantOK    bool
	}{
		{"correct option", Answer{Options: []int{2}}, 10, true},
		{"wrong option", Answer{Options: []int{3}}, 0, false},
		{"unknown option ignored", Answer{Options: []int{9}}, 0, false},
		{"two selections invalid", Answer{Options: []int{1, 2}}, 0, false},
		{"empty selection", Answer{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Grade(questions, map[int]Answer{1: tt.answer})
			require.Len(t, result.Questions, 1)
			assert.Equal(t, tt.wantScore, result.Score)
			assert.Equal(t, tt.wantOK, result.Questions[0].IsCorrect)
			assert.Equal(t, 10.0, result.MaxScore)
		})
	}
}

func TestGradeUnansweredQuestionScoresZero(t *testing.T) {
	questions := []model.TestQuestion{
		singleQuestion(1, 10, 1, 3),
		singleQuestion(2, 5, 1, 3),
	}

	result := Grade(questions, map[int]Answer{1: {Options: []int{1}}})
	require.Len(t, result.Questions, 2)
	assert.Equal(t, 10.0, result.Score)
	assert.Equal(t, 15.0, result.MaxScore)
	assert.False(t, result.Questions[1].IsCorrect)
	assert.Zero(t, result.Questions[1].Score)
}

func TestGradeMultipleChoice(t *testing.T) {
	// 4 options, options 1 and 3 correct, 10 points
	questions := []model.TestQuestion{multipleQuestion(1, 10, []int{1, 3}, 4)}

	tests := []struct {
		name        string
		selected    []int
		wantScore   float64
		wantCorrect bool
		wantPartial bool
	}{
		{"all correct", []int{1, 3}, 10, true, false},
		{"one of two correct", []int{1}, 5, false, false},
		{"one correct one incorrect cancels", []int{1, 2}, 0, false, true},
		{"all selected cancels out", []int{1, 2, 3, 4}, 0, false, true},
		{"only incorrect floors at zero", []int{2, 4}, 0, false, false},
		{"duplicates count once", []int{1, 1, 3}, 10, true, false},
		{"unknown positions ignored", []int{1, 3, 42}, 10, true, false},
		{"nothing selected", nil, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Grade(questions, map[int]Answer{1: {Options: tt.selected}})
			require.Len(t, result.Questions, 1)
			assert.Equal(t, tt.wantScore, result.Score)
			assert.Equal(t, tt.wantCorrect, result.Questions[0].IsCorrect)
			assert.Equal(t, tt.wantPartial, result.Questions[0].PartiallyCorrect)
		})
	}
}

func TestGradeMultipleChoiceRoundsHalfUp(t *testing.T) {
	// 3 correct options, 1 selected: 10 * 1/3 = 3.333... -> 3.3
	questions := []model.TestQuestion{multipleQuestion(1, 10, []int{1, 2, 3}, 5)}
	result := Grade(questions, map[int]Answer{1: {Options: []int{1}}})
	assert.Equal(t, 3.3, result.Score)

	// 2 of 3 correct: 10 * 2/3 = 6.666... -> 6.7
	result = Grade(questions, map[int]Answer{1: {Options: []int{1, 2}}})
	assert.Equal(t, 6.7, result.Score)
}

func TestGradeAggregatesWithoutFloatDrift(t *testing.T) {
	// 0.1+0.2 style sums must not leak binary float noise
	questions := []model.TestQuestion{
		singleQuestion(1, 0.1, 1, 2),
		singleQuestion(2, 0.2, 1, 2),
	}
	result := Grade(questions, map[int]Answer{
		1: {Options: []int{1}},
		2: {Options: []int{1}},
	})
	assert.Equal(t, 0.3, result.Score)
	assert.Equal(t, 0.3, result.MaxScore)
}

func TestGradeTextQuestionPendsAtZero(t *testing.T) {
	questions := []model.TestQuestion{
		singleQuestion(1, 5, 1, 2),
		textQuestion(2, 10),
	}

	result := Grade(questions, map[int]Answer{
		1: {Options: []int{1}},
		2: {Text: "free form answer"},
	})

	require.Len(t, result.Questions, 2)
	assert.Equal(t, 5.0, result.Score)
	assert.Equal(t, 15.0, result.MaxScore)
	assert.True(t, result.HasTextQuestions())
	assert.Equal(t, "free form answer", result.Questions[1].SubmittedText)
	assert.Zero(t, result.Questions[1].Score)
}

func TestHasTextQuestions(t *testing.T) {
	noText := Grade([]model.TestQuestion{singleQuestion(1, 5, 1, 2)}, nil)
	assert.False(t, noText.HasTextQuestions())

	withText := Grade([]model.TestQuestion{textQuestion(1, 5)}, nil)
	assert.True(t, withText.HasTextQuestions())
}

func TestApplyOverride(t *testing.T) {
	questions := []model.TestQuestion{
		singleQuestion(1, 5, 1, 2),
		textQuestion(2, 10),
	}
	grade := func() Result {
		return Grade(questions, map[int]Answer{
			1: {Options: []int{1}},
			2: {Text: "essay"},
		})
	}

	t.Run("full score", func(t *testing.T) {
		r := grade()
		require.NoError(t, r.ApplyOverride(2, 10, "well argued"))
		r.Recompute()
		assert.Equal(t, 15.0, r.Score)
		assert.True(t, r.Questions[1].IsCorrect)
		assert.False(t, r.Questions[1].PartiallyCorrect)
		require.NotNil(t, r.Questions[1].ModerationScore)
		assert.Equal(t, 10.0, *r.Questions[1].ModerationScore)
		assert.Equal(t, "well argued", r.Questions[1].ModerationComment)
	})

	t.Run("partial score", func(t *testing.T) {
		r := Grade(questions, map[int]Answer{2: {Text: "essay"}})
		require.NoError(t, r.ApplyOverride(2, 4.25, ""))
		r.Recompute()
		assert.Equal(t, 4.3, r.Score) // rounded half up
		assert.False(t, r.Questions[1].IsCorrect)
		assert.True(t, r.Questions[1].PartiallyCorrect)
	})

	t.Run("unknown question number", func(t *testing.T) {
		r := grade()
		assert.ErrorIs(t, r.ApplyOverride(7, 5, ""), util.ErrInvalidQuestionNumber)
	})

	t.Run("not a text question", func(t *testing.T) {
		r := grade()
		assert.ErrorIs(t, r.ApplyOverride(1, 5, ""), util.ErrNotTextQuestion)
	})

	t.Run("score out of range", func(t *testing.T) {
		r := grade()
		assert.ErrorIs(t, r.ApplyOverride(2, 11, ""), util.ErrScoreExceedsMaximum)
		assert.ErrorIs(t, r.ApplyOverride(2, -1, ""), util.ErrScoreExceedsMaximum)
	})
}
