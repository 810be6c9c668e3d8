package service

import (
	"testing"

	"gamify_backend/internal/model"
	"gamify_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() TestCreateRequest {
	return TestCreateRequest{
		Title:        "onboarding",
		PassingScore: 7,
		AcoinReward:  25,
		IsPublished:  true,
		Questions: []QuestionRequest{
			{
				QuestionType: model.QuestionTypeSingle,
				Text:         "pick one",
				Points:       10,
				Options: []AnswerOptionRequest{
					{Text: "wrong"},
					{Text: "right", IsCorrect: true},
				},
			},
			{
				QuestionType: model.QuestionTypeText,
				Text:         "explain",
				Points:       5,
			},
		},
	}
}

func TestCreateTestComputesMaxScore(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.testAdmin.CreateTest(validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, 15.0, created.MaxScore)

	questions, err := env.catalog.GetQuestions(created.ID)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, 1, questions[0].Position)
	assert.Equal(t, 2, questions[1].Position)
	require.Len(t, questions[0].Options, 2)
	assert.Equal(t, 1, questions[0].Options[0].Position)
}

func TestCreateTestValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		mutate func(*TestCreateRequest)
	}{
		{"text question with options", func(r *TestCreateRequest) {
			r.Questions[1].Options = []AnswerOptionRequest{{Text: "nope"}}
		}},
		{"single question without correct option", func(r *TestCreateRequest) {
			r.Questions[0].Options = []AnswerOptionRequest{{Text: "a"}, {Text: "b"}}
		}},
		{"single question with one option", func(r *TestCreateRequest) {
			r.Questions[0].Options = []AnswerOptionRequest{{Text: "a", IsCorrect: true}}
		}},
		{"negative points", func(r *TestCreateRequest) {
			r.Questions[0].Points = -1
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			_, err := env.testAdmin.CreateTest(req)
			require.Error(t, err)
			assert.Equal(t, util.KindValidation, util.KindOf(err))
		})
	}

	t.Run("multiple question needs a correct option", func(t *testing.T) {
		req := validCreateRequest()
		req.Questions = []QuestionRequest{{
			QuestionType: model.QuestionTypeMultiple,
			Text:         "pick all",
			Points:       10,
			Options:      []AnswerOptionRequest{{Text: "a"}, {Text: "b"}},
		}}
		_, err := env.testAdmin.CreateTest(req)
		require.Error(t, err)
		assert.Equal(t, util.KindValidation, util.KindOf(err))
	})

	t.Run("unknown prerequisite", func(t *testing.T) {
		req := validCreateRequest()
		missing := uint(9999)
		req.RequiredTestID = &missing
		_, err := env.testAdmin.CreateTest(req)
		assert.ErrorIs(t, err, util.ErrTestNotFound)
	})
}

func TestUpdateTestReplacesQuestions(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.testAdmin.CreateTest(validCreateRequest())
	require.NoError(t, err)

	update := validCreateRequest()
	update.Title = "onboarding v2"
	update.Questions = []QuestionRequest{{
		QuestionType: model.QuestionTypeSingle,
		Text:         "the only question",
		Points:       4,
		Options: []AnswerOptionRequest{
			{Text: "right", IsCorrect: true},
			{Text: "wrong"},
		},
	}}

	updated, err := env.testAdmin.UpdateTest(created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "onboarding v2", updated.Title)
	assert.Equal(t, 4.0, updated.MaxScore)

	questions, err := env.catalog.GetQuestions(created.ID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, 1, questions[0].Position)
	assert.Equal(t, "the only question", questions[0].Text)
}

func TestUpdateTestRejectsSelfPrerequisite(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.testAdmin.CreateTest(validCreateRequest())
	require.NoError(t, err)

	update := validCreateRequest()
	update.RequiredTestID = &created.ID
	_, err = env.testAdmin.UpdateTest(created.ID, update)
	require.Error(t, err)
	assert.Equal(t, util.KindValidation, util.KindOf(err))
}

func TestPublishTest(t *testing.T) {
	env := newTestEnv(t)
	req := validCreateRequest()
	req.IsPublished = false
	created, err := env.testAdmin.CreateTest(req)
	require.NoError(t, err)

	require.NoError(t, env.testAdmin.PublishTest(created.ID, true))
	got, err := env.catalog.GetTest(created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPublished)

	assert.ErrorIs(t, env.testAdmin.PublishTest(9999, true), util.ErrTestNotFound)
}
