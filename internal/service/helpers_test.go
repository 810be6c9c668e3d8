package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gamify_backend/internal/model"
	"gamify_backend/internal/repository"
	"gamify_backend/pkg/database"
	"gamify_backend/pkg/logger"
	"gamify_backend/pkg/mailer"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

var dbSeq int64

type testEnv struct {
	db *gorm.DB

	employeeRepo    *repository.EmployeeRepository
	testRepo        *repository.TestRepository
	attemptRepo     *repository.AttemptRepository
	achievementRepo *repository.AchievementRepository

	progression *ProgressionService
	catalog     *CatalogService
	settlement  *SettlementService
	attempts    *AttemptService
	testAdmin   *TestAdminService
}

// 每个测试一个独立的共享缓存内存库，连接池内可见同一数据
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		db:              db,
		employeeRepo:    repository.NewEmployeeRepository(db),
		testRepo:        repository.NewTestRepository(db),
		attemptRepo:     repository.NewAttemptRepository(db),
		achievementRepo: repository.NewAchievementRepository(db),
	}

	env.progression = NewProgressionService(env.employeeRepo, db)
	env.catalog = NewCatalogService(env.testRepo, env.attemptRepo, nil)
	env.settlement = NewSettlementService(env.attemptRepo, env.achievementRepo, env.employeeRepo, env.progression, mailer.NoopMailer{}, db)
	env.attempts = NewAttemptService(env.attemptRepo, env.employeeRepo, env.catalog, env.progression, env.settlement, mailer.NoopMailer{}, 10, db)
	env.testAdmin = NewTestAdminService(env.testRepo, env.catalog, db)

	return env
}

var employeeSeq int64

func (env *testEnv) createEmployee(t *testing.T, mutate ...func(*model.Employee)) *model.Employee {
	t.Helper()

	n := atomic.AddInt64(&employeeSeq, 1)
	employee := &model.Employee{
		Email:       fmt.Sprintf("employee%d@example.com", n),
		Password:    "hashed",
		Name:        fmt.Sprintf("Employee %d", n),
		Role:        model.RoleEmployee,
		IsActive:    true,
		Level:       1,
		Karma:       model.DefaultKarma,
		NextLevelXP: CumulativeXP(2),
		RemainingXP: CumulativeXP(2),
	}
	for _, m := range mutate {
		m(employee)
	}
	require.NoError(t, env.employeeRepo.Create(employee))
	return employee
}

// createTest 建一条已发布的测试并挂上题目
func (env *testEnv) createTest(t *testing.T, test model.Test, questions []model.TestQuestion) *model.Test {
	t.Helper()

	if test.Title == "" {
		test.Title = "sample test"
	}
	test.IsPublished = true
	require.NoError(t, env.testRepo.Create(&test))

	for i := range questions {
		questions[i].TestID = test.ID
		if questions[i].Position == 0 {
			questions[i].Position = i + 1
		}
		options := questions[i].Options
		questions[i].Options = nil
		require.NoError(t, env.db.Create(&questions[i]).Error)
		for j := range options {
			options[j].QuestionID = questions[i].ID
			if options[j].Position == 0 {
				options[j].Position = j + 1
			}
			require.NoError(t, env.db.Create(&options[j]).Error)
		}
	}
	return &test
}

func (env *testEnv) createFinishedAttempt(t *testing.T, employeeID, testID uint, status model.AttemptStatus, endedAt time.Time) *model.TestAttempt {
	t.Helper()

	attempt := &model.TestAttempt{
		EmployeeID: employeeID,
		TestID:     testID,
		Status:     status,
		StartedAt:  endedAt.Add(-10 * time.Minute),
		EndedAt:    &endedAt,
	}
	require.NoError(t, env.attemptRepo.Create(attempt))
	return attempt
}

func (env *testEnv) reloadEmployee(t *testing.T, id uint) *model.Employee {
	t.Helper()
	employee, err := env.employeeRepo.FindByID(id)
	require.NoError(t, err)
	return employee
}

func singleChoice(points float64, correctPos, total int) model.TestQuestion {
	q := model.TestQuestion{
		QuestionType: model.QuestionTypeSingle,
		Text:         "pick one",
		Points:       points,
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

func multipleChoice(points float64, correct []int, total int) model.TestQuestion {
	correctSet := make(map[int]bool, len(correct))
	for _, c := range correct {
		correctSet[c] = true
	}
	q := model.TestQuestion{
		QuestionType: model.QuestionTypeMultiple,
		Text:         "pick all that apply",
		Points:       points,
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

func freeText(points float64) model.TestQuestion {
	return model.TestQuestion{
		QuestionType: model.QuestionTypeText,
		Text:         "explain in your own words",
		Points:       points,
	}
}
