package service

import (
	"testing"

	"gamify_backend/internal/model"
	"gamify_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelCurve(t *testing.T) {
	// 第n级需要 100 + floor(100*(n-1)*0.2) 经验
	assert.Equal(t, 100, xpToClear(1))
	assert.Equal(t, 120, xpToClear(2))
	assert.Equal(t, 140, xpToClear(3))

	assert.Equal(t, 0, CumulativeXP(1))
	assert.Equal(t, 100, CumulativeXP(2))
	assert.Equal(t, 220, CumulativeXP(3))
	assert.Equal(t, 360, CumulativeXP(4))

	assert.Equal(t, 1, CalculateLevel(0))
	assert.Equal(t, 1, CalculateLevel(99))
	assert.Equal(t, 2, CalculateLevel(100))
	assert.Equal(t, 3, CalculateLevel(220))
	assert.Equal(t, model.MaxLevel, CalculateLevel(1<<30))
}

func TestCalculateLevelMatchesCumulative(t *testing.T) {
	// 等级恒等式：cum(n) <= xp < cum(n+1)
	for level := 1; level < model.MaxLevel; level++ {
		assert.Equal(t, level, CalculateLevel(CumulativeXP(level)))
		assert.Equal(t, level, CalculateLevel(CumulativeXP(level+1)-1))
	}
}

func TestAddExperienceLevelsUp(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t)

	require.NoError(t, env.progression.AddExperience(employee.ID, 250, "manual"))

	got := env.reloadEmployee(t, employee.ID)
	assert.Equal(t, 250, got.Experience)
	assert.Equal(t, 3, got.Level)
	assert.Equal(t, CumulativeXP(4), got.NextLevelXP)
	assert.Equal(t, CumulativeXP(4)-250, got.RemainingXP)
	assert.InDelta(t, float64(250-CumulativeXP(3))/float64(xpToClear(3))*100, got.ProgressPercent, 0.001)
}

func TestAddExperienceLogsEveryLevelStep(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t)

	// 1 -> 3 连跳两级
	require.NoError(t, env.progression.AddExperience(employee.ID, 250, "manual"))

	var logs []model.EmployeeLog
	require.NoError(t, env.db.Where("employee_id = ?", employee.ID).Order("id").Find(&logs).Error)
	require.Len(t, logs, 3)

	assert.Equal(t, model.ChangeKindExperience, logs[0].ChangeKind)
	assert.Equal(t, 0, logs[0].OldValue)
	assert.Equal(t, 250, logs[0].NewValue)
	assert.Equal(t, "manual", logs[0].Source)

	assert.Equal(t, model.ChangeKindLevel, logs[1].ChangeKind)
	assert.Equal(t, 1, logs[1].OldValue)
	assert.Equal(t, 2, logs[1].NewValue)

	assert.Equal(t, model.ChangeKindLevel, logs[2].ChangeKind)
	assert.Equal(t, 2, logs[2].OldValue)
	assert.Equal(t, 3, logs[2].NewValue)
}

func TestSetExperienceCanLevelDown(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t)
	require.NoError(t, env.progression.AddExperience(employee.ID, 250, "manual"))

	require.NoError(t, env.progression.SetExperience(employee.ID, 50, "correction"))

	got := env.reloadEmployee(t, employee.ID)
	assert.Equal(t, 50, got.Experience)
	assert.Equal(t, 1, got.Level)

	var downLogs []model.EmployeeLog
	require.NoError(t, env.db.Where("employee_id = ? AND change_kind = ? AND source = ?",
		employee.ID, model.ChangeKindLevel, "correction").Order("id").Find(&downLogs).Error)
	require.Len(t, downLogs, 2)
	assert.Equal(t, 3, downLogs[0].OldValue)
	assert.Equal(t, 2, downLogs[0].NewValue)
	assert.Equal(t, 2, downLogs[1].OldValue)
	assert.Equal(t, 1, downLogs[1].NewValue)
}

func TestAddExperienceRejectsNegativeTotal(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t)

	err := env.progression.AddExperience(employee.ID, -10, "manual")
	assert.ErrorIs(t, err, util.ErrInvalidAmount)

	// 整个变更回滚，不留流水
	var count int64
	env.db.Model(&model.EmployeeLog{}).Where("employee_id = ?", employee.ID).Count(&count)
	assert.Zero(t, count)
}

func TestMaxLevelCapsDerivedFields(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t)

	require.NoError(t, env.progression.SetExperience(employee.ID, CumulativeXP(model.MaxLevel)+5000, "manual"))

	got := env.reloadEmployee(t, employee.ID)
	assert.Equal(t, model.MaxLevel, got.Level)
	assert.Zero(t, got.RemainingXP)
	assert.Equal(t, 100.0, got.ProgressPercent)
}

func TestKarmaClampsToRange(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t) // karma 50

	require.NoError(t, env.progression.AddKarma(employee.ID, 200, "bonus"))
	assert.Equal(t, 100, env.reloadEmployee(t, employee.ID).Karma)

	require.NoError(t, env.progression.AddKarma(employee.ID, -500, "penalty"))
	assert.Equal(t, 0, env.reloadEmployee(t, employee.ID).Karma)

	var history []model.KarmaHistory
	require.NoError(t, env.db.Where("employee_id = ?", employee.ID).Order("id").Find(&history).Error)
	require.Len(t, history, 2)
	assert.Equal(t, 50, history[0].OldValue)
	assert.Equal(t, 100, history[0].NewValue)
	assert.Equal(t, 100, history[1].OldValue)
	assert.Equal(t, 0, history[1].NewValue)
}

func TestSetKarma(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t)

	require.NoError(t, env.progression.SetKarma(employee.ID, 75, "review"))
	assert.Equal(t, 75, env.reloadEmployee(t, employee.ID).Karma)

	require.NoError(t, env.progression.SetKarma(employee.ID, -20, "review"))
	assert.Equal(t, 0, env.reloadEmployee(t, employee.ID).Karma)
}

func TestAddCurrency(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t)

	require.NoError(t, env.progression.AddCurrency(employee.ID, 30, "test:1"))
	require.NoError(t, env.progression.AddCurrency(employee.ID, -10, "shop:4"))

	got := env.reloadEmployee(t, employee.ID)
	assert.Equal(t, 20, got.AcoinBalance)

	var logs []model.EmployeeLog
	require.NoError(t, env.db.Where("employee_id = ? AND change_kind = ?",
		employee.ID, model.ChangeKindAcoin).Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, "test:1", logs[0].Source)
	assert.Equal(t, 30, logs[0].NewValue)
	assert.Equal(t, 20, logs[1].NewValue)
}

func TestProgressionRejectsDeactivatedAccount(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t, func(e *model.Employee) { e.IsActive = false })

	assert.ErrorIs(t, env.progression.AddExperience(employee.ID, 10, "manual"), util.ErrAccountDeactivated)
	assert.ErrorIs(t, env.progression.AddKarma(employee.ID, 10, "manual"), util.ErrAccountDeactivated)
	assert.ErrorIs(t, env.progression.AddCurrency(employee.ID, 10, "manual"), util.ErrAccountDeactivated)
}

func TestProgressionUnknownEmployee(t *testing.T) {
	env := newTestEnv(t)
	assert.ErrorIs(t, env.progression.AddExperience(9999, 10, "manual"), util.ErrEmployeeNotFound)
}
