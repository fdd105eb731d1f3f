package matching

import (
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	e, err := NewEngine(cfg, log)
	require.NoError(t, err)
	return e
}

func assertAccounting(t *testing.T, res *Result) {
	t.Helper()
	assert.Equal(t, res.TotalSlots, len(res.Assignments)+res.UnfilledTotal())

	seen := map[uuid.UUID]bool{}
	for _, a := range res.Assignments {
		assert.False(t, seen[a.ResourceID], "ресурс назначен дважды")
		seen[a.ResourceID] = true
	}
}

func TestEngine_FillsAllSeatsWithDistinctResources(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	in := Input{
		Projects: []Project{testProject("Billing", role("Backend", 2, "go: intermediate"))},
		Resources: []Resource{
			testResource("Anna", 40, "go: expert"),
			testResource("Boris", 60, "go: intermediate"),
			testResource("Vera", 20, "go: expert"),
		},
	}

	res, err := e.Run(in)
	require.NoError(t, err)
	assertAccounting(t, res)

	require.Len(t, res.Assignments, 2)
	assert.Equal(t, 0, res.UnfilledTotal())
	names := []string{res.Assignments[0].ResourceName, res.Assignments[1].ResourceName}
	assert.ElementsMatch(t, []string{"Anna", "Vera"}, names)
	assert.NotEqual(t, uuid.Nil, res.RunID)
}

func TestEngine_ReportsShortfallAsUnfilled(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	in := Input{
		Projects: []Project{testProject("Billing", role("Architect", 3, "go: expert"))},
		Resources: []Resource{
			testResource("Anna", 40, "go: expert"),
			testResource("Boris", 10, "go: beginner"),
		},
	}

	res, err := e.Run(in)
	require.NoError(t, err)
	assertAccounting(t, res)

	require.Len(t, res.Assignments, 1)
	assert.Equal(t, "Anna", res.Assignments[0].ResourceName)
	assert.Equal(t, map[string]int{"Architect": 2}, res.Unfilled)
}

func TestEngine_SkipsCommittedResource(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	busy := testResource("Anna", 0, "go: expert")
	busy.Committed = true
	free := testResource("Boris", 90, "go: beginner")

	res, err := e.Run(Input{
		Projects:  []Project{testProject("Billing", role("Backend", 1, "go: beginner"))},
		Resources: []Resource{busy, free},
	})
	require.NoError(t, err)

	require.Len(t, res.Assignments, 1)
	assert.Equal(t, free.ID, res.Assignments[0].ResourceID)
}

func TestEngine_GlobalOptimumBeatsGreedy(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	// Жадный выбор отдал бы эксперта первой роли, и вторая осталась бы пустой.
	expert := testResource("Expert", 10, "x: expert")
	novice := testResource("Novice", 90, "x: beginner")
	project := testProject("Platform",
		role("A", 1, "x: beginner"),
		role("B", 1, "x: expert"),
	)

	res, err := e.Run(Input{Projects: []Project{project}, Resources: []Resource{expert, novice}})
	require.NoError(t, err)
	assertAccounting(t, res)

	require.Len(t, res.Assignments, 2)
	byRole := map[string]uuid.UUID{}
	for _, a := range res.Assignments {
		byRole[a.Role] = a.ResourceID
	}
	assert.Equal(t, novice.ID, byRole["A"])
	assert.Equal(t, expert.ID, byRole["B"])
	assert.Empty(t, res.Unfilled)
}

func TestEngine_PrefersCheaperEquivalentResource(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	cheap := testResource("Cheap", 20, "go: intermediate")
	pricey := testResource("Pricey", 80, "go: intermediate")

	res, err := e.Run(Input{
		Projects:  []Project{testProject("Billing", role("Backend", 1, "go: beginner"))},
		Resources: []Resource{pricey, cheap},
	})
	require.NoError(t, err)
	require.Len(t, res.Assignments, 1)
	assert.Equal(t, cheap.ID, res.Assignments[0].ResourceID)
}

func TestEngine_MultiProjectDemand(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	p1 := testProject("Billing", role("Backend", 1, "go: beginner"))
	p2 := testProject("Portal", role("Frontend", 1, "react: beginner"))

	res, err := e.Run(Input{
		Projects: []Project{p1, p2},
		Resources: []Resource{
			testResource("Anna", 40, "go: expert"),
			testResource("Boris", 40, "react: expert"),
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Assignments, 2)
	assert.Equal(t, p1.ID, res.Assignments[0].ProjectID)
	assert.Equal(t, "Anna", res.Assignments[0].ResourceName)
	assert.Equal(t, p2.ID, res.Assignments[1].ProjectID)
	assert.Equal(t, "Boris", res.Assignments[1].ResourceName)
}

func TestEngine_Deterministic(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	in := Input{
		Projects: []Project{testProject("Billing", role("Backend", 2, "go: beginner"), role("QA", 1, "go: beginner"))},
		Resources: []Resource{
			testResource("Anna", 50, "go: beginner"),
			testResource("Boris", 50, "go: beginner"),
			testResource("Vera", 50, "go: beginner"),
			testResource("Gleb", 50, "go: beginner"),
		},
	}

	first, err := e.Run(in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.Run(in)
		require.NoError(t, err)
		assert.Equal(t, first.Assignments, again.Assignments)
		assert.Equal(t, first.Unfilled, again.Unfilled)
	}
}

func TestEngine_ZeroQuantityGivesEmptyResult(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	res, err := e.Run(Input{
		Projects:  []Project{testProject("Billing", role("Backend", 0, "go: beginner"))},
		Resources: []Resource{testResource("Anna", 40, "go: expert")},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Assignments)
	assert.Equal(t, 0, res.TotalSlots)
}

func TestEngine_NoEligibleCandidates(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	res, err := e.Run(Input{
		Projects:  []Project{testProject("Billing", role("Backend", 2, "go: expert"))},
		Resources: []Resource{testResource("Anna", 40, "python: expert")},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Assignments)
	assert.Equal(t, map[string]int{"Backend": 2}, res.Unfilled)
}

func TestEngine_RaisedSentinelIsReported(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InfeasibleCost = 5
	e := newTestEngine(t, cfg)

	res, err := e.Run(Input{
		Projects:  []Project{testProject("Billing", role("Backend", 1, "go: beginner"))},
		Resources: []Resource{testResource("Anna", 40, "go: expert")},
	})
	require.NoError(t, err)
	assert.Greater(t, res.Sentinel, 5.0)

	codes := []WarningCode{}
	for _, w := range res.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, WarnSentinelRaised)
}

func TestEngine_DataQualityWarnings(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	sloppy := testResource("Anna", 40, "go: expert", "broken entry")
	sloppy.Experience = ExperienceDeclarations{"dev: many"}

	res, err := e.Run(Input{
		Projects:  []Project{testProject("Billing", role("Backend", 1, "go: beginner"), role("Analyst", 2))},
		Resources: []Resource{sloppy},
	})
	require.NoError(t, err)
	assertAccounting(t, res)
	assert.Equal(t, 3, res.TotalSlots)
	assert.Equal(t, 2, res.Unfilled["Analyst"])

	codes := map[WarningCode]int{}
	for _, w := range res.Warnings {
		codes[w.Code]++
	}
	assert.Equal(t, 1, codes[WarnMalformedSkill])
	assert.Equal(t, 1, codes[WarnMalformedExperience])
	assert.Equal(t, 1, codes[WarnUnscorableRole])
}

func TestEngine_ValidationErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSlots = 2
	cfg.MaxCandidates = 2
	e := newTestEngine(t, cfg)
	anna := testResource("Anna", 40, "go: expert")

	cases := []struct {
		name string
		in   Input
	}{
		{"нет проектов", Input{Resources: []Resource{anna}}},
		{"нет кандидатов", Input{Projects: []Project{testProject("Billing", role("Backend", 1, "go: beginner"))}}},
		{"роль без имени", Input{
			Projects:  []Project{testProject("Billing", role("  ", 1, "go: beginner"))},
			Resources: []Resource{anna},
		}},
		{"отрицательная ставка", Input{
			Projects:  []Project{testProject("Billing", role("Backend", 1, "go: beginner"))},
			Resources: []Resource{testResource("Boris", -5, "go: expert")},
		}},
		{"нет даты начала", Input{
			Projects:  []Project{{ID: uuid.New(), Name: "Billing", OrgID: testOrg, Roles: []RoleRequirement{role("Backend", 1, "go: beginner")}}},
			Resources: []Resource{anna},
		}},
		{"слишком много слотов", Input{
			Projects:  []Project{testProject("Billing", role("Backend", 3, "go: beginner"))},
			Resources: []Resource{anna},
		}},
		{"слишком много кандидатов", Input{
			Projects:  []Project{testProject("Billing", role("Backend", 1, "go: beginner"))},
			Resources: []Resource{anna, anna, anna},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := e.Run(tc.in)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var verr *ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}

func TestNewEngine_RejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.Rate = -1
	_, err := NewEngine(cfg, nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	cfg = DefaultConfig()
	cfg.Weights.RateCeiling = 0
	_, err = NewEngine(cfg, nil)
	assert.Error(t, err)
}

func TestEngine_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSlots = 1
	e := newTestEngine(t, cfg)
	anna := testResource("Anna", 40, "go: expert")

	ok := Input{
		Projects:  []Project{testProject("Billing", role("Backend", 1, "go: beginner"))},
		Resources: []Resource{anna},
	}
	assert.NoError(t, e.Validate(ok))

	tooMany := Input{
		Projects:  []Project{testProject("Billing", role("Backend", 2, "go: beginner"))},
		Resources: []Resource{anna},
	}
	assert.ErrorIs(t, e.Validate(tooMany), ErrInvalidInput)
}

func TestEngine_HugeRateIsValidationError(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	in := Input{
		Projects: []Project{testProject("Billing", role("Backend", 2, "go: beginner"))},
		Resources: []Resource{
			testResource("Anna", 40, "go: expert"),
			testResource("Boris", 1e308, "go: expert"),
		},
	}

	res, err := e.Run(in)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrSolver))
}
