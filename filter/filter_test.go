package filter

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobo-ai/jobo-go/jobo"
	"github.com/jobo-ai/jobo-go/pager"
)

func float(v float64) *float64 { return &v }

func testJob() jobo.Job {
	posted := time.Now().AddDate(0, 0, -3)
	return jobo.Job{
		Title:           "Senior Go Engineer",
		Company:         jobo.Company{Name: "Acme"},
		Source:          "greenhouse",
		IsRemote:        true,
		EmploymentType:  "full_time",
		ExperienceLevel: "senior",
		CreatedAt:       time.Now().AddDate(0, -1, 0),
		DatePosted:      &posted,
		Locations: []jobo.JobLocation{
			{City: "Berlin", Country: "Germany"},
			{City: "Lisbon", Country: "Portugal"},
		},
		Compensation: &jobo.JobCompensation{Min: float(90000), Max: float(120000), Currency: "EUR"},
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `IsRemote`,
		},
		{
			name:        "empty expression",
			expression:  "   ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `contains(Title, "unclosed`,
			wantErr:    true,
		},
		{
			name:        "unknown field",
			expression:  `Salary > 10`,
			wantErr:     true,
			errContains: "failed to compile expression",
		},
		{
			name:       "non boolean result",
			expression: `Title`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `IsRemote and inCountry("germany") and SalaryMin >= 80000 and Posted > daysAgo(7)`,
		},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompilationError
				assert.True(t, errors.As(err, &compErr))
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expression, filter.Expression())
		})
	}
}

func TestMatch(t *testing.T) {
	job := testJob()

	tests := []struct {
		expression string
		expected   bool
	}{
		{`IsRemote`, true},
		{`contains(Title, "go")`, true},
		{`startsWith(Title, "junior")`, false},
		{`endsWith(lower(Title), "engineer")`, true},
		{`Company == "Acme" and Source == "greenhouse"`, true},
		{`inCountry("PORTUGAL")`, true},
		{`inCity("Paris")`, false},
		{`"Berlin" in Cities`, true},
		{`SalaryMin >= 100000`, false},
		{`SalaryMax > 100000 and Currency == "EUR"`, true},
		{`daysSince(Posted) <= 7`, true},
		{`Posted > daysAgo(1)`, false},
		{`Posted < now()`, true},
		{`EmploymentType == "full_time" and ExperienceLevel != "junior"`, true},
		{`Job.Title == Title`, true},
		{`len(Countries) == 2`, true},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, filter.Match(job))
		})
	}
}

func TestMatchMissingOptionalFields(t *testing.T) {
	job := jobo.Job{Title: "Barista", CreatedAt: time.Now().AddDate(0, 0, -40)}

	compiler := NewExprCompiler()
	for expression, expected := range map[string]bool{
		`SalaryMin == 0 and Currency == ""`: true,
		`inCountry("Germany")`:              false,
		`daysSince(Posted) > 30`:            true,
		`len(Cities) == 0`:                  true,
	} {
		filter, err := compiler.Compile(expression)
		require.NoError(t, err, expression)
		assert.Equal(t, expected, filter.Match(job), expression)
	}
}

func TestRuntimeErrorDoesNotMatch(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"boom": func() (bool, error) { return false, fmt.Errorf("boom") },
	}))

	filter, err := compiler.Compile(`boom()`)
	require.NoError(t, err)
	assert.False(t, filter.Match(testJob()))
}

func TestCacheEffectiveness(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2))

	first, err := compiler.Compile(`IsRemote`)
	require.NoError(t, err)
	again, err := compiler.Compile(`  IsRemote  `)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, compiler.Size())

	_, err = compiler.Compile(`SalaryMin > 0`)
	require.NoError(t, err)
	_, err = compiler.Compile(`SalaryMax > 0`)
	require.NoError(t, err)
	assert.Equal(t, 2, compiler.Size())

	// IsRemote was evicted as least recently used
	evicted, err := compiler.Compile(`IsRemote`)
	require.NoError(t, err)
	assert.NotSame(t, first, evicted)

	compiler.Clear()
	assert.Zero(t, compiler.Size())
}

func TestConcurrentMatch(t *testing.T) {
	compiler := NewExprCompiler(WithCache(10))
	job := testJob()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			filter, err := compiler.Compile(`IsRemote and inCity("berlin")`)
			if assert.NoError(t, err) {
				assert.True(t, filter.Match(job))
			}
		}()
	}
	wg.Wait()
}

func TestManager(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.RegisterFilters(map[string]string{
		"remote":  `IsRemote`,
		"berlin":  `inCity("Berlin")`,
		"well-pd": `SalaryMin >= 150000`,
	}))
	assert.Equal(t, []string{"berlin", "remote", "well-pd"}, m.ListFilters())

	err := m.RegisterFilters(map[string]string{"ok": `IsRemote`, "broken": `(`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	_, exists := m.GetFilter("ok")
	assert.False(t, exists, "a failed batch must not register anything")

	require.NoError(t, m.RegisterFilter("remote", `not IsRemote`))
	remote, ok := m.GetFilter("remote")
	require.True(t, ok)
	assert.False(t, remote.Match(testJob()))
}

func TestManagerResolve(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterFilter("remote", `IsRemote`))

	f, err := m.Resolve("", "")
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = m.Resolve("remote", "")
	require.NoError(t, err)
	assert.True(t, f.Match(testJob()))

	f, err = m.Resolve("remote", `not IsRemote`)
	require.NoError(t, err)
	assert.False(t, f.Match(testJob()))

	_, err = m.Resolve("missing", "")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestApply(t *testing.T) {
	remote := testJob()
	onsite := testJob()
	onsite.IsRemote = false
	onsite.Title = "Onsite"

	seq := func(yield func(jobo.Job, error) bool) {
		for _, job := range []jobo.Job{remote, onsite, remote} {
			if !yield(job, nil) {
				return
			}
		}
		yield(jobo.Job{}, errors.New("page failed"))
	}

	filter, err := NewExprCompiler().Compile(`IsRemote`)
	require.NoError(t, err)

	jobs, err := pager.Collect(Apply(seq, filter))
	assert.EqualError(t, err, "page failed")
	assert.Len(t, jobs, 2)

	all, err := pager.Collect(Apply(seq, nil))
	assert.Error(t, err)
	assert.Len(t, all, 3)
}
