package filter

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/jobo-ai/jobo-go/jobo"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	extra      map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.extra, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{extra: map[string]any{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	extra map[string]any
	cache *lruCache[CompiledFilter]
}

// Compile compiles an expression into an executable filter. Identifiers are
// checked against the job environment, so a misspelled field fails here
// rather than silently matching nothing.
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	// Check cache if enabled
	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(newEnvironment(jobo.Job{}, c.extra)),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		extra:      c.extra,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

// Match evaluates the filter against a job. Jobs that make the expression
// fail at runtime do not match.
func (f *exprFilter) Match(job jobo.Job) bool {
	result, err := expr.Run(f.program, newEnvironment(job, f.extra))
	if err != nil {
		return false
	}

	// AsBool() guarantees the type
	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// newEnvironment exposes a job's fields and the helper functions to an
// expression
func newEnvironment(job jobo.Job, extra map[string]any) map[string]any {
	env := make(map[string]any, 32+len(extra))
	addHelperFunctions(env)

	var countries, cities []string
	for _, loc := range job.Locations {
		if loc.Country != "" {
			countries = append(countries, loc.Country)
		}
		if loc.City != "" {
			cities = append(cities, loc.City)
		}
	}

	var salaryMin, salaryMax float64
	var currency string
	if comp := job.Compensation; comp != nil {
		if comp.Min != nil {
			salaryMin = *comp.Min
		}
		if comp.Max != nil {
			salaryMax = *comp.Max
		}
		currency = comp.Currency
	}

	env["Job"] = job
	env["Title"] = job.Title
	env["Company"] = job.Company.Name
	env["Description"] = job.Description
	env["Source"] = job.Source
	env["IsRemote"] = job.IsRemote
	env["Posted"] = job.PostedAt()
	env["EmploymentType"] = job.EmploymentType
	env["WorkplaceType"] = job.WorkplaceType
	env["ExperienceLevel"] = job.ExperienceLevel
	env["SalaryMin"] = salaryMin
	env["SalaryMax"] = salaryMax
	env["Currency"] = currency
	env["Countries"] = countries
	env["Cities"] = cities

	env["inCountry"] = containsFold(countries)
	env["inCity"] = containsFold(cities)

	maps.Copy(env, extra)
	return env
}

// addHelperFunctions adds the job independent helper functions
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	// Current time
	env["now"] = time.Now
}

func containsFold(values []string) func(string) bool {
	return func(target string) bool {
		return slices.ContainsFunc(values, func(v string) bool {
			return strings.EqualFold(v, target)
		})
	}
}
