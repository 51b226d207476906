package filter

import (
	"fmt"
	"testing"
	"time"

	"github.com/jobo-ai/jobo-go/jobo"
)

// generateTestJobs creates test job data
func generateTestJobs(count int) []jobo.Job {
	jobs := make([]jobo.Job, count)
	countries := []string{"Germany", "France", "Portugal", "Spain"}

	for i := 0; i < count; i++ {
		posted := time.Now().AddDate(0, 0, -i%30)
		jobs[i] = jobo.Job{
			Title:      fmt.Sprintf("Engineer %d", i),
			Company:    jobo.Company{Name: fmt.Sprintf("Company %d", i%50)},
			Source:     []string{"greenhouse", "lever", "workday"}[i%3],
			IsRemote:   i%2 == 0,
			DatePosted: &posted,
			Locations:  []jobo.JobLocation{{Country: countries[i%len(countries)]}},
			Compensation: &jobo.JobCompensation{
				Min: float(float64(50000 + (i%10)*10000)),
			},
		}
	}

	return jobs
}

func BenchmarkCompile(b *testing.B) {
	expressions := []struct {
		name string
		expr string
	}{
		{"simple", `IsRemote`},
		{"complex", `IsRemote and inCountry("germany") and SalaryMin > 70000 and daysSince(Posted) < 14`},
	}

	for _, tc := range expressions {
		b.Run(tc.name, func(b *testing.B) {
			compiler := NewExprCompiler()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := compiler.Compile(tc.expr); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCompileWithCache(b *testing.B) {
	compiler := NewExprCompiler(WithCache(100))
	expression := `IsRemote and inCountry("germany")`

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := compiler.Compile(expression); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMatch(b *testing.B) {
	jobs := generateTestJobs(1000)
	filter, err := NewExprCompiler().Compile(`IsRemote and inCountry("germany") and SalaryMin > 70000`)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		matches := 0
		for _, job := range jobs {
			if filter.Match(job) {
				matches++
			}
		}
		_ = matches
	}
}
