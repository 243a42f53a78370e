package planner

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/emilianohg/dutyroster/internal/config"
	"github.com/emilianohg/dutyroster/internal/engine"
	"github.com/emilianohg/dutyroster/internal/models"
	"github.com/emilianohg/dutyroster/internal/repository"
)

// DayResult is the outcome of one generated and stored day.
type DayResult struct {
	Date     string
	RunID    string
	Response engine.Response
}

// Planner loads scheduling inputs from the store, runs the engine and saves the result.
type Planner struct {
	db       *sql.DB
	settings models.ManagerSettings
	parallel bool
	newRunID func() string
}

func New(db *sql.DB, cfg *config.Config) *Planner {
	p := &Planner{db: db, newRunID: uuid.NewString}
	if cfg != nil {
		p.settings = cfg.Manager
		p.parallel = cfg.ParallelDays
	}
	return p
}

// SetParallel overrides the configured parallel_days setting.
func (p *Planner) SetParallel(parallel bool) {
	p.parallel = parallel
}

// LoadRequest assembles the engine input for date.
func (p *Planner) LoadRequest(date time.Time) (engine.Request, error) {
	req, err := p.loadBase()
	if err != nil {
		return engine.Request{}, err
	}
	return p.loadDay(req, date)
}

// loadBase reads the inputs that do not depend on the target date.
func (p *Planner) loadBase() (engine.Request, error) {
	req := engine.Request{Settings: p.settings}
	var err error

	if req.Members, err = repository.NewMemberRepo(p.db).GetAll(); err != nil {
		return req, fmt.Errorf("failed to load members: %w", err)
	}
	if req.MemberSkills, err = repository.NewMemberRepo(p.db).GetMemberSkills(); err != nil {
		return req, fmt.Errorf("failed to load member skills: %w", err)
	}
	if req.Skills, err = repository.NewSkillRepo(p.db).GetAll(); err != nil {
		return req, fmt.Errorf("failed to load skills: %w", err)
	}
	if req.Tasks, err = repository.NewTaskRepo(p.db).GetAll(); err != nil {
		return req, fmt.Errorf("failed to load tasks: %w", err)
	}
	if req.OrderItems, err = repository.NewOrderSetRepo(p.db).GetAll(); err != nil {
		return req, fmt.Errorf("failed to load order set: %w", err)
	}
	if req.Rules, err = repository.NewRuleRepo(p.db).GetAll(); err != nil {
		return req, fmt.Errorf("failed to load rules: %w", err)
	}
	return req, nil
}

// loadDay fills in the shifts and locked assignments dated date.
func (p *Planner) loadDay(base engine.Request, date time.Time) (engine.Request, error) {
	day := date.Format(models.DateLayout)
	req := base
	req.Date = date

	shifts, err := repository.NewShiftRepo(p.db).GetByDate(day)
	if err != nil {
		return req, fmt.Errorf("failed to load shifts for %s: %w", day, err)
	}
	req.Shifts = shifts

	locked, err := repository.NewAssignmentRepo(p.db).GetLocked(day, day)
	if err != nil {
		return req, fmt.Errorf("failed to load locked assignments for %s: %w", day, err)
	}
	req.Locked = locked

	return req, nil
}

// Generate schedules days consecutive dates starting at start and stores each day.
// Every day gets its own run id and its own transaction.
func (p *Planner) Generate(ctx context.Context, start time.Time, days int) ([]DayResult, error) {
	if days < 1 {
		days = 1
	}

	base, err := p.loadBase()
	if err != nil {
		return nil, err
	}

	results := make([]DayResult, days)
	run := func(i int) error {
		date := start.AddDate(0, 0, i)
		req, err := p.loadDay(base, date)
		if err != nil {
			return err
		}
		runID := p.newRunID()
		resp := engine.Generate(req)
		for j := range resp.Assignments {
			resp.Assignments[j].RunID = runID
		}
		results[i] = DayResult{Date: resp.Date, RunID: runID, Response: resp}
		return nil
	}

	if p.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < days; i++ {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return run(i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := 0; i < days; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := run(i); err != nil {
				return nil, err
			}
		}
	}

	// Writes stay sequential, SQLite allows one writer.
	reports := repository.NewReportRepo(p.db)
	for i := range results {
		if err := ctx.Err(); err != nil {
			return results[:i], err
		}
		if err := reports.SaveDay(toReport(results[i])); err != nil {
			return results[:i], fmt.Errorf("failed to save %s: %w", results[i].Date, err)
		}
	}

	return results, nil
}

func toReport(r DayResult) repository.DayReport {
	return repository.DayReport{
		Date:        r.Date,
		RunID:       r.RunID,
		Assignments: r.Response.Assignments,
		Workloads:   r.Response.Workloads,
		Unassigned:  r.Response.Unassigned,
	}
}
