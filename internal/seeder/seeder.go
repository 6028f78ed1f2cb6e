// Package seeder writes the seed catalog into the store. Every write is an
// upsert keyed on a stable identifier, so running the seeder any number of
// times leaves the database in the same state as running it once.
package seeder

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/Rana718/munchies/internal/catalog"
	"github.com/Rana718/munchies/internal/models"
	"github.com/Rana718/munchies/internal/store"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

type Step string

const (
	StepSettings     Step = "settings"
	StepUser         Step = "user"
	StepInventory    Step = "inventory"
	StepRecipe       Step = "recipe"
	StepMealPlan     Step = "meal_plan"
	StepShoppingList Step = "shopping_list"
)

// Steps lists the steps in the order they run. Each one only references
// records written by the steps before it.
var Steps = []Step{StepSettings, StepUser, StepInventory, StepRecipe, StepMealPlan, StepShoppingList}

// StepError reports the step a run stopped at.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("seed step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepResult counts what a step did. Settings are always overwritten and are
// counted as Updated; every other record is either Created or left Existing.
type StepResult struct {
	Step     Step
	Created  int
	Existing int
	Updated  int
}

type Report struct {
	UserID   string
	RecipeID string
	Steps    []StepResult
	Duration time.Duration
}

// Result returns the counts of one step, zero if the step did not run.
func (r *Report) Result(step Step) StepResult {
	for _, res := range r.Steps {
		if res.Step == step {
			return res
		}
	}
	return StepResult{Step: step}
}

// Created is the number of records created across all steps.
func (r *Report) Created() int {
	n := 0
	for _, res := range r.Steps {
		n += res.Created
	}
	return n
}

type Seeder struct {
	store       store.Store
	catalog     *catalog.Catalog
	logger      *log.Logger
	now         func() time.Time
	concurrency int
}

type Option func(*Seeder)

func WithLogger(logger *log.Logger) Option {
	return func(s *Seeder) {
		s.logger = logger
	}
}

// WithClock sets the reference time relative catalog dates are resolved
// against.
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) {
		s.now = now
	}
}

// WithConcurrency bounds the number of inventory items written at once.
// Values below 1 mean sequential.
func WithConcurrency(n int) Option {
	return func(s *Seeder) {
		if n < 1 {
			n = 1
		}
		s.concurrency = n
	}
}

func New(st store.Store, cat *catalog.Catalog, opts ...Option) *Seeder {
	s := &Seeder{
		store:       st,
		catalog:     cat,
		logger:      log.New(io.Discard),
		now:         time.Now,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Opener creates the store a seed run works on.
type Opener func(ctx context.Context) (store.Store, error)

// Seed opens a store, runs the seeder on it and closes the store again,
// whether the run succeeded or not.
func Seed(ctx context.Context, open Opener, cat *catalog.Catalog, opts ...Option) (report *Report, err error) {
	st, err := open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close store: %w", closeErr)
		}
	}()

	return New(st, cat, opts...).Run(ctx)
}

// run holds what later steps need from earlier ones.
type run struct {
	now      time.Time
	userID   string
	recipeID string
}

// Run executes every step in order and stops at the first failure. The
// returned report covers the steps that completed, also on error.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	r := &run{now: s.now()}
	report := &Report{}

	stepFuncs := map[Step]func(context.Context, *run) (StepResult, error){
		StepSettings:     s.seedSettings,
		StepUser:         s.seedUser,
		StepInventory:    s.seedInventory,
		StepRecipe:       s.seedRecipe,
		StepMealPlan:     s.seedMealPlan,
		StepShoppingList: s.seedShoppingList,
	}

	start := time.Now()
	for _, step := range Steps {
		if err := ctx.Err(); err != nil {
			return report, &StepError{Step: step, Err: err}
		}

		s.logger.Debug("running step", "step", step)
		res, err := stepFuncs[step](ctx, r)
		if err != nil {
			s.logger.Error("step failed", "step", step, "err", err)
			return report, &StepError{Step: step, Err: err}
		}
		res.Step = step
		report.Steps = append(report.Steps, res)
		report.UserID, report.RecipeID = r.userID, r.recipeID

		s.logger.Info("step done", "step", step, "created", res.Created, "existing", res.Existing, "updated", res.Updated)
	}
	report.Duration = time.Since(start)
	return report, nil
}

func (s *Seeder) seedSettings(ctx context.Context, _ *run) (StepResult, error) {
	var res StepResult
	for _, setting := range s.catalog.Settings {
		if err := s.store.UpsertSetting(ctx, setting); err != nil {
			return res, err
		}
		s.logger.Debug("setting", "key", setting.Key, "value", setting.Value)
		res.Updated++
	}
	return res, nil
}

func (s *Seeder) seedUser(ctx context.Context, r *run) (StepResult, error) {
	user, created, err := s.store.UpsertUserByEmail(ctx, s.catalog.User)
	if err != nil {
		return StepResult{}, err
	}
	r.userID = user.ID
	s.logger.Debug("user", "email", user.Email, "id", user.ID, "created", created)
	return countOne(created), nil
}

func (s *Seeder) seedInventory(ctx context.Context, r *run) (StepResult, error) {
	items := make([]models.InventoryItem, 0, len(s.catalog.Inventory))
	for _, entry := range s.catalog.Inventory {
		item := models.InventoryItem{
			ID:       InventoryItemID(r.userID, entry.Name),
			UserID:   r.userID,
			Name:     entry.Name,
			Category: entry.Category,
			Quantity: entry.Quantity,
			Unit:     entry.Unit,
			Location: entry.Location,
		}
		if entry.Expires != nil {
			expires, err := entry.Expires.Resolve(r.now)
			if err != nil {
				return StepResult{}, fmt.Errorf("inventory item %q: %w", entry.Name, err)
			}
			item.ExpirationDate = &expires
		}
		items = append(items, item)
	}

	var created atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok, err := s.store.UpsertInventoryItem(gctx, item)
			if err != nil {
				return err
			}
			if ok {
				created.Add(1)
			}
			s.logger.Debug("inventory item", "id", item.ID, "created", ok)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StepResult{}, err
	}

	n := int(created.Load())
	return StepResult{Created: n, Existing: len(items) - n}, nil
}

func (s *Seeder) seedRecipe(ctx context.Context, r *run) (StepResult, error) {
	id, created, err := s.store.UpsertRecipe(ctx, s.catalog.Recipe)
	if err != nil {
		return StepResult{}, err
	}
	r.recipeID = id
	s.logger.Debug("recipe", "id", id, "created", created)
	return countOne(created), nil
}

func (s *Seeder) seedMealPlan(ctx context.Context, r *run) (StepResult, error) {
	entry := s.catalog.MealPlan

	start, err := entry.Start.Resolve(r.now)
	if err != nil {
		return StepResult{}, fmt.Errorf("start: %w", err)
	}
	end, err := entry.End.Resolve(r.now)
	if err != nil {
		return StepResult{}, fmt.Errorf("end: %w", err)
	}

	plan := models.MealPlan{
		ID:        entry.ID,
		UserID:    r.userID,
		Name:      entry.Name,
		StartDate: start,
		EndDate:   end,
	}
	for i, m := range entry.Meals {
		date, err := m.Date.Resolve(r.now)
		if err != nil {
			return StepResult{}, fmt.Errorf("meal %d: %w", i, err)
		}
		recipeID := m.RecipeID
		if recipeID == "" {
			recipeID = r.recipeID
		}
		plan.Meals = append(plan.Meals, models.Meal{
			RecipeID: recipeID,
			MealType: m.MealType,
			MealDate: date,
			Servings: m.Servings,
		})
	}

	created, err := s.store.UpsertMealPlan(ctx, plan)
	if err != nil {
		return StepResult{}, err
	}
	s.logger.Debug("meal plan", "id", plan.ID, "created", created)
	return countOne(created), nil
}

func (s *Seeder) seedShoppingList(ctx context.Context, r *run) (StepResult, error) {
	list := s.catalog.ShoppingList
	list.UserID = r.userID

	created, err := s.store.UpsertShoppingList(ctx, list)
	if err != nil {
		return StepResult{}, err
	}
	s.logger.Debug("shopping list", "id", list.ID, "created", created)
	return countOne(created), nil
}

func countOne(created bool) StepResult {
	if created {
		return StepResult{Created: 1}
	}
	return StepResult{Existing: 1}
}
