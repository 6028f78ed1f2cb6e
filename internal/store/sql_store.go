package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/munchies/internal/database"
	"github.com/Rana718/munchies/internal/models"
	"github.com/google/uuid"
)

// SQLStore implements Store and Reader on any dialect known to the database
// package.
type SQLStore struct {
	db      *database.DB
	dialect database.Dialect
	qb      squirrel.StatementBuilderType
	now     func() time.Time
	newID   func() string
}

type Option func(*SQLStore)

// WithClock overrides the time used for created_at/updated_at columns.
func WithClock(now func() time.Time) Option {
	return func(s *SQLStore) {
		s.now = now
	}
}

// WithIDGenerator overrides how ids of users and child rows are generated.
func WithIDGenerator(newID func() string) Option {
	return func(s *SQLStore) {
		s.newID = newID
	}
}

func New(db *database.DB, opts ...Option) *SQLStore {
	s := &SQLStore{
		db:      db,
		dialect: db.Dialect,
		qb:      db.Dialect.Builder(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to the database and wraps it in a SQLStore that owns the
// connection.
func Open(ctx context.Context, provider, url string, dbOpts []database.Option, opts ...Option) (*SQLStore, error) {
	db, err := database.Open(ctx, provider, url, dbOpts...)
	if err != nil {
		return nil, err
	}
	return New(db, opts...), nil
}

func (s *SQLStore) DB() *database.DB {
	return s.db
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func execBuilt(ctx context.Context, q querier, b squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.ExecContext(ctx, query, args...)
}

// insertIfAbsent runs an insert ending in a do-nothing conflict clause and
// reports whether a row was actually written.
func insertIfAbsent(ctx context.Context, q querier, b squirrel.InsertBuilder) (bool, error) {
	res, err := execBuilt(ctx, q, b)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) timestamp() time.Time {
	return s.now().UTC()
}

func (s *SQLStore) UpsertSetting(ctx context.Context, setting models.SystemSetting) error {
	b := s.qb.Insert("system_settings").
		Columns("setting_key", "value", "updated_at").
		Values(setting.Key, setting.Value, s.timestamp()).
		Suffix(s.dialect.OnConflictUpdate([]string{"setting_key"}, []string{"value", "updated_at"}))

	if _, err := execBuilt(ctx, s.db, b); err != nil {
		return fmt.Errorf("upsert setting %s: %w", setting.Key, database.Classify(err))
	}
	return nil
}

func (s *SQLStore) UpsertUserByEmail(ctx context.Context, user models.User) (models.User, bool, error) {
	var (
		stored  models.User
		created bool
	)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		id := s.newID()
		b := s.qb.Insert("users").
			Columns("id", "email", "name", "provider", "created_at").
			Values(id, user.Email, user.Name, user.Provider, s.timestamp()).
			Suffix(s.dialect.OnConflictDoNothing([]string{"email"}, "id"))

		var err error
		if created, err = insertIfAbsent(ctx, tx, b); err != nil {
			return err
		}

		if created && user.Preferences != nil {
			if err := s.insertPreferences(ctx, tx, id, user.Preferences); err != nil {
				return err
			}
		}

		stored, err = s.getUserByEmail(ctx, tx, user.Email)
		return err
	})
	if err != nil {
		return models.User{}, false, fmt.Errorf("upsert user %s: %w", user.Email, database.Classify(err))
	}
	return stored, created, nil
}

func (s *SQLStore) insertPreferences(ctx context.Context, q querier, userID string, p *models.Preferences) error {
	dietary, err := encodeSet(p.DietaryRestrictions)
	if err != nil {
		return err
	}
	allergies, err := encodeSet(p.Allergies)
	if err != nil {
		return err
	}
	cuisines, err := encodeSet(p.CuisinePreferences)
	if err != nil {
		return err
	}

	b := s.qb.Insert("user_preferences").
		Columns("id", "user_id", "dietary_restrictions", "allergies", "cuisine_preferences",
			"cooking_skill_level", "max_cooking_time", "serving_size").
		Values(s.newID(), userID, dietary, allergies, cuisines,
			p.CookingSkillLevel, p.MaxCookingTime, p.ServingSize)
	_, err = execBuilt(ctx, q, b)
	return err
}

func (s *SQLStore) UpsertInventoryItem(ctx context.Context, item models.InventoryItem) (bool, error) {
	var expires sql.NullTime
	if item.ExpirationDate != nil {
		expires = sql.NullTime{Time: item.ExpirationDate.UTC(), Valid: true}
	}

	b := s.qb.Insert("inventory_items").
		Columns("id", "user_id", "name", "category", "quantity", "unit", "location", "expiration_date", "created_at").
		Values(item.ID, item.UserID, item.Name, item.Category, item.Quantity, item.Unit, item.Location, expires, s.timestamp()).
		Suffix(s.dialect.OnConflictDoNothing([]string{"id"}, "id"))

	created, err := insertIfAbsent(ctx, s.db, b)
	if err != nil {
		return false, fmt.Errorf("upsert inventory item %s: %w", item.ID, database.Classify(err))
	}
	return created, nil
}

func (s *SQLStore) UpsertRecipe(ctx context.Context, recipe models.Recipe) (string, bool, error) {
	var created bool

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b := s.qb.Insert("recipes").
			Columns("id", "title", "description", "servings", "prep_time", "cook_time", "total_time",
				"difficulty", "calories", "source", "created_at").
			Values(recipe.ID, recipe.Title, recipe.Description, recipe.Servings, recipe.PrepTime,
				recipe.CookTime, recipe.TotalTime, recipe.Difficulty, recipe.Calories, recipe.Source, s.timestamp()).
			Suffix(s.dialect.OnConflictDoNothing([]string{"id"}, "id"))

		var err error
		if created, err = insertIfAbsent(ctx, tx, b); err != nil || !created {
			return err
		}
		return s.insertRecipeChildren(ctx, tx, recipe)
	})
	if err != nil {
		return "", false, fmt.Errorf("upsert recipe %s: %w", recipe.ID, database.Classify(err))
	}
	return recipe.ID, created, nil
}

func (s *SQLStore) insertRecipeChildren(ctx context.Context, q querier, recipe models.Recipe) error {
	if len(recipe.Ingredients) > 0 {
		b := s.qb.Insert("recipe_ingredients").Columns("id", "recipe_id", "name", "amount", "unit", "sort_order")
		for _, ing := range recipe.Ingredients {
			b = b.Values(s.newID(), recipe.ID, ing.Name, ing.Amount, ing.Unit, ing.Order)
		}
		if _, err := execBuilt(ctx, q, b); err != nil {
			return fmt.Errorf("ingredients: %w", err)
		}
	}

	if len(recipe.Instructions) > 0 {
		b := s.qb.Insert("recipe_instructions").Columns("id", "recipe_id", "step", "body")
		for _, ins := range recipe.Instructions {
			b = b.Values(s.newID(), recipe.ID, ins.Step, ins.Text)
		}
		if _, err := execBuilt(ctx, q, b); err != nil {
			return fmt.Errorf("instructions: %w", err)
		}
	}

	if len(recipe.Categories) > 0 {
		b := s.qb.Insert("recipe_categories").Columns("recipe_id", "category")
		for _, c := range recipe.Categories {
			b = b.Values(recipe.ID, c)
		}
		if _, err := execBuilt(ctx, q, b); err != nil {
			return fmt.Errorf("categories: %w", err)
		}
	}

	if len(recipe.Tags) > 0 {
		b := s.qb.Insert("recipe_tags").Columns("recipe_id", "tag")
		for _, tag := range recipe.Tags {
			b = b.Values(recipe.ID, tag)
		}
		if _, err := execBuilt(ctx, q, b); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
	}

	return nil
}

func (s *SQLStore) UpsertMealPlan(ctx context.Context, plan models.MealPlan) (bool, error) {
	var created bool

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b := s.qb.Insert("meal_plans").
			Columns("id", "user_id", "name", "start_date", "end_date", "created_at").
			Values(plan.ID, plan.UserID, plan.Name, plan.StartDate.UTC(), plan.EndDate.UTC(), s.timestamp()).
			Suffix(s.dialect.OnConflictDoNothing([]string{"id"}, "id"))

		var err error
		if created, err = insertIfAbsent(ctx, tx, b); err != nil || !created || len(plan.Meals) == 0 {
			return err
		}

		meals := s.qb.Insert("meal_plan_meals").
			Columns("id", "meal_plan_id", "recipe_id", "meal_type", "meal_date", "servings")
		for _, meal := range plan.Meals {
			meals = meals.Values(s.newID(), plan.ID, meal.RecipeID, meal.MealType, meal.MealDate.UTC(), meal.Servings)
		}
		if _, err := execBuilt(ctx, tx, meals); err != nil {
			return fmt.Errorf("meals: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("upsert meal plan %s: %w", plan.ID, database.Classify(err))
	}
	return created, nil
}

func (s *SQLStore) UpsertShoppingList(ctx context.Context, list models.ShoppingList) (bool, error) {
	var created bool

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b := s.qb.Insert("shopping_lists").
			Columns("id", "user_id", "name", "created_at").
			Values(list.ID, list.UserID, list.Name, s.timestamp()).
			Suffix(s.dialect.OnConflictDoNothing([]string{"id"}, "id"))

		var err error
		if created, err = insertIfAbsent(ctx, tx, b); err != nil || !created || len(list.Items) == 0 {
			return err
		}

		items := s.qb.Insert("shopping_list_items").
			Columns("id", "shopping_list_id", "name", "category", "quantity", "unit", "sort_order", "checked")
		for _, item := range list.Items {
			items = items.Values(s.newID(), list.ID, item.Name, item.Category, item.Quantity, item.Unit, item.Order, item.Checked)
		}
		if _, err := execBuilt(ctx, tx, items); err != nil {
			return fmt.Errorf("items: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("upsert shopping list %s: %w", list.ID, database.Classify(err))
	}
	return created, nil
}

// String sets are stored as JSON arrays so every dialect can use a plain
// text column.
func encodeSet(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeSet(raw string) ([]string, error) {
	values := []string{}
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}
