package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/munchies/internal/database"
	"github.com/Rana718/munchies/internal/models"
)

func queryRowBuilt(ctx context.Context, q querier, b squirrel.Sqlizer, dest ...any) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if err := q.QueryRowContext(ctx, query, args...).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// queryEach runs b and calls scan once per row.
func queryEach(ctx context.Context, q querier, b squirrel.Sqlizer, scan func(*sql.Rows) error) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLStore) GetSetting(ctx context.Context, key string) (models.SystemSetting, error) {
	setting := models.SystemSetting{}
	b := s.qb.Select("setting_key", "value", "updated_at").
		From("system_settings").
		Where(squirrel.Eq{"setting_key": key})

	if err := queryRowBuilt(ctx, s.db, b, &setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
		return models.SystemSetting{}, fmt.Errorf("get setting %s: %w", key, database.Classify(err))
	}
	return setting, nil
}

func (s *SQLStore) ListSettings(ctx context.Context) ([]models.SystemSetting, error) {
	var settings []models.SystemSetting
	b := s.qb.Select("setting_key", "value", "updated_at").From("system_settings").OrderBy("setting_key")

	err := queryEach(ctx, s.db, b, func(rows *sql.Rows) error {
		var setting models.SystemSetting
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return err
		}
		settings = append(settings, setting)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", database.Classify(err))
	}
	return settings, nil
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := s.getUserByEmail(ctx, s.db, email)
	if err != nil {
		return models.User{}, fmt.Errorf("get user %s: %w", email, database.Classify(err))
	}
	return user, nil
}

func (s *SQLStore) getUserByEmail(ctx context.Context, q querier, email string) (models.User, error) {
	var user models.User
	b := s.qb.Select("id", "email", "name", "provider", "created_at").
		From("users").
		Where(squirrel.Eq{"email": email})

	if err := queryRowBuilt(ctx, q, b, &user.ID, &user.Email, &user.Name, &user.Provider, &user.CreatedAt); err != nil {
		return models.User{}, err
	}

	prefs, err := s.getPreferences(ctx, q, user.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return models.User{}, err
	}
	user.Preferences = prefs
	return user, nil
}

func (s *SQLStore) getPreferences(ctx context.Context, q querier, userID string) (*models.Preferences, error) {
	var (
		p                            models.Preferences
		dietary, allergies, cuisines string
	)
	b := s.qb.Select("dietary_restrictions", "allergies", "cuisine_preferences",
		"cooking_skill_level", "max_cooking_time", "serving_size").
		From("user_preferences").
		Where(squirrel.Eq{"user_id": userID})

	if err := queryRowBuilt(ctx, q, b, &dietary, &allergies, &cuisines,
		&p.CookingSkillLevel, &p.MaxCookingTime, &p.ServingSize); err != nil {
		return nil, err
	}

	var err error
	if p.DietaryRestrictions, err = decodeSet(dietary); err != nil {
		return nil, fmt.Errorf("dietary_restrictions: %w", err)
	}
	if p.Allergies, err = decodeSet(allergies); err != nil {
		return nil, fmt.Errorf("allergies: %w", err)
	}
	if p.CuisinePreferences, err = decodeSet(cuisines); err != nil {
		return nil, fmt.Errorf("cuisine_preferences: %w", err)
	}
	return &p, nil
}

func (s *SQLStore) ListInventory(ctx context.Context, userID string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	b := s.qb.Select("id", "user_id", "name", "category", "quantity", "unit", "location", "expiration_date", "created_at").
		From("inventory_items").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("name", "id")

	err := queryEach(ctx, s.db, b, func(rows *sql.Rows) error {
		var (
			item    models.InventoryItem
			expires sql.NullTime
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Category, &item.Quantity,
			&item.Unit, &item.Location, &expires, &item.CreatedAt); err != nil {
			return err
		}
		if expires.Valid {
			t := expires.Time
			item.ExpirationDate = &t
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list inventory of %s: %w", userID, database.Classify(err))
	}
	return items, nil
}

// GetRecipe returns the recipe with ingredients in order, instructions by
// step, and categories and tags sorted alphabetically.
func (s *SQLStore) GetRecipe(ctx context.Context, id string) (models.Recipe, error) {
	recipe, err := s.getRecipe(ctx, id)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("get recipe %s: %w", id, database.Classify(err))
	}
	return recipe, nil
}

func (s *SQLStore) getRecipe(ctx context.Context, id string) (models.Recipe, error) {
	var r models.Recipe
	b := s.qb.Select("id", "title", "description", "servings", "prep_time", "cook_time", "total_time",
		"difficulty", "calories", "source", "created_at").
		From("recipes").
		Where(squirrel.Eq{"id": id})

	if err := queryRowBuilt(ctx, s.db, b, &r.ID, &r.Title, &r.Description, &r.Servings, &r.PrepTime,
		&r.CookTime, &r.TotalTime, &r.Difficulty, &r.Calories, &r.Source, &r.CreatedAt); err != nil {
		return models.Recipe{}, err
	}

	ingredients := s.qb.Select("id", "name", "amount", "unit", "sort_order").
		From("recipe_ingredients").Where(squirrel.Eq{"recipe_id": id}).OrderBy("sort_order")
	err := queryEach(ctx, s.db, ingredients, func(rows *sql.Rows) error {
		var ing models.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Amount, &ing.Unit, &ing.Order); err != nil {
			return err
		}
		r.Ingredients = append(r.Ingredients, ing)
		return nil
	})
	if err != nil {
		return models.Recipe{}, fmt.Errorf("ingredients: %w", err)
	}

	instructions := s.qb.Select("id", "step", "body").
		From("recipe_instructions").Where(squirrel.Eq{"recipe_id": id}).OrderBy("step")
	err = queryEach(ctx, s.db, instructions, func(rows *sql.Rows) error {
		var ins models.Instruction
		if err := rows.Scan(&ins.ID, &ins.Step, &ins.Text); err != nil {
			return err
		}
		r.Instructions = append(r.Instructions, ins)
		return nil
	})
	if err != nil {
		return models.Recipe{}, fmt.Errorf("instructions: %w", err)
	}

	if r.Categories, err = s.listStrings(ctx, "recipe_categories", "category", id); err != nil {
		return models.Recipe{}, fmt.Errorf("categories: %w", err)
	}
	if r.Tags, err = s.listStrings(ctx, "recipe_tags", "tag", id); err != nil {
		return models.Recipe{}, fmt.Errorf("tags: %w", err)
	}
	return r, nil
}

func (s *SQLStore) listStrings(ctx context.Context, table, column, recipeID string) ([]string, error) {
	var values []string
	b := s.qb.Select(column).From(table).Where(squirrel.Eq{"recipe_id": recipeID}).OrderBy(column)
	err := queryEach(ctx, s.db, b, func(rows *sql.Rows) error {
		var v string
		if err := rows.Scan(&v); err != nil {
			return err
		}
		values = append(values, v)
		return nil
	})
	return values, err
}

func (s *SQLStore) GetMealPlan(ctx context.Context, id string) (models.MealPlan, error) {
	var plan models.MealPlan
	b := s.qb.Select("id", "user_id", "name", "start_date", "end_date", "created_at").
		From("meal_plans").
		Where(squirrel.Eq{"id": id})

	err := queryRowBuilt(ctx, s.db, b, &plan.ID, &plan.UserID, &plan.Name, &plan.StartDate, &plan.EndDate, &plan.CreatedAt)
	if err == nil {
		meals := s.qb.Select("id", "recipe_id", "meal_type", "meal_date", "servings").
			From("meal_plan_meals").Where(squirrel.Eq{"meal_plan_id": id}).OrderBy("meal_date", "meal_type", "id")
		err = queryEach(ctx, s.db, meals, func(rows *sql.Rows) error {
			var meal models.Meal
			if err := rows.Scan(&meal.ID, &meal.RecipeID, &meal.MealType, &meal.MealDate, &meal.Servings); err != nil {
				return err
			}
			plan.Meals = append(plan.Meals, meal)
			return nil
		})
	}
	if err != nil {
		return models.MealPlan{}, fmt.Errorf("get meal plan %s: %w", id, database.Classify(err))
	}
	return plan, nil
}

func (s *SQLStore) GetShoppingList(ctx context.Context, id string) (models.ShoppingList, error) {
	var list models.ShoppingList
	b := s.qb.Select("id", "user_id", "name", "created_at").
		From("shopping_lists").
		Where(squirrel.Eq{"id": id})

	err := queryRowBuilt(ctx, s.db, b, &list.ID, &list.UserID, &list.Name, &list.CreatedAt)
	if err == nil {
		items := s.qb.Select("id", "name", "category", "quantity", "unit", "sort_order", "checked").
			From("shopping_list_items").Where(squirrel.Eq{"shopping_list_id": id}).OrderBy("sort_order")
		err = queryEach(ctx, s.db, items, func(rows *sql.Rows) error {
			var item models.ShoppingListItem
			if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Quantity, &item.Unit, &item.Order, &item.Checked); err != nil {
				return err
			}
			list.Items = append(list.Items, item)
			return nil
		})
	}
	if err != nil {
		return models.ShoppingList{}, fmt.Errorf("get shopping list %s: %w", id, database.Classify(err))
	}
	return list, nil
}

// CountRows returns the number of rows of every table in the schema.
func (s *SQLStore) CountRows(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(database.Tables))
	for _, table := range database.Tables {
		var n int
		if err := queryRowBuilt(ctx, s.db, s.qb.Select("COUNT(*)").From(table), &n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, database.Classify(err))
		}
		counts[table] = n
	}
	return counts, nil
}
