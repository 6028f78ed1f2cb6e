package database

import (
	"context"
	"fmt"
)

// Tables lists every table of the schema in dependency order: a table only
// references tables before it.
var Tables = []string{
	"system_settings",
	"users",
	"user_preferences",
	"inventory_items",
	"recipes",
	"recipe_ingredients",
	"recipe_instructions",
	"recipe_categories",
	"recipe_tags",
	"meal_plans",
	"meal_plan_meals",
	"shopping_lists",
	"shopping_list_items",
}

// %[1]s key, %[2]s text, %[3]s int, %[4]s float, %[5]s bool, %[6]s timestamp
const schemaTemplate = `-- munchies schema (%[7]s)

CREATE TABLE IF NOT EXISTS system_settings (
    setting_key %[1]s NOT NULL PRIMARY KEY,
    value %[2]s NOT NULL,
    updated_at %[6]s NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id %[1]s NOT NULL PRIMARY KEY,
    email %[1]s NOT NULL UNIQUE,
    name %[2]s NOT NULL,
    provider %[1]s NOT NULL,
    created_at %[6]s NOT NULL
);

CREATE TABLE IF NOT EXISTS user_preferences (
    id %[1]s NOT NULL PRIMARY KEY,
    user_id %[1]s NOT NULL UNIQUE,
    dietary_restrictions %[2]s NOT NULL,
    allergies %[2]s NOT NULL,
    cuisine_preferences %[2]s NOT NULL,
    cooking_skill_level %[1]s NOT NULL,
    max_cooking_time %[3]s NOT NULL,
    serving_size %[3]s NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS inventory_items (
    id %[1]s NOT NULL PRIMARY KEY,
    user_id %[1]s NOT NULL,
    name %[2]s NOT NULL,
    category %[1]s NOT NULL,
    quantity %[4]s NOT NULL,
    unit %[1]s NOT NULL,
    location %[1]s NOT NULL,
    expiration_date %[6]s NULL,
    created_at %[6]s NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS recipes (
    id %[1]s NOT NULL PRIMARY KEY,
    title %[2]s NOT NULL,
    description %[2]s NOT NULL,
    servings %[3]s NOT NULL,
    prep_time %[3]s NOT NULL,
    cook_time %[3]s NOT NULL,
    total_time %[3]s NOT NULL,
    difficulty %[1]s NOT NULL,
    calories %[3]s NOT NULL,
    source %[1]s NOT NULL,
    created_at %[6]s NOT NULL
);

CREATE TABLE IF NOT EXISTS recipe_ingredients (
    id %[1]s NOT NULL PRIMARY KEY,
    recipe_id %[1]s NOT NULL,
    name %[2]s NOT NULL,
    amount %[4]s NOT NULL,
    unit %[1]s NOT NULL,
    sort_order %[3]s NOT NULL,
    UNIQUE (recipe_id, sort_order),
    FOREIGN KEY (recipe_id) REFERENCES recipes (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS recipe_instructions (
    id %[1]s NOT NULL PRIMARY KEY,
    recipe_id %[1]s NOT NULL,
    step %[3]s NOT NULL,
    body %[2]s NOT NULL,
    UNIQUE (recipe_id, step),
    FOREIGN KEY (recipe_id) REFERENCES recipes (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS recipe_categories (
    recipe_id %[1]s NOT NULL,
    category %[1]s NOT NULL,
    PRIMARY KEY (recipe_id, category),
    FOREIGN KEY (recipe_id) REFERENCES recipes (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS recipe_tags (
    recipe_id %[1]s NOT NULL,
    tag %[1]s NOT NULL,
    PRIMARY KEY (recipe_id, tag),
    FOREIGN KEY (recipe_id) REFERENCES recipes (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS meal_plans (
    id %[1]s NOT NULL PRIMARY KEY,
    user_id %[1]s NOT NULL,
    name %[2]s NOT NULL,
    start_date %[6]s NOT NULL,
    end_date %[6]s NOT NULL,
    created_at %[6]s NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS meal_plan_meals (
    id %[1]s NOT NULL PRIMARY KEY,
    meal_plan_id %[1]s NOT NULL,
    recipe_id %[1]s NOT NULL,
    meal_type %[1]s NOT NULL,
    meal_date %[6]s NOT NULL,
    servings %[3]s NOT NULL,
    FOREIGN KEY (meal_plan_id) REFERENCES meal_plans (id) ON DELETE CASCADE,
    FOREIGN KEY (recipe_id) REFERENCES recipes (id)
);

CREATE TABLE IF NOT EXISTS shopping_lists (
    id %[1]s NOT NULL PRIMARY KEY,
    user_id %[1]s NOT NULL,
    name %[2]s NOT NULL,
    created_at %[6]s NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS shopping_list_items (
    id %[1]s NOT NULL PRIMARY KEY,
    shopping_list_id %[1]s NOT NULL,
    name %[2]s NOT NULL,
    category %[1]s NOT NULL,
    quantity %[4]s NOT NULL,
    unit %[1]s NOT NULL,
    sort_order %[3]s NOT NULL,
    checked %[5]s NOT NULL DEFAULT FALSE,
    UNIQUE (shopping_list_id, sort_order),
    FOREIGN KEY (shopping_list_id) REFERENCES shopping_lists (id) ON DELETE CASCADE
);
`

// RenderSchema returns the full DDL script for a dialect.
func RenderSchema(d Dialect) string {
	return fmt.Sprintf(schemaTemplate,
		d.keyType, d.textType, d.intType, d.floatType, d.boolType, d.timeType, d.Name)
}

// Migrate creates any missing table. Every statement is IF NOT EXISTS, so
// running it against an up-to-date database changes nothing.
func Migrate(ctx context.Context, db *DB) error {
	for _, stmt := range ParseSQLStatements(RenderSchema(db.Dialect)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", Classify(err))
		}
	}
	return nil
}
