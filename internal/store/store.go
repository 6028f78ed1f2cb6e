package store

import (
	"context"
	"errors"

	"github.com/Rana718/munchies/internal/models"
)

var ErrNotFound = errors.New("not found")

// Store is the write side used by the seeder. Every method is its own unit of
// work: nested records are written in one transaction together with their
// parent, but no transaction spans two calls.
type Store interface {
	// UpsertSetting inserts the setting or overwrites the value of an
	// existing key.
	UpsertSetting(ctx context.Context, setting models.SystemSetting) error

	// UpsertUserByEmail creates the user and its preferences when the email
	// is unknown. An existing user is left untouched. Either way the stored
	// user is returned and created reports which branch was taken.
	UpsertUserByEmail(ctx context.Context, user models.User) (stored models.User, created bool, err error)

	// UpsertInventoryItem inserts the item unless its id already exists.
	UpsertInventoryItem(ctx context.Context, item models.InventoryItem) (created bool, err error)

	// UpsertRecipe creates the recipe with its ingredients, instructions,
	// categories and tags unless the id already exists. The returned id is
	// the one to reference from meals.
	UpsertRecipe(ctx context.Context, recipe models.Recipe) (id string, created bool, err error)

	// UpsertMealPlan creates the plan with its meals unless the id exists.
	UpsertMealPlan(ctx context.Context, plan models.MealPlan) (created bool, err error)

	// UpsertShoppingList creates the list with its items unless the id exists.
	UpsertShoppingList(ctx context.Context, list models.ShoppingList) (created bool, err error)

	Close() error
}

// Reader reads back what the seeder wrote.
type Reader interface {
	GetSetting(ctx context.Context, key string) (models.SystemSetting, error)
	ListSettings(ctx context.Context) ([]models.SystemSetting, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListInventory(ctx context.Context, userID string) ([]models.InventoryItem, error)
	GetRecipe(ctx context.Context, id string) (models.Recipe, error)
	GetMealPlan(ctx context.Context, id string) (models.MealPlan, error)
	GetShoppingList(ctx context.Context, id string) (models.ShoppingList, error)
	CountRows(ctx context.Context) (map[string]int, error)
}
