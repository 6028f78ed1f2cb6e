// Package catalog holds the seed catalog: the settings and example records the
// seeder writes. The catalog is data, loaded from a YAML (or JSON) file or from
// the built-in default, so a different catalog never needs a code change.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Rana718/munchies/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid seed catalog")

type Catalog struct {
	Settings     []models.SystemSetting `yaml:"settings"`
	User         models.User            `yaml:"user"`
	Inventory    []InventoryItem        `yaml:"inventory"`
	Recipe       models.Recipe          `yaml:"recipe"`
	MealPlan     MealPlan               `yaml:"meal_plan"`
	ShoppingList models.ShoppingList    `yaml:"shopping_list"`
}

type InventoryItem struct {
	Name     string  `yaml:"name"`
	Category string  `yaml:"category"`
	Quantity float64 `yaml:"quantity"`
	Unit     string  `yaml:"unit"`
	Location string  `yaml:"location"`
	Expires  *Date   `yaml:"expires,omitempty"`
}

type MealPlan struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Start Date   `yaml:"start"`
	End   Date   `yaml:"end"`
	Meals []Meal `yaml:"meals"`
}

type Meal struct {
	// RecipeID defaults to the recipe seeded in the same run.
	RecipeID string `yaml:"recipe_id,omitempty"`
	MealType string `yaml:"meal_type"`
	Date     Date   `yaml:"date"`
	Servings int    `yaml:"servings"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// DefaultBytes returns the raw built-in catalog, as written by `munchies init`.
func DefaultBytes() []byte {
	return bytes.Clone(defaultCatalog)
}

// Load reads and validates a catalog file. An empty path loads the default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes a catalog and validates it. Unknown fields are rejected so a
// typo does not silently drop data.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: catalog is empty", ErrInvalidCatalog)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks the structural rules the seeder relies on. Dates are not
// checked here; a malformed date fails the step that resolves it.
func (c *Catalog) Validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	keys := make(map[string]bool)
	for i, s := range c.Settings {
		if strings.TrimSpace(s.Key) == "" {
			addf("settings[%d]: key is required", i)
			continue
		}
		if keys[s.Key] {
			addf("settings[%d]: duplicate key %q", i, s.Key)
		}
		keys[s.Key] = true
	}

	if !strings.Contains(c.User.Email, "@") {
		addf("user: email %q is not an email address", c.User.Email)
	}
	if c.User.Provider == "" {
		addf("user: provider is required")
	}

	slugs := make(map[string]string)
	for i, item := range c.Inventory {
		if strings.TrimSpace(item.Name) == "" {
			addf("inventory[%d]: name is required", i)
			continue
		}
		slug := Slug(item.Name)
		if prev, ok := slugs[slug]; ok {
			addf("inventory[%d]: %q collides with %q", i, item.Name, prev)
		}
		slugs[slug] = item.Name
		if item.Quantity < 0 {
			addf("inventory[%d]: quantity must not be negative", i)
		}
	}

	if c.Recipe.ID == "" {
		addf("recipe: id is required")
	}
	if c.Recipe.Title == "" {
		addf("recipe: title is required")
	}
	orders := make(map[int]bool)
	for i, ing := range c.Recipe.Ingredients {
		if ing.Name == "" {
			addf("recipe.ingredients[%d]: name is required", i)
		}
		if ing.Order < 1 || orders[ing.Order] {
			addf("recipe.ingredients[%d]: order %d must be positive and unique", i, ing.Order)
		}
		orders[ing.Order] = true
	}
	steps := make(map[int]bool)
	for i, ins := range c.Recipe.Instructions {
		if ins.Step < 1 || steps[ins.Step] {
			addf("recipe.instructions[%d]: step %d must be positive and unique", i, ins.Step)
		}
		steps[ins.Step] = true
	}
	if dup := firstDuplicate(c.Recipe.Categories); dup != "" {
		addf("recipe.categories: duplicate %q", dup)
	}
	if dup := firstDuplicate(c.Recipe.Tags); dup != "" {
		addf("recipe.tags: duplicate %q", dup)
	}

	if c.MealPlan.ID == "" {
		addf("meal_plan: id is required")
	}
	for i, meal := range c.MealPlan.Meals {
		if meal.MealType == "" {
			addf("meal_plan.meals[%d]: meal_type is required", i)
		}
	}

	if c.ShoppingList.ID == "" {
		addf("shopping_list: id is required")
	}
	positions := make(map[int]bool)
	for i, item := range c.ShoppingList.Items {
		if item.Name == "" {
			addf("shopping_list.items[%d]: name is required", i)
		}
		if item.Order < 1 || positions[item.Order] {
			addf("shopping_list.items[%d]: order %d must be positive and unique", i, item.Order)
		}
		positions[item.Order] = true
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
	}
	return nil
}

func firstDuplicate(values []string) string {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return v
		}
		seen[v] = true
	}
	return ""
}

// Date is either an offset in days from the time of the run or a literal
// timestamp.
type Date struct {
	InDays *int   `yaml:"in_days,omitempty"`
	At     string `yaml:"at,omitempty"`
}

func InDays(n int) Date {
	return Date{InDays: &n}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// Resolve turns d into an absolute time. Offsets are whole 24h periods added
// to now.
func (d Date) Resolve(now time.Time) (time.Time, error) {
	if d.At != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d.At); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: malformed date %q", ErrInvalidCatalog, d.At)
	}
	if d.InDays == nil {
		return time.Time{}, fmt.Errorf("%w: date needs in_days or at", ErrInvalidCatalog)
	}
	return now.Add(time.Duration(*d.InDays) * 24 * time.Hour).UTC(), nil
}

// Slug lower-cases name and replaces every run of whitespace with a hyphen.
// Leading and trailing whitespace is kept as a hyphen, not trimmed.
func Slug(name string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.ToLower(name) {
		if isSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0xA0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}

// Summary is a one-line description used by the CLI.
func (c *Catalog) Summary() string {
	return fmt.Sprintf("%d settings, user %s, %d inventory items, recipe %s (%d ingredients, %d steps), meal plan %s (%d meals), shopping list %s (%d items)",
		len(c.Settings), c.User.Email, len(c.Inventory),
		c.Recipe.ID, len(c.Recipe.Ingredients), len(c.Recipe.Instructions),
		c.MealPlan.ID, len(c.MealPlan.Meals),
		c.ShoppingList.ID, len(c.ShoppingList.Items))
}
