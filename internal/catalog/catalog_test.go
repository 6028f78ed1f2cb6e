package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Failed to load default catalog: %v", err)
	}

	if len(cat.Settings) != 2 {
		t.Fatalf("Expected 2 settings, got %d", len(cat.Settings))
	}
	if cat.Settings[0].Key != "app_version" || cat.Settings[0].Value != "1.0.0" {
		t.Errorf("Unexpected first setting: %+v", cat.Settings[0])
	}
	if cat.User.Email != "test@munchies.app" {
		t.Errorf("Expected user test@munchies.app, got %s", cat.User.Email)
	}
	if cat.User.Preferences == nil || cat.User.Preferences.MaxCookingTime != 45 {
		t.Errorf("Expected preferences with max_cooking_time 45, got %+v", cat.User.Preferences)
	}
	if len(cat.Inventory) != 4 {
		t.Errorf("Expected 4 inventory items, got %d", len(cat.Inventory))
	}
	if cat.Recipe.ID != "sample-pasta-recipe" {
		t.Errorf("Expected recipe sample-pasta-recipe, got %s", cat.Recipe.ID)
	}
	if len(cat.Recipe.Ingredients) != 4 || len(cat.Recipe.Instructions) != 5 {
		t.Errorf("Expected 4 ingredients and 5 instructions, got %d and %d",
			len(cat.Recipe.Ingredients), len(cat.Recipe.Instructions))
	}
	if cat.MealPlan.Name != "This Week's Meals" {
		t.Errorf("Unexpected meal plan name %q", cat.MealPlan.Name)
	}
	if len(cat.MealPlan.Meals) != 1 || cat.MealPlan.Meals[0].RecipeID != "" {
		t.Errorf("Expected one meal without an explicit recipe, got %+v", cat.MealPlan.Meals)
	}
	if len(cat.ShoppingList.Items) != 3 {
		t.Errorf("Expected 3 shopping list items, got %d", len(cat.ShoppingList.Items))
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "seed.yaml")
		if err := os.WriteFile(path, DefaultBytes(), 0644); err != nil {
			t.Fatalf("Failed to write catalog: %v", err)
		}
		cat, err := Load(path)
		if err != nil {
			t.Fatalf("Failed to load catalog: %v", err)
		}
		if cat.Recipe.Title != "Simple Pasta with Tomatoes" {
			t.Errorf("Unexpected recipe title %q", cat.Recipe.Title)
		}
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "seed.json")
		raw := `{
			"settings": [{"key": "app_version", "value": "2.0.0"}],
			"user": {"email": "cook@example.com", "name": "Cook", "provider": "email"},
			"inventory": [{"name": "Rice", "category": "grains", "quantity": 1, "unit": "bag", "location": "pantry"}],
			"recipe": {"id": "rice", "title": "Rice"},
			"meal_plan": {"id": "plan", "name": "Plan", "start": {"in_days": 0}, "end": {"at": "2030-01-07"}},
			"shopping_list": {"id": "list", "name": "List"}
		}`
		if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
			t.Fatalf("Failed to write catalog: %v", err)
		}
		cat, err := Load(path)
		if err != nil {
			t.Fatalf("Failed to load catalog: %v", err)
		}
		if cat.Settings[0].Value != "2.0.0" {
			t.Errorf("Expected app_version 2.0.0, got %s", cat.Settings[0].Value)
		}
		if cat.Inventory[0].Expires != nil {
			t.Errorf("Expected no expiration, got %+v", cat.Inventory[0].Expires)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
			t.Error("Expected an error for a missing file")
		}
	})

	t.Run("empty path loads default", func(t *testing.T) {
		cat, err := Load("")
		if err != nil {
			t.Fatalf("Failed to load default catalog: %v", err)
		}
		if cat.User.Email != "test@munchies.app" {
			t.Errorf("Expected default user, got %s", cat.User.Email)
		}
	})
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(string) string
		wantMsg string
	}{
		{
			name:    "unknown field",
			edit:    func(s string) string { return s + "\nextra: true\n" },
			wantMsg: "field extra not found",
		},
		{
			name:    "duplicate setting key",
			edit:    func(s string) string { return strings.Replace(s, "key: maintenance_mode", "key: app_version", 1) },
			wantMsg: `duplicate key "app_version"`,
		},
		{
			name:    "bad email",
			edit:    func(s string) string { return strings.Replace(s, "test@munchies.app", "nobody", 1) },
			wantMsg: "is not an email address",
		},
		{
			name:    "colliding inventory names",
			edit:    func(s string) string { return strings.Replace(s, "name: Cheese", "name: olive   oil", 1) },
			wantMsg: "collides with",
		},
		{
			name:    "duplicate ingredient order",
			edit:    func(s string) string { return strings.Replace(s, "unit: grams, order: 4", "unit: grams, order: 1", 1) },
			wantMsg: "order 1 must be positive and unique",
		},
		{
			name:    "duplicate instruction step",
			edit:    func(s string) string { return strings.Replace(s, "step: 5", "step: 4", 1) },
			wantMsg: "step 4 must be positive and unique",
		},
		{
			name:    "duplicate tag",
			edit:    func(s string) string { return strings.Replace(s, "[easy, weeknight, italian]", "[easy, easy]", 1) },
			wantMsg: `recipe.tags: duplicate "easy"`,
		},
		{
			name:    "missing shopping list id",
			edit:    func(s string) string { return strings.Replace(s, "id: sample-shopping-list", "id: \"\"", 1) },
			wantMsg: "shopping_list: id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.edit(string(DefaultBytes()))))
			if err == nil {
				t.Fatal("Expected an error, got nil")
			}
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("Expected ErrInvalidCatalog, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected error containing %q, got %v", tt.wantMsg, err)
			}
		})
	}

	t.Run("empty document", func(t *testing.T) {
		if _, err := Parse(nil); !errors.Is(err, ErrInvalidCatalog) {
			t.Errorf("Expected ErrInvalidCatalog, got %v", err)
		}
	})
}

func TestDateResolve(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		date    Date
		want    time.Time
		wantErr bool
	}{
		{name: "today", date: InDays(0), want: now},
		{name: "one week", date: InDays(7), want: now.Add(7 * 24 * time.Hour)},
		{name: "in the past", date: InDays(-1), want: now.Add(-24 * time.Hour)},
		{name: "calendar date", date: Date{At: "2027-01-02"}, want: time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", date: Date{At: "2027-01-02T10:00:00+02:00"}, want: time.Date(2027, 1, 2, 8, 0, 0, 0, time.UTC)},
		{name: "malformed", date: Date{At: "02/01/2027"}, wantErr: true},
		{name: "empty", date: Date{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.date.Resolve(now)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCatalog) {
					t.Fatalf("Expected ErrInvalidCatalog, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Olive Oil":           "olive-oil",
		"Tomatoes":            "tomatoes",
		"Extra  Virgin\tOil":  "extra-virgin-oil",
		" Padded ":            "-padded-",
		"Crème Fraîche":  "crème-fraîche",
		"already-hyphenated":  "already-hyphenated",
		"MIXED case  Letters": "mixed-case-letters",
	}

	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSummary(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Failed to load default catalog: %v", err)
	}
	summary := cat.Summary()
	for _, part := range []string{"2 settings", "test@munchies.app", "4 inventory items", "sample-pasta-recipe (4 ingredients, 5 steps)"} {
		if !strings.Contains(summary, part) {
			t.Errorf("Expected summary to contain %q, got %q", part, summary)
		}
	}
}
