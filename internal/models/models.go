package models

import "time"

type SystemSetting struct {
	Key       string    `json:"key" yaml:"key"`
	Value     string    `json:"value" yaml:"value"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

type User struct {
	ID          string       `json:"id" yaml:"-"`
	Email       string       `json:"email" yaml:"email"`
	Name        string       `json:"name" yaml:"name"`
	Provider    string       `json:"provider" yaml:"provider"`
	Preferences *Preferences `json:"preferences,omitempty" yaml:"preferences,omitempty"`
	CreatedAt   time.Time    `json:"created_at" yaml:"-"`
}

// Preferences belong to exactly one user and are only written when the user
// row is first created.
type Preferences struct {
	DietaryRestrictions []string `json:"dietary_restrictions" yaml:"dietary_restrictions"`
	Allergies           []string `json:"allergies" yaml:"allergies"`
	CuisinePreferences  []string `json:"cuisine_preferences" yaml:"cuisine_preferences"`
	CookingSkillLevel   string   `json:"cooking_skill_level" yaml:"cooking_skill_level"`
	MaxCookingTime      int      `json:"max_cooking_time" yaml:"max_cooking_time"` // minutes
	ServingSize         int      `json:"serving_size" yaml:"serving_size"`
}

type InventoryItem struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Name           string     `json:"name"`
	Category       string     `json:"category"`
	Quantity       float64    `json:"quantity"`
	Unit           string     `json:"unit"`
	Location       string     `json:"location"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Recipe struct {
	ID           string        `json:"id" yaml:"id"`
	Title        string        `json:"title" yaml:"title"`
	Description  string        `json:"description" yaml:"description"`
	Servings     int           `json:"servings" yaml:"servings"`
	PrepTime     int           `json:"prep_time" yaml:"prep_time"`
	CookTime     int           `json:"cook_time" yaml:"cook_time"`
	TotalTime    int           `json:"total_time" yaml:"total_time"`
	Difficulty   string        `json:"difficulty" yaml:"difficulty"`
	Calories     int           `json:"calories" yaml:"calories"`
	Source       string        `json:"source" yaml:"source"`
	Ingredients  []Ingredient  `json:"ingredients" yaml:"ingredients"`
	Instructions []Instruction `json:"instructions" yaml:"instructions"`
	Categories   []string      `json:"categories" yaml:"categories"`
	Tags         []string      `json:"tags" yaml:"tags"`
	CreatedAt    time.Time     `json:"created_at" yaml:"-"`
}

type Ingredient struct {
	ID     string  `json:"id" yaml:"-"`
	Name   string  `json:"name" yaml:"name"`
	Amount float64 `json:"amount" yaml:"amount"`
	Unit   string  `json:"unit" yaml:"unit"`
	Order  int     `json:"order" yaml:"order"`
}

type Instruction struct {
	ID   string `json:"id" yaml:"-"`
	Step int    `json:"step" yaml:"step"`
	Text string `json:"text" yaml:"text"`
}

type MealPlan struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Meals     []Meal    `json:"meals"`
	CreatedAt time.Time `json:"created_at"`
}

type Meal struct {
	ID       string    `json:"id"`
	RecipeID string    `json:"recipe_id"`
	MealType string    `json:"meal_type"`
	MealDate time.Time `json:"meal_date"`
	Servings int       `json:"servings"`
}

type ShoppingList struct {
	ID        string             `json:"id" yaml:"id"`
	UserID    string             `json:"user_id" yaml:"-"`
	Name      string             `json:"name" yaml:"name"`
	Items     []ShoppingListItem `json:"items" yaml:"items"`
	CreatedAt time.Time          `json:"created_at" yaml:"-"`
}

type ShoppingListItem struct {
	ID       string  `json:"id" yaml:"-"`
	Name     string  `json:"name" yaml:"name"`
	Category string  `json:"category" yaml:"category"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
	Unit     string  `json:"unit" yaml:"unit"`
	Order    int     `json:"order" yaml:"order"`
	Checked  bool    `json:"checked" yaml:"checked"`
}
