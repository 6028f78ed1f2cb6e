package seeder

import "github.com/Rana718/munchies/internal/catalog"

// InventoryItemID derives the key of a user's inventory item from its name,
// e.g. "<user id>-olive-oil". Renaming an item therefore yields a new key.
func InventoryItemID(userID, name string) string {
	return userID + "-" + catalog.Slug(name)
}
