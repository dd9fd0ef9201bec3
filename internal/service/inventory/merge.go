package inventory

import "github.com/mamadbah2/cellar/internal/domain/models"

// FindDuplicate returns the index of the first wine in collection that is the
// same bottle as candidate, or -1. The scan always starts at index 0 so that
// the result is deterministic even if duplicates slipped into the collection.
func FindDuplicate(collection []models.Wine, candidate models.Wine) int {
	for i := range collection {
		if collection[i].SameBottle(candidate) {
			return i
		}
	}
	return -1
}

// mergeStock folds an incoming record into an existing one. Only the stock of
// the incoming record is kept; its descriptive fields are dropped.
func mergeStock(existing, incoming models.Wine) models.Wine {
	existing.Stock += incoming.Stock
	return existing
}
