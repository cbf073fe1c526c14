package session

import "fmt"

// NameResolver maps ids to display names within one game.
type NameResolver interface {
	ItemName(game string, item int64) (string, bool)
	LocationName(game string, location int64) (string, bool)
}

// Names tries each resolver in order; the first hit wins.
type Names []NameResolver

func (n Names) ItemName(game string, item int64) (string, bool) {
	for _, r := range n {
		if name, ok := r.ItemName(game, item); ok {
			return name, true
		}
	}
	return "", false
}

func (n Names) LocationName(game string, location int64) (string, bool) {
	for _, r := range n {
		if name, ok := r.LocationName(game, location); ok {
			return name, true
		}
	}
	return "", false
}

func unknownItem(item int64) string {
	return fmt.Sprintf("Unknown item (ID: %d)", item)
}

func unknownLocation(location int64) string {
	return fmt.Sprintf("Unknown location (ID: %d)", location)
}
