package application

import (
	"errors"

	"github.com/iconforge/iconforge-backend/internal/infrastructure/snapshot"
	"github.com/iconforge/iconforge-backend/pkg/iconset"
)

// ErrCollectionNotFound is returned when no snapshot exists for the prefix.
// It is distinct from an empty collection, which is a valid response.
var ErrCollectionNotFound = errors.New("collection not found")

// CollectionResponse is the richer per-set payload served to icon pickers,
// built from the file snapshot rather than the database row.
type CollectionResponse struct {
	Prefix        string   `json:"prefix"`
	Title         string   `json:"title"`
	Total         int      `json:"total"`
	Uncategorized []string `json:"uncategorized"`
	Height        int      `json:"height,omitempty"`
	Category      string   `json:"category,omitempty"`
}

// BuildCollection loads the snapshot for prefix and projects it into the
// collection response shape.
func BuildCollection(store *snapshot.Store, prefix string) (*CollectionResponse, error) {
	data, err := store.Read(prefix)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	set, err := iconset.Parse(data)
	if err != nil {
		return nil, err
	}
	info := set.Info()
	return &CollectionResponse{
		Prefix:        set.Prefix(),
		Title:         info.Name,
		Total:         set.Count(),
		Uncategorized: set.Names(),
		Height:        info.Height,
		Category:      info.Category,
	}, nil
}

// Fields flattens the response for merging over the database summary;
// collection fields take precedence in the merged object.
func (c *CollectionResponse) Fields() map[string]any {
	return map[string]any{
		"prefix":        c.Prefix,
		"title":         c.Title,
		"total":         c.Total,
		"uncategorized": c.Uncategorized,
		"height":        c.Height,
		"category":      c.Category,
	}
}
