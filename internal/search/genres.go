package search

import "github.com/keirastanley/kellaspace-backend/internal/domain"

// genreTags resolves genre ids against the lookup. Output order follows the
// lookup, not the record's genre_ids order. An empty intersection returns
// nil so the tags field is omitted from the serialized result.
func genreTags(genreIDs []int, lookup []domain.Genre) []string {
	if len(genreIDs) == 0 || len(lookup) == 0 {
		return nil
	}
	wanted := make(map[int]struct{}, len(genreIDs))
	for _, id := range genreIDs {
		wanted[id] = struct{}{}
	}
	var tags []string
	for _, genre := range lookup {
		if _, ok := wanted[genre.ID]; ok {
			tags = append(tags, genre.Name)
		}
	}
	return tags
}
