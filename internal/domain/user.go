package domain

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the sole aggregate root. Recommendations and Lists live inside the
// user document and have no store-level identity of their own.
type User struct {
	ID              primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Sub             string             `json:"sub" bson:"sub"`
	DisplayName     string             `json:"display_name,omitempty" bson:"display_name,omitempty"`
	Recommendations []Recommendation   `json:"recommendations" bson:"recommendations"`
	Lists           []List             `json:"lists" bson:"lists"`
}

// Recommendation is an embedded sub-document. ID is caller-supplied and unique
// only within its owning user's recommendations array. TMDBID is the legacy
// numeric provider correlation; new records carry SearchID plus a provenance
// flag instead.
type Recommendation struct {
	ID          string    `json:"id" bson:"id"`
	Title       string    `json:"title" bson:"title"`
	AddedBy     string    `json:"addedBy" bson:"addedBy"`
	MediaType   MediaType `json:"mediaType" bson:"mediaType"`
	DateAdded   string    `json:"dateAdded" bson:"dateAdded"`
	Link        string    `json:"link" bson:"link"`
	Description string    `json:"description" bson:"description"`
	Completed   bool      `json:"completed" bson:"completed"`
	Favourite   bool      `json:"favourite" bson:"favourite"`
	Message     string    `json:"message" bson:"message"`
	Tags        []string  `json:"tags" bson:"tags"`
	Image       Image     `json:"image" bson:"image"`
	SearchID    any       `json:"search_id,omitempty" bson:"search_id,omitempty"`
	Provenance  `bson:",inline"`
	TMDBID      int `json:"tmdb_id,omitempty" bson:"tmdb_id,omitempty"`
}

type List struct {
	ID          string   `json:"id" bson:"id"`
	Title       string   `json:"title" bson:"title"`
	CreatedBy   string   `json:"createdBy" bson:"createdBy"`
	DateCreated string   `json:"dateCreated" bson:"dateCreated"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Notes       string   `json:"notes,omitempty" bson:"notes,omitempty"`
	Tags        []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Image       Image    `json:"image" bson:"image"`
	Contents    []string `json:"contents" bson:"contents"`
}

// RecommendationPatch carries a partial update; nil fields are left untouched.
// The embedded element's identity is not patchable.
type RecommendationPatch struct {
	Title       *string    `json:"title,omitempty"`
	AddedBy     *string    `json:"addedBy,omitempty"`
	MediaType   *MediaType `json:"mediaType,omitempty"`
	DateAdded   *string    `json:"dateAdded,omitempty"`
	Link        *string    `json:"link,omitempty"`
	Description *string    `json:"description,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Favourite   *bool      `json:"favourite,omitempty"`
	Message     *string    `json:"message,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	Image       *Image     `json:"image,omitempty"`
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Sub) == "" {
		return validationError("sub is required")
	}
	for i, rec := range u.Recommendations {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("recommendations[%d]: %w", i, err)
		}
	}
	for i, list := range u.Lists {
		if err := list.Validate(); err != nil {
			return fmt.Errorf("lists[%d]: %w", i, err)
		}
	}
	return nil
}

func (r Recommendation) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return validationError("id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return validationError("title is required")
	}
	if strings.TrimSpace(r.AddedBy) == "" {
		return validationError("addedBy is required")
	}
	if !r.MediaType.Valid() {
		return validationError("unknown mediaType %q", string(r.MediaType))
	}
	if strings.TrimSpace(r.DateAdded) == "" {
		return validationError("dateAdded is required")
	}
	return nil
}

func (l List) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return validationError("id is required")
	}
	if strings.TrimSpace(l.Title) == "" {
		return validationError("title is required")
	}
	if strings.TrimSpace(l.CreatedBy) == "" {
		return validationError("createdBy is required")
	}
	if strings.TrimSpace(l.DateCreated) == "" {
		return validationError("dateCreated is required")
	}
	return nil
}

func (p RecommendationPatch) Validate() error {
	if p.IsEmpty() {
		return validationError("patch contains no fields")
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return validationError("title cannot be empty")
	}
	if p.AddedBy != nil && strings.TrimSpace(*p.AddedBy) == "" {
		return validationError("addedBy cannot be empty")
	}
	if p.MediaType != nil && !p.MediaType.Valid() {
		return validationError("unknown mediaType %q", string(*p.MediaType))
	}
	return nil
}

func (p RecommendationPatch) IsEmpty() bool {
	return p.Title == nil &&
		p.AddedBy == nil &&
		p.MediaType == nil &&
		p.DateAdded == nil &&
		p.Link == nil &&
		p.Description == nil &&
		p.Completed == nil &&
		p.Favourite == nil &&
		p.Message == nil &&
		p.Tags == nil &&
		p.Image == nil
}
