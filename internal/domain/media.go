package domain

type MediaType string

const (
	MediaTypeBook    MediaType = "Book"
	MediaTypePodcast MediaType = "Podcast"
	MediaTypeVideo   MediaType = "Video"
	MediaTypeMovie   MediaType = "Movie"
	MediaTypeTVShow  MediaType = "TV show"
	MediaTypeMusic   MediaType = "Music"

	// Reserved by a later schema revision; accepted on stored records,
	// produced by no adapter.
	MediaTypeGame    MediaType = "Game"
	MediaTypeArticle MediaType = "Article"
)

func (m MediaType) Valid() bool {
	switch m {
	case MediaTypeBook, MediaTypePodcast, MediaTypeVideo,
		MediaTypeMovie, MediaTypeTVShow, MediaTypeMusic,
		MediaTypeGame, MediaTypeArticle:
		return true
	default:
		return false
	}
}

type Image struct {
	Src string `json:"src" bson:"src"`
	Alt string `json:"alt" bson:"alt"`
}

// Provenance marks which upstream produced a result. Exactly one flag is true
// on anything built through ProvenanceFor.
type Provenance struct {
	IsTMDB        bool `json:"is_tmdb,omitempty" bson:"is_tmdb,omitempty"`
	IsListenNotes bool `json:"is_listen_notes,omitempty" bson:"is_listen_notes,omitempty"`
	IsYouTube     bool `json:"is_youtube,omitempty" bson:"is_youtube,omitempty"`
	IsDeezer      bool `json:"is_deezer,omitempty" bson:"is_deezer,omitempty"`
	IsGoogleBooks bool `json:"is_google_books,omitempty" bson:"is_google_books,omitempty"`
}

func ProvenanceFor(mediaType MediaType) Provenance {
	switch mediaType {
	case MediaTypeBook:
		return Provenance{IsGoogleBooks: true}
	case MediaTypeMovie, MediaTypeTVShow:
		return Provenance{IsTMDB: true}
	case MediaTypeMusic:
		return Provenance{IsDeezer: true}
	case MediaTypePodcast:
		return Provenance{IsListenNotes: true}
	default:
		return Provenance{IsYouTube: true}
	}
}

// FlagCount reports how many provenance flags are set.
func (p Provenance) FlagCount() int {
	count := 0
	for _, flag := range []bool{p.IsTMDB, p.IsListenNotes, p.IsYouTube, p.IsDeezer, p.IsGoogleBooks} {
		if flag {
			count++
		}
	}
	return count
}

// SearchResult is the canonical shape every provider response is normalized
// into. SearchID keeps the provider-native identifier (int for TMDB and
// Deezer, string for the rest); it is only meaningful together with MediaType.
type SearchResult struct {
	Title       string    `json:"title"`
	MediaType   MediaType `json:"mediaType"`
	Description string    `json:"description"`
	Image       Image     `json:"image"`
	SearchID    any       `json:"search_id"`
	Provenance
	Tags []string `json:"tags,omitempty"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
