package search

import (
	"strings"
	"time"

	"github.com/keirastanley/kellaspace-backend/internal/domain"
	"github.com/keirastanley/kellaspace-backend/internal/providers/deezer"
	"github.com/keirastanley/kellaspace-backend/internal/providers/googlebooks"
	"github.com/keirastanley/kellaspace-backend/internal/providers/listennotes"
	"github.com/keirastanley/kellaspace-backend/internal/providers/tmdb"
	"github.com/keirastanley/kellaspace-backend/internal/providers/youtube"
)

const posterBaseURL = "https://image.tmdb.org/t/p/w342"

// formatTitle renders "<name> (<year>)" when a year is resolvable and
// "<name> " otherwise. Only the first four characters of the year string
// are kept, so full dates and RFC 3339 timestamps reduce to the year.
func formatTitle(name, year string) string {
	if year == "" {
		return name + " "
	}
	if len(year) > 4 {
		year = year[:4]
	}
	return name + " (" + year + ")"
}

func newResult(name, year, src, description string, searchID any, mediaType domain.MediaType) domain.SearchResult {
	return domain.SearchResult{
		Title:       formatTitle(name, year),
		MediaType:   mediaType,
		Description: description,
		Image:       domain.Image{Src: src, Alt: name},
		SearchID:    searchID,
		Provenance:  domain.ProvenanceFor(mediaType),
	}
}

// NormalizeMovie maps a TMDB movie record into the canonical shape.
// Genre tags are attached separately by the caller.
func NormalizeMovie(r tmdb.Result) domain.SearchResult {
	return normalizeTMDB(r, domain.MediaTypeMovie)
}

func NormalizeTV(r tmdb.Result) domain.SearchResult {
	return normalizeTMDB(r, domain.MediaTypeTVShow)
}

func normalizeTMDB(r tmdb.Result, mediaType domain.MediaType) domain.SearchResult {
	name := r.Title
	if name == "" {
		name = r.Name
	}
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	src := ""
	if r.PosterPath != "" {
		src = posterBaseURL + r.PosterPath
	}
	return newResult(name, date, src, r.Overview, r.ID, mediaType)
}

func NormalizePodcast(r listennotes.Result) domain.SearchResult {
	year := ""
	if r.EarliestPubDateMS > 0 {
		year = time.UnixMilli(r.EarliestPubDateMS).UTC().Format(time.RFC3339)
	}
	return newResult(r.TitleOriginal, year, r.Image, r.DescriptionOriginal, r.ID, domain.MediaTypePodcast)
}

func NormalizeVideo(v youtube.Video) domain.SearchResult {
	return newResult(v.Snippet.Title, "", v.Snippet.Thumbnails.High.URL, v.Snippet.Description, v.ID, domain.MediaTypeVideo)
}

// NormalizeBook appends the author list to the title when one is present.
func NormalizeBook(v googlebooks.Volume) domain.SearchResult {
	name := v.VolumeInfo.Title
	if len(v.VolumeInfo.Authors) > 0 {
		name += " by " + strings.Join(v.VolumeInfo.Authors, ", ")
	}
	src := ""
	if v.VolumeInfo.ImageLinks != nil {
		src = v.VolumeInfo.ImageLinks.Thumbnail
	}
	return newResult(name, "", src, v.VolumeInfo.Description, v.ID, domain.MediaTypeBook)
}

func NormalizeTrack(t deezer.Track) domain.SearchResult {
	return newResult(t.Title, "", t.Album.CoverBig, "", t.ID, domain.MediaTypeMusic)
}
