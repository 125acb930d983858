// Package dataline parses the comma separated catalog line:
//
//	titolo,nome,eta,anno,genere,piattaforma1,piattaforma2
package dataline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Ramsey-B/poppy/pkg/models"
)

const (
	FieldCount   = 7
	MaxPlatforms = 2
)

const (
	FieldTitle     = "titolo"
	FieldDirector  = "nome"
	FieldAge       = "eta"
	FieldYear      = "anno"
	FieldGenre     = "genere"
	FieldPlatforms = "piattaforme"
)

// Parse validates one line. Fields are trimmed; platforms are optional,
// deduplicated without regard to case and capped at MaxPlatforms.
func Parse(line string) (models.Movie, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != FieldCount {
		return models.Movie{}, newFieldError("", fmt.Sprintf("Number of fields expected = %d, found = %d", FieldCount, len(parts)))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	movie := models.Movie{
		Title:    parts[0],
		Director: parts[1],
		Genre:    parts[4],
	}

	if movie.Title == "" {
		return models.Movie{}, newFieldError(FieldTitle, "Missing 'titolo'")
	}
	if movie.Director == "" {
		return models.Movie{}, newFieldError(FieldDirector, "'nome' missing")
	}
	if movie.Genre == "" {
		return models.Movie{}, newFieldError(FieldGenre, "'genere' missing")
	}

	age, err := strconv.Atoi(parts[2])
	if err != nil {
		return models.Movie{}, newFieldError(FieldAge, "'eta' must be an integer")
	}
	movie.Age = age

	year, err := strconv.Atoi(parts[3])
	if err != nil {
		return models.Movie{}, newFieldError(FieldYear, "'anno' must be an integer")
	}
	movie.Year = year

	movie.Platforms = NormalizePlatforms(parts[5:]...)
	return movie, nil
}

// NormalizePlatforms drops empty names and case-insensitive duplicates,
// keeping first occurrences in order, up to MaxPlatforms.
func NormalizePlatforms(names ...string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, MaxPlatforms)
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
		if len(out) == MaxPlatforms {
			break
		}
	}
	return out
}
