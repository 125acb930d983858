package catalog

import (
	"database/sql"

	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/models"
)

const (
	directorTable     = "regista"
	platformTable     = "piattaforma"
	movieTable        = "movies"
	availabilityTable = "dove_vederlo"
)

// MovieRow is the joined view of one movie and its links.
type MovieRow struct {
	Title     string         `db:"titolo"`
	Director  string         `db:"nome"`
	Age       int            `db:"eta"`
	Year      int            `db:"anno"`
	Genre     string         `db:"genere"`
	Platform1 sql.NullString `db:"piattaforma1"`
	Platform2 sql.NullString `db:"piattaforma2"`
}

func (r MovieRow) ToMovie() models.Movie {
	movie := models.Movie{
		Title:     r.Title,
		Director:  r.Director,
		Age:       r.Age,
		Year:      r.Year,
		Genre:     r.Genre,
		Platforms: []string{},
	}
	for _, p := range []sql.NullString{r.Platform1, r.Platform2} {
		if p.Valid {
			movie.Platforms = append(movie.Platforms, p.String)
		}
	}
	return movie
}

func movieByTitle(dialect database.Dialect, title string) (string, []any) {
	sb := dialect.NewSelectBuilder()
	sb.Select("m.titolo", "r.nome", "r.eta", "m.anno", "m.genere",
		"p1.nome AS piattaforma1", "p2.nome AS piattaforma2")
	sb.From(movieTable + " m")
	sb.Join(directorTable+" r", "r.idR = m.idR")
	sb.JoinWithOption(sqlbuilder.LeftJoin, availabilityTable+" d", "d.idF = m.idF")
	sb.JoinWithOption(sqlbuilder.LeftJoin, platformTable+" p1", "p1.idP = d.idP1")
	sb.JoinWithOption(sqlbuilder.LeftJoin, platformTable+" p2", "p2.idP = d.idP2")
	sb.Where(sb.Equal("m.titolo", title))
	return sb.Build()
}
