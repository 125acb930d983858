package sqlexec_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/poppy/internal/testdb"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/sqlexec"
)

func seed(t *testing.T) *sqlexec.Executor {
	db := testdb.New(t)
	testdb.Apply(t, db, `
INSERT INTO regista (nome, eta) VALUES ('Christopher Nolan', 54);
INSERT INTO movies (titolo, idR, anno, genere) VALUES ('Inception', 1, 2010, 'Sci-Fi');
INSERT INTO movies (titolo, idR, anno, genere) VALUES ('Tenet', 1, 2020, 'Sci-Fi');
INSERT INTO dove_vederlo (idF, idP1, idP2) VALUES (1, NULL, NULL);
`)
	return sqlexec.NewExecutor(db, testdb.Logger())
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("should shape rows into items", func(t *testing.T) {
		ex := seed(t)

		res, err := ex.Execute(ctx, "  select titolo, anno from movies order by anno  ")
		require.NoError(t, err)
		assert.Equal(t, models.ClassificationValid, res.SqlValidation)
		assert.Equal(t, []models.ResultItem{
			{ItemType: "movies", Properties: []models.Property{
				{Name: "titolo", Value: "Inception"},
				{Name: "anno", Value: "2010"},
			}},
			{ItemType: "movies", Properties: []models.Property{
				{Name: "titolo", Value: "Tenet"},
				{Name: "anno", Value: "2020"},
			}},
		}, res.Results)
	})

	t.Run("should render null as empty text", func(t *testing.T) {
		ex := seed(t)

		res, err := ex.Execute(ctx, "SELECT idF, idP1 FROM dove_vederlo")
		require.NoError(t, err)
		require.Len(t, res.Results, 1)
		assert.Equal(t, []models.Property{
			{Name: "idF", Value: "1"},
			{Name: "idP1", Value: ""},
		}, res.Results[0].Properties)
	})

	t.Run("should return an empty valid result for no rows", func(t *testing.T) {
		ex := seed(t)

		res, err := ex.Execute(ctx, "SELECT * FROM piattaforma")
		require.NoError(t, err)
		assert.Equal(t, models.ClassificationValid, res.SqlValidation)
		assert.NotNil(t, res.Results)
		assert.Empty(t, res.Results)
	})

	t.Run("should classify store errors as invalid", func(t *testing.T) {
		ex := seed(t)

		res, err := ex.Execute(ctx, "SELECT nope FROM movies")
		require.NoError(t, err)
		assert.Equal(t, models.ClassificationInvalid, res.SqlValidation)
		assert.Empty(t, res.Results)
	})

	unsafe := []string{
		"DELETE FROM movies",
		"  update movies set anno = 1",
		"DROP TABLE movies",
		"WITH x AS (SELECT 1) SELECT * FROM x",
		"",
		"selected FROM movies",
		"SELECT titolo FROM movies; DELETE FROM movies",
		"SELECT 1;DROP TABLE movies;",
		"SELECT 'a\\'; DELETE FROM movies; --'",
	}
	for _, stmt := range unsafe {
		t.Run("should reject "+stmt+" as unsafe", func(t *testing.T) {
			ex := seed(t)

			res, err := ex.Execute(ctx, stmt)
			require.NoError(t, err)
			assert.Equal(t, models.ClassificationUnsafe, res.SqlValidation)
			assert.Empty(t, res.Results)
		})
	}

	t.Run("should never modify the store for unsafe statements", func(t *testing.T) {
		ex := seed(t)

		_, err := ex.Execute(ctx, "DELETE FROM movies")
		require.NoError(t, err)

		res, err := ex.Execute(ctx, "SELECT COUNT(*) AS n FROM movies")
		require.NoError(t, err)
		assert.Equal(t, "2", res.Results[0].Properties[0].Value)
	})
}

func TestExecute_MultipleStatements(t *testing.T) {
	ctx := context.Background()
	ex := seed(t)

	res, err := ex.Execute(ctx, "SELECT titolo FROM movies; DELETE FROM movies")
	require.NoError(t, err)
	assert.Equal(t, models.ClassificationUnsafe, res.SqlValidation)
	assert.Empty(t, res.Results)

	res, err = ex.Execute(ctx, "SELECT titolo FROM movies;")
	require.NoError(t, err)
	assert.Equal(t, models.ClassificationValid, res.SqlValidation)
	assert.Len(t, res.Results, 2)
}

func TestSingleStatement(t *testing.T) {
	tests := []struct {
		statement string
		single    bool
	}{
		{"SELECT 1", true},
		{"SELECT 1;", true},
		{"SELECT 1 ;  \n", true},
		{"SELECT * FROM movies WHERE titolo = 'a;b'", true},
		{"SELECT * FROM movies WHERE titolo = 'it''s; fine'", true},
		{`SELECT "odd;name" FROM movies`, true},
		{"SELECT 1; SELECT 2", false},
		{"SELECT 1;; DELETE FROM movies", false},
		{"SELECT 1; 'x'", false},
		{`SELECT 'a\'; DELETE FROM movies; --'`, false},
		{`SELECT 'a\''; DELETE FROM movies; --'`, false},
	}

	for _, tt := range tests {
		t.Run(tt.statement, func(t *testing.T) {
			assert.Equal(t, tt.single, sqlexec.SingleStatement(tt.statement))
		})
	}
}

func TestItemType(t *testing.T) {
	assert.Equal(t, "movies", sqlexec.ItemType("SELECT * FROM movies WHERE anno > 2000"))
	assert.Equal(t, "regista", sqlexec.ItemType("select nome from `regista`"))
	assert.Equal(t, "movies", sqlexec.ItemType(`SELECT * FROM "movies" m JOIN regista r ON r.idR = m.idR`))
	assert.Equal(t, sqlexec.DefaultItemType, sqlexec.ItemType("SELECT 1"))
}

func TestIsSelect(t *testing.T) {
	assert.True(t, sqlexec.IsSelect("SELECT 1"))
	assert.True(t, sqlexec.IsSelect("\n\tselect\n1"))
	assert.True(t, sqlexec.IsSelect("SeLeCt*from movies"))
	assert.False(t, sqlexec.IsSelect("selectx"))
	assert.False(t, sqlexec.IsSelect("INSERT INTO movies VALUES (1)"))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", sqlexec.Stringify(nil))
	assert.Equal(t, "abc", sqlexec.Stringify([]byte("abc")))
	assert.Equal(t, "42", sqlexec.Stringify(int64(42)))
	assert.Equal(t, "1.5", sqlexec.Stringify(1.5))
	assert.Equal(t, "true", sqlexec.Stringify(true))
	assert.Equal(t, "2024-03-01", sqlexec.Stringify(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-01 10:30:00", sqlexec.Stringify(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)))
}
