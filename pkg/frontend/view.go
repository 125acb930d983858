package frontend

import (
	"time"

	"github.com/Gobusters/ectolinq"

	"github.com/Ramsey-B/poppy/pkg/models"
)

const (
	ModeSQL = "SQL"
	ModeLLM = "LLM"
)

type KV struct {
	Name  string
	Value string
}

// ResultView is what the _result_row fragment renders for one search.
type ResultView struct {
	Mode          string
	When          string
	SQL           string
	SqlValidation models.Classification
	Columns       []string
	Rows          [][]string
	KVBlocks      [][]KV
}

// NewResultView shapes backend results into a table and per item key/value
// blocks. Only valid outcomes carry rows.
func NewResultView(mode, sql string, classification models.Classification, results []models.ResultItem, now time.Time) ResultView {
	view := ResultView{
		Mode:          mode,
		When:          now.Format("15:04"),
		SQL:           sql,
		SqlValidation: classification,
	}
	if classification != models.ClassificationValid || len(results) == 0 {
		return view
	}

	view.Columns = ectolinq.Map(ectolinq.First(results).Properties, func(p models.Property) string {
		return p.Name
	})
	view.Rows = ectolinq.Map(results, func(item models.ResultItem) []string {
		return rowValues(view.Columns, item.Properties)
	})
	view.KVBlocks = ectolinq.Filter(ectolinq.Map(results, func(item models.ResultItem) []KV {
		return ectolinq.Map(item.Properties, func(p models.Property) KV {
			return KV{Name: p.Name, Value: p.Value}
		})
	}), func(block []KV) bool {
		return len(block) > 0
	})

	return view
}

// rowValues lines properties up with columns by position, falling back to a
// lookup by name when the item has a different shape.
func rowValues(columns []string, props []models.Property) []string {
	values := make([]string, len(columns))
	for i, col := range columns {
		if i < len(props) && props[i].Name == col {
			values[i] = props[i].Value
			continue
		}
		for _, p := range props {
			if p.Name == col {
				values[i] = p.Value
				break
			}
		}
	}
	return values
}

// BadgeClass maps a classification to its CSS badge.
func BadgeClass(c models.Classification) string {
	return ectolinq.Ternary(c == models.ClassificationValid, "valid", "invalid")
}
