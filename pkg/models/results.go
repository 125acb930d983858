package models

// Classification is the outcome of running a statement.
type Classification string

const (
	ClassificationValid   Classification = "valid"
	ClassificationInvalid Classification = "invalid"
	ClassificationUnsafe  Classification = "unsafe"
	ClassificationError   Classification = "error"
)

// Property is one column of a result row, rendered as text.
type Property struct {
	Name  string `json:"property_name"`
	Value string `json:"property_value"`
}

// ResultItem is one row of a query result.
type ResultItem struct {
	ItemType   string     `json:"item_type"`
	Properties []Property `json:"properties"`
}

// SqlResponse is the classified outcome of executing one statement.
type SqlResponse struct {
	SqlValidation Classification `json:"sql_validation"`
	Results       []ResultItem   `json:"results"`
}

// SearchResponse adds the generated statement to the executor outcome.
type SearchResponse struct {
	SQL           string         `json:"sql"`
	SqlValidation Classification `json:"sql_validation"`
	Results       []ResultItem   `json:"results"`
}

func NewSqlResponse(classification Classification) SqlResponse {
	return SqlResponse{SqlValidation: classification, Results: []ResultItem{}}
}

// SearchFailed is the uniform outcome when any step of the pipeline fails.
func SearchFailed() SearchResponse {
	return SearchResponse{SQL: "", SqlValidation: ClassificationError, Results: []ResultItem{}}
}
