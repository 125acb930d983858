package models

type AddRequest struct {
	DataLine string `json:"data_line" form:"data_line" validate:"required"`
}

type AddResponse struct {
	Status string `json:"status"`
}

type SqlRequest struct {
	SqlQuery string `json:"sql_query" form:"sql_query"`
}

type SearchRequest struct {
	Question string `json:"question" form:"question"`
	Model    string `json:"model" form:"model"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

const (
	HealthOK   = "ok"
	HealthDown = "down"
)
