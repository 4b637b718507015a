package dto

// IngestRequest describes one ingestion run for a census table group.
type IngestRequest struct {
	Year           int      `json:"year" validate:"required,min=2009,max=2100"`
	Dataset        string   `json:"dataset" validate:"required"`
	Group          string   `json:"group" validate:"required"`
	Variables      []string `json:"variables,omitempty"`
	IncludeMargins bool     `json:"include_margins"`
	DataDate       string   `json:"data_date" validate:"required"`
	Category       string   `json:"category,omitempty"`
}

// IngestedStatistic reports what one variable's ingestion produced.
type IngestedStatistic struct {
	StatisticID string `json:"statistic_id"`
	Name        string `json:"name"`
	Variable    string `json:"variable"`
	RowsWritten int    `json:"rows_written"`
	ZCTACount   int    `json:"zcta_count"`
	CountyCount int    `json:"county_count"`
}

// IngestResult is the outcome of one ingestion run.
type IngestResult struct {
	Group       string              `json:"group"`
	DataDate    string              `json:"data_date"`
	Statistics  []IngestedStatistic `json:"statistics"`
	RowsWritten int                 `json:"rows_written"`
}
