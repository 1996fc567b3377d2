package models

// HTTP request shapes for the analysis API. Binding, defaults and
// validation happen in pkg/http (echo bind + creasty/defaults +
// go-playground/validator).

// AnalyzeRequest configures a single-file analysis. The velocity file
// arrives either as a multipart upload or via URL.
type AnalyzeRequest struct {
	URL          string    `json:"url" form:"url" validate:"omitempty,url"`
	Format       string    `json:"format" form:"format" default:"auto" validate:"oneof=auto statsport catapult generic"`
	SamplingRate float64   `json:"sampling_rate" form:"sampling_rate" default:"10" validate:"gt=0"`
	Epochs       []float64 `json:"epochs" form:"epochs" validate:"omitempty,dive,gt=0"`
	TieBreak     string    `json:"tie_break" form:"tie_break" default:"earliest" validate:"oneof=earliest latest"`
	KeepProfile  bool      `json:"keep_profile" form:"keep_profile"`
}

// BatchRequest starts a batch run over a directory or an explicit file
// list. Empty Dir falls back to the configured data directory.
type BatchRequest struct {
	Dir          string    `json:"dir" form:"dir"`
	Files        []string  `json:"files" form:"files"`
	SamplingRate float64   `json:"sampling_rate" form:"sampling_rate" default:"10" validate:"gt=0"`
	Epochs       []float64 `json:"epochs" form:"epochs" validate:"omitempty,dive,gt=0"`
}

// CohortRequest selects the (epoch, threshold, method) key to aggregate
// a finished batch by.
type CohortRequest struct {
	EpochMinutes float64 `query:"epoch" validate:"gt=0"`
	Threshold    string  `query:"threshold" validate:"required"`
	Method       string  `query:"method" default:"rolling" validate:"oneof=rolling contiguous"`
}
