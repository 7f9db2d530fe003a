package handler

type CompressParams struct {
	URL  string `validate:"required,url"`
	Size string `validate:"required"`
}

type CompressData struct {
	Link          string   `json:"link"`
	Cached        bool     `json:"cached"`
	SizeReduction *float64 `json:"sizeReduction,omitempty"`
}

type CompressResponse struct {
	Status string       `json:"status"`
	Data   CompressData `json:"data"`
}
