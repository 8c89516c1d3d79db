package transport

// RegionResponse is one entry of GET /catalog/regions.
type RegionResponse struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Cities []string `json:"cities"`
}

// ListRegionsResponse wraps the region table.
type ListRegionsResponse struct {
	Items []RegionResponse `json:"items"`
}
