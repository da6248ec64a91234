package types

// PageInfo contains pagination metadata for list responses.
type PageInfo struct {
	HasMore    bool `json:"has_more"`
	TotalItems *int `json:"total_items,omitempty"`
}

// ResponseMeta contains non-blocking metadata returned with API responses.
type ResponseMeta struct {
	Warnings   []string  `json:"warnings,omitempty"`
	Pagination *PageInfo `json:"pagination,omitempty"`
}
