package pagination

// Response is a generic paginated response wrapper. T is the type of data
// items (e.g. scoredarticle.DTO, channel.DTO, model.DTO).
type Response[T any] struct {
	Data       []T      `json:"data"`
	Pagination Metadata `json:"pagination"`
}

// NewResponse creates a paginated response from data and its metadata.
func NewResponse[T any](data []T, metadata Metadata) Response[T] {
	return Response[T]{
		Data:       data,
		Pagination: metadata,
	}
}
