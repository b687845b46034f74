package pagination

// PaginationStrategy defines an interface for different pagination
// strategies, so a handler/service pair can swap strategies without
// changing its own code.
type PaginationStrategy interface {
	// CalculateQuery returns the query parameters (offset, limit, cursor,
	// etc.) based on the pagination parameters.
	CalculateQuery(params Params) QueryParams

	// BuildMetadata constructs pagination metadata from query results. The
	// hasMore parameter is for cursor-based pagination, to indicate whether
	// more results are available.
	BuildMetadata(params Params, total int64, hasMore bool) Metadata
}

// QueryParams represents the calculated query parameters for a database
// query.
type QueryParams struct {
	Offset int     // For offset-based pagination
	Limit  int     // For all strategies
	Cursor *string // For cursor-based pagination (optional)
	After  *string // For keyset pagination (optional)
}

// OffsetStrategy implements offset-based pagination — the strategy used by
// every list handler in this service.
type OffsetStrategy struct{}

func (s OffsetStrategy) CalculateQuery(params Params) QueryParams {
	return QueryParams{
		Offset: CalculateOffset(params.Page, params.Limit),
		Limit:  params.Limit,
	}
}

func (s OffsetStrategy) BuildMetadata(params Params, total int64, hasMore bool) Metadata {
	return Metadata{
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: CalculateTotalPages(total, params.Limit),
	}
}

// CursorStrategy implements cursor-based pagination.
//
// TODO: wire an opaque, base64-encoded cursor (e.g. article id) through
// CalculateQuery/BuildMetadata once a list handler needs keyset pagination
// over a high-churn table; offset pagination is adequate for the
// admin-scale listings this service currently exposes.
type CursorStrategy struct{}

func (s CursorStrategy) CalculateQuery(params Params) QueryParams {
	return QueryParams{
		Limit: params.Limit,
	}
}

func (s CursorStrategy) BuildMetadata(params Params, total int64, hasMore bool) Metadata {
	return Metadata{
		Total:      -1,
		Page:       -1,
		Limit:      params.Limit,
		TotalPages: -1,
	}
}
