package postgres

import "github.com/pgvector/pgvector-go"

// pgvectorVector adapts a plain []float32 embedding to the pgvector-go
// driver value used for query parameters and scans.
func pgvectorVector(v []float32) pgvector.Vector {
	return pgvector.NewVector(v)
}
