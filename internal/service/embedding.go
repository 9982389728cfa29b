package service

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions must match the vector(16) column in the schema.
const EmbeddingDimensions = 16

// GenerateEmbedding returns a deterministic bag-of-words embedding: each word
// is hashed into one of the buckets and the vector is L2-normalised, so texts
// sharing words end up close under the <-> operator.
func GenerateEmbedding(text string) *pgvector.Vector {
	vec := make([]float32, EmbeddingDimensions)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%EmbeddingDimensions]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	v := pgvector.NewVector(vec)
	return &v
}
