package domain

// VectorConfig describes the embedding space the course catalog was built in.
type VectorConfig struct {
	Model          string
	Dimensions     int
	DistanceMetric string
}

// DefaultVectorConfig returns the configuration of the sentence-transformers
// model the catalog embeddings were generated with.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "sentence-transformers/all-MiniLM-L12-v2",
		Dimensions:     384,
		DistanceMetric: "cosine",
	}
}
