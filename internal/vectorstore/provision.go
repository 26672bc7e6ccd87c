package vectorstore

import (
	"context"
	"fmt"
	"slices"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// EnsureCollection verifies the collection exists and creates it if missing,
// with the three named vector spaces and the payload indexes the query path
// depends on.
//
// Safe to call multiple times; if the collection already exists the function
// exits early, so every process can bootstrap its own collection at startup.
func (g *Gateway) EnsureCollection(ctx context.Context) error {
	collections, err := g.api.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("vectorstore: failed to list collections: %w", err)
	}

	if slices.Contains(collections, g.cfg.Collection) {
		return nil
	}

	req := &qdrant.CreateCollection{
		CollectionName: g.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			DenseSpace: {
				Size:     g.cfg.DenseDim,
				Distance: qdrant.Distance_Cosine,
				OnDisk:   qdrant.PtrOf(true),
				HnswConfig: &qdrant.HnswConfigDiff{
					// Global graph disabled; per-tenant graphs are built
					// through the payload_m setting instead.
					M:        qdrant.PtrOf(uint64(0)),
					PayloadM: qdrant.PtrOf(uint64(16)),
				},
			},
			MultiSpace: {
				Size:     g.cfg.MultiDim,
				Distance: qdrant.Distance_Cosine,
				OnDisk:   qdrant.PtrOf(true),
				HnswConfig: &qdrant.HnswConfigDiff{
					// Re-rank only space: never searched standalone, so no
					// HNSW graph is needed at all.
					M: qdrant.PtrOf(uint64(0)),
				},
				MultivectorConfig: &qdrant.MultiVectorConfig{
					Comparator: qdrant.MultiVectorComparator_MaxSim,
				},
			},
		}),
		SparseVectorsConfig: qdrant.NewSparseVectorsConfig(map[string]*qdrant.SparseVectorParams{
			SparseSpace: {
				Index: &qdrant.SparseIndexConfig{
					OnDisk: qdrant.PtrOf(false),
				},
			},
		}),
		QuantizationConfig: qdrant.NewQuantizationScalar(&qdrant.ScalarQuantization{
			Type:      qdrant.QuantizationType_Int8,
			Quantile:  qdrant.PtrOf(float32(0.99)),
			AlwaysRam: qdrant.PtrOf(true),
		}),
	}

	if err := g.api.CreateCollection(ctx, req); err != nil {
		return fmt.Errorf("vectorstore: failed to create collection %q: %w", g.cfg.Collection, err)
	}

	if err := g.createPayloadIndexes(ctx); err != nil {
		return err
	}
	return nil
}

// createPayloadIndexes sets up the secondary indexes used by query filters:
// the tenant partition key, the datetime range key, the owner key and the
// category key.
func (g *Gateway) createPayloadIndexes(ctx context.Context) error {
	indexes := []*qdrant.CreateFieldIndexCollection{
		{
			CollectionName: g.cfg.Collection,
			FieldName:      fieldGroupUID,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			FieldIndexParams: &qdrant.PayloadIndexParams{
				IndexParams: &qdrant.PayloadIndexParams_KeywordIndexParams{
					KeywordIndexParams: &qdrant.KeywordIndexParams{
						IsTenant: qdrant.PtrOf(true),
					},
				},
			},
		},
		{
			CollectionName: g.cfg.Collection,
			FieldName:      fieldCreatedAt,
			FieldType:      qdrant.FieldType_FieldTypeDatetime.Enum(),
		},
		{
			CollectionName: g.cfg.Collection,
			FieldName:      fieldUserUID,
			FieldType:      qdrant.FieldType_FieldTypeUuid.Enum(),
		},
		{
			CollectionName: g.cfg.Collection,
			FieldName:      fieldCategoryID,
			FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
		},
	}

	for _, idx := range indexes {
		if _, err := g.api.CreateFieldIndex(ctx, idx); err != nil {
			return fmt.Errorf("vectorstore: failed to index payload field %q: %w", idx.FieldName, err)
		}
	}
	return nil
}
