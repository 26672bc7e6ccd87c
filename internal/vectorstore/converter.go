package vectorstore

import (
	"strconv"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// pointIDString normalizes a Qdrant point id to its string form. Uploaded
// points always carry UUIDs; the numeric branch keeps the converter total.
func pointIDString(id *qdrant.PointId) string {
	switch v := id.GetPointIdOptions().(type) {
	case *qdrant.PointId_Uuid:
		return v.Uuid
	case *qdrant.PointId_Num:
		return strconv.FormatUint(v.Num, 10)
	default:
		return ""
	}
}

// toSearchResults converts scored points into the external result shape,
// assigning ranks by position. The SDK payload structure is kept out of the
// application layer entirely.
func toSearchResults(points []*qdrant.ScoredPoint) []SearchResult {
	results := make([]SearchResult, 0, len(points))
	for i, p := range points {
		payload := p.GetPayload()

		r := SearchResult{
			Rank:      i + 1,
			Score:     p.GetScore(),
			DocUID:    payloadString(payload, fieldDocUID),
			ChunkText: payloadString(payload, fieldChunkText),
			OwnerUID:  payloadString(payload, fieldUserUID),
		}

		if ts := payloadString(payload, fieldCreatedAt); ts != "" {
			if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
				r.CreatedAt = parsed
			}
		}
		if category, ok := payloadInt(payload, fieldCategoryID); ok {
			r.CategoryID = &category
		}

		results = append(results, r)
	}
	return results
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func payloadInt(payload map[string]*qdrant.Value, key string) (int64, bool) {
	v, ok := payload[key]
	if !ok {
		return 0, false
	}
	if _, isInt := v.GetKind().(*qdrant.Value_IntegerValue); !isInt {
		return 0, false
	}
	return v.GetIntegerValue(), true
}
