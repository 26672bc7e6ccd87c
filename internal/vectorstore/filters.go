package vectorstore

import (
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
)

// FilterCondition is the interface for all filter conditions
type FilterCondition interface {
	ToQdrantCondition() []*qdrant.Condition
}

// TimeRange represents a time-based filter condition
type TimeRange struct {
	Gt  *time.Time // Greater than this time
	Gte *time.Time // Greater than or equal to this time
	Lt  *time.Time // Less than this time
	Lte *time.Time // Less than or equal to this time
}

type MatchCondition[T comparable] struct {
	Key   string
	Value T
}

func (c MatchCondition[T]) ToQdrantCondition() []*qdrant.Condition {
	switch v := any(c.Value).(type) {
	case string:
		return []*qdrant.Condition{qdrant.NewMatch(c.Key, v)}
	case bool:
		return []*qdrant.Condition{qdrant.NewMatchBool(c.Key, v)}
	case int64:
		return []*qdrant.Condition{qdrant.NewMatchInt(c.Key, v)}
	default:
		//Unsupported type
		return nil
	}
}

// MatchAnyCondition matches if value is one of the given values (IN operator)
// Applicable to keyword (string) and integer payloads
type MatchAnyCondition[T string | int64] struct {
	Key    string
	Values []T
}

func (c MatchAnyCondition[T]) ToQdrantCondition() []*qdrant.Condition {
	switch v := any(c.Values).(type) {
	case []string:
		return []*qdrant.Condition{qdrant.NewMatchKeywords(c.Key, v...)}
	case []int64:
		return []*qdrant.Condition{qdrant.NewMatchInts(c.Key, v...)}
	default:
		return nil
	}
}

type TextCondition = MatchCondition[string]
type BoolCondition = MatchCondition[bool]
type IntCondition = MatchCondition[int64]
type TextAnyCondition = MatchAnyCondition[string]
type IntAnyCondition = MatchAnyCondition[int64]

// TimeRangeCondition represents a time range filter condition
type TimeRangeCondition struct {
	Key   string
	Value TimeRange
}

func (c TimeRangeCondition) ToQdrantCondition() []*qdrant.Condition {
	return buildDateTimeRangeConditions(c.Key, c.Value)
}

// ConditionSet holds conditions for a single clause
type ConditionSet struct {
	Conditions []FilterCondition
}

// FilterSet supports Must (AND), Should (OR), and MustNot (NOT) clauses.
type FilterSet struct {
	Must    *ConditionSet // AND - all conditions must match
	Should  *ConditionSet // OR - at least one condition must match
	MustNot *ConditionSet // NOT - none of the conditions should match
}

// buildFilter constructs a Qdrant filter from FilterSet
func buildFilter(filters *FilterSet) *qdrant.Filter {
	if filters == nil {
		return nil
	}

	filter := &qdrant.Filter{}

	if filters.Must != nil {
		filter.Must = buildConditions(filters.Must)
	}
	if filters.Should != nil {
		filter.Should = buildConditions(filters.Should)
	}
	if filters.MustNot != nil {
		filter.MustNot = buildConditions(filters.MustNot)
	}

	// Return nil if no conditions were added
	if len(filter.Must) == 0 && len(filter.Should) == 0 && len(filter.MustNot) == 0 {
		return nil
	}
	return filter
}

// buildConditions converts a ConditionSet to Qdrant conditions
func buildConditions(cs *ConditionSet) []*qdrant.Condition {
	if cs == nil {
		return nil
	}

	var conditions []*qdrant.Condition
	for _, c := range cs.Conditions {
		conditions = append(conditions, c.ToQdrantCondition()...)
	}
	return conditions
}

// buildDateTimeRangeConditions creates datetime range conditions
func buildDateTimeRangeConditions(key string, tr TimeRange) []*qdrant.Condition {
	dateRange := &qdrant.DatetimeRange{
		Gt:  toTimestamp(tr.Gt),
		Gte: toTimestamp(tr.Gte),
		Lt:  toTimestamp(tr.Lt),
		Lte: toTimestamp(tr.Lte),
	}

	if dateRange.Gt == nil && dateRange.Gte == nil && dateRange.Lt == nil && dateRange.Lte == nil {
		return nil
	}
	return []*qdrant.Condition{qdrant.NewDatetimeRange(key, dateRange)}
}

// toTimestamp converts a *time.Time to *timestamppb.Timestamp (nil-safe)
func toTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

// buildQueryFilter translates QueryFilters into the FilterSet applied to
// every retrieval pass. The tenant key is mandatory: a missing group_uid is
// rejected here, before any vector store call is made.
func buildQueryFilter(f QueryFilters) (*FilterSet, error) {
	if f.GroupUID == "" {
		return nil, apperr.New(apperr.KindInvalid, "query filters require a group_uid")
	}

	must := &ConditionSet{
		Conditions: []FilterCondition{
			TextCondition{Key: fieldGroupUID, Value: f.GroupUID},
		},
	}

	if f.OnlyMine {
		if f.UserUID == "" {
			return nil, apperr.New(apperr.KindInvalid, "only-mine filter requires a user_uid")
		}
		must.Conditions = append(must.Conditions, TextCondition{Key: fieldUserUID, Value: f.UserUID})
	}

	if len(f.CategoryIDs) > 0 {
		must.Conditions = append(must.Conditions, IntAnyCondition{Key: fieldCategoryID, Values: f.CategoryIDs})
	}

	if f.From != nil || f.To != nil {
		must.Conditions = append(must.Conditions, TimeRangeCondition{
			Key:   fieldCreatedAt,
			Value: TimeRange{Gte: f.From, Lte: f.To},
		})
	}

	return &FilterSet{Must: must}, nil
}
