package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryDescriptor_Validate(t *testing.T) {
	t.Parallel()

	caps := DefaultCapabilities()
	eleven := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}

	tests := []struct {
		name    string
		q       QueryDescriptor
		wantErr bool
	}{
		{
			name: "unfiltered",
			q:    QueryDescriptor{OrderBy: FieldTitle, Limit: 10},
		},
		{
			name: "equality, in and one array filter",
			q: QueryDescriptor{
				OrderBy: FieldTitle, Limit: 10,
				Filters: []FieldFilter{
					{Field: FieldDay, Op: OpEqual, Value: "MON"},
					{Field: FieldCategory, Op: OpIn, Value: []string{"Physics", "Chemistry"}},
					{Field: FieldPeriods, Op: OpArrayContains, Value: 3},
				},
			},
		},
		{
			name: "prefix range on order field",
			q: QueryDescriptor{
				OrderBy: FieldInstructor, Limit: 10,
				Filters: []FieldFilter{
					{Field: FieldInstructor, Op: OpGreaterOrEqual, Value: "a"},
					{Field: FieldInstructor, Op: OpLess, Value: "a\uffff"},
				},
			},
		},
		{
			name:    "zero limit",
			q:       QueryDescriptor{OrderBy: FieldTitle},
			wantErr: true,
		},
		{
			name: "set too wide",
			q: QueryDescriptor{
				OrderBy: FieldTitle, Limit: 10,
				Filters: []FieldFilter{{Field: FieldCategory, Op: OpIn, Value: eleven}},
			},
			wantErr: true,
		},
		{
			name: "two in filters",
			q: QueryDescriptor{
				OrderBy: FieldTitle, Limit: 10,
				Filters: []FieldFilter{
					{Field: FieldCategory, Op: OpIn, Value: []string{"a", "b"}},
					{Field: FieldTerm, Op: OpIn, Value: []string{"Spring", "前期"}},
				},
			},
			wantErr: true,
		},
		{
			name: "two array filters",
			q: QueryDescriptor{
				OrderBy: FieldTitle, Limit: 10,
				Filters: []FieldFilter{
					{Field: FieldPeriods, Op: OpArrayContains, Value: 3},
					{Field: FieldTokens, Op: OpArrayContainsAny, Value: []string{"ab"}},
				},
			},
			wantErr: true,
		},
		{
			name: "array op on scalar field",
			q: QueryDescriptor{
				OrderBy: FieldTitle, Limit: 10,
				Filters: []FieldFilter{{Field: FieldGrade, Op: OpArrayContains, Value: "1"}},
			},
			wantErr: true,
		},
		{
			name: "range not on order field",
			q: QueryDescriptor{
				OrderBy: FieldTitle, Limit: 10,
				Filters: []FieldFilter{{Field: FieldInstructor, Op: OpGreaterOrEqual, Value: "a"}},
			},
			wantErr: true,
		},
		{
			name: "empty set",
			q: QueryDescriptor{
				OrderBy: FieldTitle, Limit: 10,
				Filters: []FieldFilter{{Field: FieldTokens, Op: OpArrayContainsAny, Value: []string{}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.q.Validate(caps)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQueryDescriptor_Fingerprint(t *testing.T) {
	t.Parallel()

	a := QueryDescriptor{
		Name: "a", Limit: 10, OrderBy: FieldTitle,
		Filters: []FieldFilter{{Field: FieldDay, Op: OpEqual, Value: "MON"}},
	}
	b := a
	b.Name = "b"
	b.Limit = 50
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "name and limit do not change the shape")

	c := a
	c.OrderBy = FieldInstructor
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestCursor_RoundTrip(t *testing.T) {
	t.Parallel()

	cur := EncodeCursor("Intro | Part 1", "c-42")
	sortValue, id, err := DecodeCursor(cur)
	assert.NoError(t, err)
	assert.Equal(t, "Intro | Part 1", sortValue)
	assert.Equal(t, "c-42", id)

	_, _, err = DecodeCursor("%%%")
	assert.Error(t, err)

	_, _, err = DecodeCursor(EncodeCursor("no-id", "")[:4])
	assert.Error(t, err)
}
