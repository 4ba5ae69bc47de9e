package types

import (
	"net/url"
	"testing"
	"time"
)

func TestFilterCriteria_EncodeOnlyTruthy(t *testing.T) {
	date := NewLocalDateTime(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	zero := LocalDateTime{}

	tests := []struct {
		name     string
		criteria FilterCriteria
		want     map[string]string
	}{
		{
			name:     "empty criteria",
			criteria: FilterCriteria{},
			want:     map[string]string{},
		},
		{
			name: "falsy values omitted",
			criteria: FilterCriteria{
				Brand:       "",
				EngineLiter: Float(0),
				IsNew:       Bool(false),
				MinPrice:    Float(0),
				MaxPrice:    nil,
				MinDate:     &zero,
			},
			want: map[string]string{},
		},
		{
			name: "all truthy",
			criteria: FilterCriteria{
				Brand:         "Toyota",
				Specification: "hybrid",
				EngineLiter:   Float(1.8),
				IsNew:         Bool(true),
				MinPrice:      Float(10000),
				MaxPrice:      Float(25000.5),
				MinDate:       &date,
				MaxDate:       &date,
			},
			want: map[string]string{
				"brand":         "Toyota",
				"specification": "hybrid",
				"engineLiter":   "1.8",
				"isNew":         "true",
				"minPrice":      "10000",
				"maxPrice":      "25000.5",
				"minDate":       "2024-05-01T00:00:00",
				"maxDate":       "2024-05-01T00:00:00",
			},
		},
		{
			name:     "mixed",
			criteria: FilterCriteria{Specification: "sedan", IsNew: Bool(false), MaxPrice: Float(9000)},
			want:     map[string]string{"specification": "sedan", "maxPrice": "9000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := url.Values{}
			tt.criteria.Encode(v)

			if len(v) != len(tt.want) {
				t.Fatalf("encoded %d params (%v), want %d", len(v), v, len(tt.want))
			}
			for key, want := range tt.want {
				if got := v.Get(key); got != want {
					t.Errorf("%s = %q, want %q", key, got, want)
				}
			}
			if tt.criteria.IsZero() != (len(tt.want) == 0) {
				t.Errorf("IsZero() = %v, want %v", tt.criteria.IsZero(), len(tt.want) == 0)
			}
			if tt.criteria.ActiveCount() != len(tt.want) {
				t.Errorf("ActiveCount() = %d, want %d", tt.criteria.ActiveCount(), len(tt.want))
			}
		})
	}
}

func TestSortKey_ParseAndDefault(t *testing.T) {
	if k, ok := ParseSortKey("brand"); !ok || k != SortBrand {
		t.Errorf("ParseSortKey(brand) = %q, %v", k, ok)
	}
	if _, ok := ParseSortKey("colour"); ok {
		t.Error("ParseSortKey(colour) should fail")
	}
	if SortNone.OrDefault() != SortID {
		t.Errorf("SortNone.OrDefault() = %q, want id", SortNone.OrDefault())
	}
	if SortPrice.OrDefault() != SortPrice {
		t.Errorf("SortPrice.OrDefault() = %q", SortPrice.OrDefault())
	}
	if SortAsc.Flip() != SortDesc || SortDesc.Flip() != SortAsc {
		t.Error("Flip() did not toggle direction")
	}
}
