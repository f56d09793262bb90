package statement

import (
	"reflect"
	"testing"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "single header with continuation lines",
			raw:  "01-08-23 01-08-23 UPI/DR/321360840952/VIKRANT\n/UTIB/vik.bhat22/UPI 000000\n2519.00 DR",
			want: []string{"01-08-23 01-08-23 UPI/DR/321360840952/VIKRANT /UTIB/vik.bhat22/UPI 000000 2519.00 DR"},
		},
		{
			name: "two headers produce two blocks",
			raw: "01-08-23 01-08-23 UPI/DR/FIRST 100.00 DR\n" +
				"02-08-23 02-08-23 NEFT SECOND\ncontinuation 200.00 CR",
			want: []string{
				"01-08-23 01-08-23 UPI/DR/FIRST 100.00 DR",
				"02-08-23 02-08-23 NEFT SECOND continuation 200.00 CR",
			},
		},
		{
			name: "preamble before first header becomes its own block",
			raw:  "Account Statement\nPage 1 of 3\n01-08-23 01-08-23 UPI PAYMENT 50.00 DR",
			want: []string{
				"Account Statement Page 1 of 3",
				"01-08-23 01-08-23 UPI PAYMENT 50.00 DR",
			},
		},
		{
			name: "blank lines are dropped",
			raw:  "01-08-23 01-08-23 UPI PAYMENT\n\n   \n50.00 DR\n",
			want: []string{"01-08-23 01-08-23 UPI PAYMENT 50.00 DR"},
		},
		{
			name: "single date does not open a block",
			raw:  "01-08-23 UPI PAYMENT 50.00 DR\n02-08-23 02-08-23 REAL HEADER",
			want: []string{
				"01-08-23 UPI PAYMENT 50.00 DR",
				"02-08-23 02-08-23 REAL HEADER",
			},
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
		{
			name: "whitespace only",
			raw:  "   \n\t\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segment() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
