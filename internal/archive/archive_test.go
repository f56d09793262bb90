package archive

import (
	"context"
	"testing"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{
			name:       "valid uri",
			uri:        "gs://my-bucket/statements/u1/20240101T000000_abcd1234_s.pdf",
			wantBucket: "my-bucket",
			wantObject: "statements/u1/20240101T000000_abcd1234_s.pdf",
		},
		{
			name:    "missing scheme",
			uri:     "my-bucket/statements/s.pdf",
			wantErr: true,
		},
		{
			name:    "bucket only",
			uri:     "gs://my-bucket",
			wantErr: true,
		},
		{
			name:    "empty object path",
			uri:     "gs://my-bucket/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := parseURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseURI(%q) expected error", tt.uri)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseURI(%q) error = %v", tt.uri, err)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("parseURI(%q) = (%q, %q), want (%q, %q)",
					tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestNopArchiverStore(t *testing.T) {
	uri, err := NopArchiver{}.Store(context.Background(), "u1", "s.pdf", []byte("data"))
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if uri != "" {
		t.Errorf("Store() = %q, want empty URI", uri)
	}
}
