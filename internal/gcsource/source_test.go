package gcsource

import "testing"

func TestSplitFolderID(t *testing.T) {
	tests := []struct {
		input      string
		wantBucket string
		wantRest   string
	}{
		{"statements-bucket", "statements-bucket", ""},
		{"statements-bucket/uploads", "statements-bucket", "uploads"},
		{"statements-bucket/uploads/jan.csv", "statements-bucket", "uploads/jan.csv"},
		{"gs://statements-bucket/uploads", "statements-bucket", "uploads"},
		{" statements-bucket/a ", "statements-bucket", "a"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			bucket, rest := splitFolderID(tt.input)
			if bucket != tt.wantBucket || rest != tt.wantRest {
				t.Errorf("splitFolderID(%q) = (%q, %q), want (%q, %q)",
					tt.input, bucket, rest, tt.wantBucket, tt.wantRest)
			}
		})
	}
}
