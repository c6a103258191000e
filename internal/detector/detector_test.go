package detector

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestDetect(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name     string
		filename string
		wantKind Kind
	}{
		{
			name:     "fixture json",
			filename: "fixtures/test_bn128.json",
			wantKind: Fixture,
		},
		{
			name:     ".JSON extension (uppercase)",
			filename: "TEST.JSON",
			wantKind: Fixture,
		},
		{
			name:     ".hex extension",
			filename: "contract.hex",
			wantKind: Hex,
		},
		{
			name:     ".txt extension",
			filename: "contract.txt",
			wantKind: Hex,
		},
		{
			name:     ".bin extension",
			filename: "contract.bin",
			wantKind: Binary,
		},
		{
			name:     "no extension",
			filename: "contract",
			wantKind: Hex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.filename)
			assert.Equal(t, tt.wantKind, got)
		})
	}
}
