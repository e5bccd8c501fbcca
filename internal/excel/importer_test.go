package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRow(t *testing.T) {
	tests := []struct {
		name    string
		row     []string
		want    importedRow
		wantErr string
	}{
		{
			name: "full row",
			row:  []string{"Harbor", "港", "Marine terms"},
			want: importedRow{English: "harbor", Japanese: "港", Project: "Marine terms"},
		},
		{
			name: "no project column",
			row:  []string{"vessel", "船舶"},
			want: importedRow{English: "vessel", Japanese: "船舶"},
		},
		{
			name: "whitespace trimmed",
			row:  []string{"  Vessel ", " 船舶 ", " Marine "},
			want: importedRow{English: "vessel", Japanese: "船舶", Project: "Marine"},
		},
		{
			name:    "too few columns",
			row:     []string{"harbor"},
			wantErr: "at least English and Japanese",
		},
		{
			name:    "empty english",
			row:     []string{"  ", "港"},
			wantErr: "empty English",
		},
		{
			name:    "empty japanese",
			row:     []string{"harbor", ""},
			wantErr: "empty Japanese",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRow(tt.row)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
