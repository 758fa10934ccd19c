package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookDraft_SanitizedYear(t *testing.T) {
	tests := []struct {
		name string
		year int
		want *int
	}{
		{"zero sentinel becomes nil", 0, nil},
		{"negative becomes nil", -1, nil},
		{"positive kept", 1994, intPtr(1994)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &BookDraft{Year: tt.year}
			got := d.SanitizedYear()
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestBookDraft_Payload_YearNullNotZero(t *testing.T) {
	d := &BookDraft{Title: "Pale Fire", Author: "Nabokov", Year: 0}
	p := d.Payload()
	assert.Nil(t, p.Year)

	d.Year = 1962
	p = d.Payload()
	require.NotNil(t, p.Year)
	assert.Equal(t, 1962, *p.Year)
}

func TestBookDraft_IdentityTracks(t *testing.T) {
	d := &BookDraft{ISBN: "9780743273565"}
	assert.True(t, d.HasISBNTrack())
	assert.False(t, d.HasOtherCodeTrack())

	d = &BookDraft{OtherCode: "STK-0042"}
	assert.False(t, d.HasISBNTrack())
	assert.True(t, d.HasOtherCodeTrack())

	d = &BookDraft{ISBN: "   "}
	assert.False(t, d.HasISBNTrack())
}

func TestBook_Identifier(t *testing.T) {
	b := &Book{ISBN: "9780743273565", OtherCode: "ignored"}
	assert.Equal(t, "9780743273565", b.Identifier())

	b = &Book{OtherCode: "STK-0042"}
	assert.Equal(t, "STK-0042", b.Identifier())
}

func intPtr(v int) *int { return &v }
