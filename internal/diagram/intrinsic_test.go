package diagram

import (
	"errors"
	"math"
	"testing"
)

func TestIntrinsicSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		markup  string
		wantW   float64
		wantH   float64
		wantErr error
	}{
		{
			name:   "viewBox preferred over width",
			markup: `<svg viewBox="0 0 640 480" width="100%" height="20">`,
			wantW:  640,
			wantH:  480,
		},
		{
			name:   "comma separated viewBox",
			markup: `<svg viewBox="0,0,10,5"></svg>`,
			wantW:  10,
			wantH:  5,
		},
		{
			name:   "xml prolog and doctype",
			markup: `<?xml version="1.0"?><!DOCTYPE svg><svg width="120px" height="60px"></svg>`,
			wantW:  120,
			wantH:  60,
		},
		{
			name:   "point units",
			markup: `<svg width="72pt" height="36pt"></svg>`,
			wantW:  96,
			wantH:  48,
		},
		{
			name:   "percent only falls back to default",
			markup: `<svg width="100%"></svg>`,
			wantW:  DefaultWidth,
			wantH:  DefaultHeight,
		},
		{
			name:    "html root",
			markup:  `<div><svg/></div>`,
			wantErr: ErrInvalidSVG,
		},
		{
			name:    "empty",
			markup:  ``,
			wantErr: ErrInvalidSVG,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, h, err := IntrinsicSize(tt.markup)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("IntrinsicSize() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("IntrinsicSize() unexpected error: %v", err)
			}
			if math.Abs(w-tt.wantW) > 1e-9 || math.Abs(h-tt.wantH) > 1e-9 {
				t.Errorf("IntrinsicSize() = %vx%v, want %vx%v", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
