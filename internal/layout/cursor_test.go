package layout

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPageCursor
// ---------------------------------------------------------------------------

func TestPageCursor(t *testing.T) {
	t.Parallel()

	c := NewPageCursor(A4)
	if !c.AtTop() || c.Y != 25 || c.PageIndex != 0 {
		t.Fatalf("new cursor = %+v, want top of page 0", c)
	}
	if got := c.ContentHeight(); got != 247 {
		t.Errorf("ContentHeight() = %v, want 247", got)
	}

	y := c.Advance(100)
	if y != 25 || c.Y != 125 {
		t.Errorf("Advance(100) = %v, Y = %v, want 25, 125", y, c.Y)
	}
	if c.AtTop() {
		t.Error("AtTop() = true after Advance")
	}
	if !c.Fits(147) {
		t.Error("Fits(147) = false, want true")
	}
	if c.Fits(147.5) {
		t.Error("Fits(147.5) = true, want false")
	}

	c.Advance(-10)
	if c.Y != 125 {
		t.Errorf("Y = %v after negative Advance, want 125", c.Y)
	}

	c.Break()
	if c.PageIndex != 1 || !c.AtTop() {
		t.Errorf("after Break: %+v, want top of page 1", c)
	}
}

// ---------------------------------------------------------------------------
// TestPageSpec
// ---------------------------------------------------------------------------

func TestPageSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    PageSpec
		wantErr bool
	}{
		{name: "a4", spec: A4},
		{name: "letter landscape", spec: Letter.Landscape()},
		{name: "zero size", spec: PageSpec{}, wantErr: true},
		{name: "negative margin", spec: PageSpec{Width: 210, Height: 297, Margin: -1}, wantErr: true},
		{name: "margins eat the page", spec: PageSpec{Width: 100, Height: 100, Margin: 45}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.spec.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPageSpec) {
				t.Errorf("Validate() error = %v, want ErrInvalidPageSpec", err)
			}
		})
	}
}

func TestPageSizeByName(t *testing.T) {
	t.Parallel()

	got, err := PageSizeByName(" Letter ")
	if err != nil {
		t.Fatalf("PageSizeByName() unexpected error: %v", err)
	}
	if got != Letter {
		t.Errorf("PageSizeByName() = %+v, want %+v", got, Letter)
	}

	if _, err := PageSizeByName("tabloid"); !errors.Is(err, ErrInvalidPageSpec) {
		t.Errorf("PageSizeByName(tabloid) error = %v, want ErrInvalidPageSpec", err)
	}
}
