package boundary

import "testing"

func TestSelect(t *testing.T) {
	found := func(m Mode, start int) Result { return Result{Mode: m, Start: start, Found: true} }
	none := func(m Mode) Result { return Result{Mode: m} }

	tests := []struct {
		name    string
		bw, st  Result
		want    int
		wantOK  bool
		wantMod Mode
	}{
		{"static earlier wins", found(BlackWhite, 50), found(Static, 40), 40, true, Static},
		{"blackwhite earlier wins", found(BlackWhite, 30), found(Static, 40), 30, true, BlackWhite},
		{"tie goes to blackwhite", found(BlackWhite, 40), found(Static, 40), 40, true, BlackWhite},
		{"only blackwhite", found(BlackWhite, 100), none(Static), 100, true, BlackWhite},
		{"only static", none(BlackWhite), found(Static, 70), 70, true, Static},
		{"neither", none(BlackWhite), none(Static), 0, false, BlackWhite},
		{"reject start before first second", none(BlackWhite), found(Static, 0), 0, false, BlackWhite},
		{"first second is usable", found(BlackWhite, 1), none(Static), 1, true, BlackWhite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Select(tt.bw, tt.st)
			if ok != tt.wantOK {
				t.Fatalf("Select ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Start != tt.want || got.Mode != tt.wantMod {
				t.Fatalf("Select = %d (%s), want %d (%s)", got.Start, got.Mode, tt.want, tt.wantMod)
			}
		})
	}
}
