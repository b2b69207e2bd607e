package personal

import "testing"

func testRows() []Info {
	return []Info{
		{Species: 0},
		{Species: 3, Name: "venusaur", Stats: [6]int{80, 82, 83, 100, 100, 80}, Types: [2]int{11, 3}, FormCount: 2, MegaForms: []int{1}},
		{Species: 1, Name: "bulbasaur", Stats: [6]int{45, 49, 49, 65, 65, 45}, Types: [2]int{11, 3}},
		{Species: 2, Name: "ivysaur", Stats: [6]int{60, 62, 63, 80, 80, 60}, Types: [2]int{11, 3}},
		{Species: 4, Name: "charmander", Stats: [6]int{39, 52, 43, 60, 50, 64}, Types: [2]int{9, 9}},
	}
}

func TestNewTable(t *testing.T) {
	table, err := NewTable(testRows())
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	if table.Len() != 5 {
		t.Errorf("Len() = %d, want 5", table.Len())
	}
	if table.MaxSpecies() != 4 {
		t.Errorf("MaxSpecies() = %d, want 4", table.MaxSpecies())
	}
	for i, r := range table.Rows() {
		if r.Species != i {
			t.Errorf("Rows()[%d].Species = %d, want ascending order", i, r.Species)
		}
	}
	if got := table.BST(3); got != 525 {
		t.Errorf("BST(3) = %d, want 525", got)
	}
	if got := table.BST(999); got != 0 {
		t.Errorf("BST(999) = %d, want 0", got)
	}
}

func TestNewTableRejectsDuplicates(t *testing.T) {
	rows := append(testRows(), Info{Species: 2})
	if _, err := NewTable(rows); err == nil {
		t.Fatal("NewTable() with duplicate species succeeded")
	}
}

func TestClosestBST(t *testing.T) {
	table, err := NewTable(testRows())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		bst  int
		want int
	}{
		{name: "exact match", bst: 405, want: 2},
		{name: "nearest above", bst: 500, want: 3},
		{name: "tie goes to lowest id", bst: 313, want: 1}, // bulbasaur 318, charmander 308
		{name: "zero never picks empty slot", bst: 0, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.ClosestBST(tt.bst); got != tt.want {
				t.Errorf("ClosestBST(%d) = %d, want %d", tt.bst, got, tt.want)
			}
		})
	}
}

func TestInfoHelpers(t *testing.T) {
	info := testRows()[1]
	if !info.HasType(3) || info.HasType(9) {
		t.Errorf("HasType mismatch for %+v", info.Types)
	}
	if !info.IsMegaForm(1) || info.IsMegaForm(0) {
		t.Errorf("IsMegaForm mismatch for %+v", info.MegaForms)
	}
}
