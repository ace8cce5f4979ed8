package reviews_test

import (
	"encoding/json"
	"testing"

	"github.com/JaimeStill/transflow/internal/reviews"
)

func TestChecklistValue(t *testing.T) {
	v, err := reviews.Checklist(nil).Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != "{}" {
		t.Errorf("nil checklist = %v, want {}", v)
	}

	v, err = reviews.Checklist{"terminology": true}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != `{"terminology":true}` {
		t.Errorf("value = %v", v)
	}
}

func TestChecklistScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want map[string]bool
	}{
		{"bytes", []byte(`{"tone":true,"grammar":false}`), map[string]bool{"tone": true, "grammar": false}},
		{"string", `{"tone":true}`, map[string]bool{"tone": true}},
		{"null", nil, map[string]bool{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c reviews.Checklist
			if err := c.Scan(tt.src); err != nil {
				t.Fatalf("scan: %v", err)
			}
			if len(c) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(c), len(tt.want))
			}
			for k, want := range tt.want {
				if c[k] != want {
					t.Errorf("%s = %v, want %v", k, c[k], want)
				}
			}
		})
	}

	var c reviews.Checklist
	if err := c.Scan(42); err == nil {
		t.Error("expected error for unsupported source type")
	}
	if err := c.Scan([]byte("[")); err == nil {
		t.Error("expected error for malformed json")
	}
}

func TestUpdateCommandChecklist(t *testing.T) {
	var cmd reviews.UpdateCommand
	if err := json.Unmarshal([]byte(`{"comment":"ok"}`), &cmd); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cmd.Checklist != nil {
		t.Error("omitted checklist should stay nil")
	}
	if cmd.IsComplete != nil {
		t.Error("omitted is_complete should stay nil")
	}

	if err := json.Unmarshal([]byte(`{"checklist":{}}`), &cmd); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cmd.Checklist == nil {
		t.Error("empty checklist should be non-nil")
	}
}
