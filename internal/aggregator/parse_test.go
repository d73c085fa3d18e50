package aggregator

import (
	"encoding/json"
	"testing"

	"askcents/internal/insights"
)

func TestNumber_Unmarshal(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		want  float64
	}{
		{`12.5`, true, 12.5},
		{`"7"`, true, 7},
		{`" -3.25 "`, true, -3.25},
		{`null`, false, 0},
		{`"abc"`, false, 0},
		{`"NaN"`, false, 0},
		{`"Inf"`, false, 0},
		{`true`, false, 0},
		{`{}`, false, 0},
	}
	for _, tt := range tests {
		var n Number
		if err := json.Unmarshal([]byte(tt.in), &n); err != nil {
			t.Errorf("Unmarshal(%s) error: %v", tt.in, err)
			continue
		}
		if n.Valid != tt.valid || n.Value != tt.want {
			t.Errorf("Unmarshal(%s) = %+v, want valid=%v value=%v", tt.in, n, tt.valid, tt.want)
		}
	}
}

func TestDecodeTransactions_Malformed(t *testing.T) {
	payload := []byte(`[
		{"transaction_id":"t1","amount":"12","category":["Food and Drink"]},
		42,
		"junk",
		{"transaction_id":"t2","amount":{"nested":true},"date":"2025-13-45","category":[""]}
	]`)
	txs, err := DecodeTransactions(payload)
	if err != nil {
		t.Fatalf("DecodeTransactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if insights.CategoryKey(txs[0]) != "FOOD_AND_DRINK" {
		t.Errorf("category key = %q", insights.CategoryKey(txs[0]))
	}
	if txs[1].Amount != 0 || insights.CategoryKey(txs[1]) != insights.CategoryOther {
		t.Errorf("malformed tx = %+v", txs[1])
	}

	if _, err := DecodeTransactions([]byte(`{"not":"an array"}`)); err == nil {
		t.Error("expected error for non-array payload")
	}
}

func TestParseAccounts_Empty(t *testing.T) {
	if got := ParseAccounts(nil); got == nil || len(got) != 0 {
		t.Errorf("ParseAccounts(nil) = %#v", got)
	}
}
