package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"askcents/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"Insights", "2025 Insights"},
		{"  Report ", "2025 Report"},
		{"2024 Insights", "2024 Insights"},
		{"Q1 2025", "2025 Q1 2025"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, 2025); got != tt.want {
			t.Errorf("yearPrefixedName(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Bob's 2025"); got != "'Bob''s 2025'" {
		t.Errorf("quoteSheet = %q", got)
	}
}

func TestCredentialsJSON(t *testing.T) {
	if _, err := credentialsJSON("", ""); err == nil || !strings.Contains(err.Error(), "missing service account") {
		t.Errorf("expected missing credentials error, got %v", err)
	}

	got, err := credentialsJSON(` {"type":"service_account"} `, "/does/not/matter")
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Errorf("inline credentials = %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = credentialsJSON("", path)
	if err != nil || string(got) != `{"from":"file"}` {
		t.Errorf("file credentials = %q, %v", got, err)
	}

	if _, err := credentialsJSON("", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{ServiceAccountJSON: "{}"})
	if err == nil || err.Error() != "missing spreadsheet ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_ExportCategories(t *testing.T) {
	var got gsheet.ValueRange
	var gotPath, gotOption string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOption = r.URL.Query().Get("valueInputOption")
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","updates":{"updatedRange":"'2025 Insights'!A2:E3","updatedRows":2}}`))
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	c := NewWithService(svc, "sheet-1", "Insights")
	c.now = func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }

	vm := core.InsightsViewModel{Categories: []core.CategorySummary{
		{DisplayName: "Food & Dining", TotalAmount: 80, PercentageOfTotal: 80, TransactionCount: 2},
		{DisplayName: "Transportation", TotalAmount: 20, PercentageOfTotal: 20, TransactionCount: 1},
	}}
	ref, err := c.ExportCategories(context.Background(), vm)
	if err != nil {
		t.Fatalf("ExportCategories: %v", err)
	}
	if ref != "'2025 Insights'!A2:E3" {
		t.Errorf("ref = %q", ref)
	}
	if !strings.Contains(gotPath, "/spreadsheets/sheet-1/values/") || !strings.HasSuffix(gotPath, ":append") {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotOption != "USER_ENTERED" {
		t.Errorf("valueInputOption = %q", gotOption)
	}
	if len(got.Values) != 2 || got.Values[0][0] != "2025-02-01" || got.Values[1][1] != "Transportation" {
		t.Errorf("unexpected rows: %v", got.Values)
	}
}

func TestClient_ExportNoCategories(t *testing.T) {
	c := NewWithService(&gsheet.Service{}, "sheet-1", "")
	ref, err := c.ExportCategories(context.Background(), core.InsightsViewModel{})
	if err != nil || ref != "" {
		t.Errorf("ExportCategories = %q, %v", ref, err)
	}
	if c.sheetBase != "Insights" {
		t.Errorf("default sheet = %q", c.sheetBase)
	}
}

func TestClient_NilService(t *testing.T) {
	c := &Client{now: time.Now}
	if _, err := c.ExportCategories(context.Background(), core.InsightsViewModel{}); err == nil {
		t.Error("expected error without service")
	}
}
