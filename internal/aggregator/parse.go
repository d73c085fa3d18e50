package aggregator

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"askcents/internal/core"
)

// Number decodes a JSON number, a numeric string or null. Anything that does
// not parse, including NaN and infinities, decodes to an absent value rather
// than failing the surrounding record.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		s = strings.TrimSpace(str)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = Number{Value: f, Valid: true}
	return nil
}

// Or returns the value, or def when absent.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// RawBalances is the balance block of an account record.
type RawBalances struct {
	Current   Number `json:"current"`
	Available Number `json:"available"`
	Limit     Number `json:"limit"`
}

// RawAccount is an account record as returned by the proxy.
type RawAccount struct {
	AccountID    string      `json:"account_id"`
	Name         string      `json:"name"`
	OfficialName string      `json:"official_name"`
	Type         string      `json:"type"`
	Subtype      string      `json:"subtype"`
	Balances     RawBalances `json:"balances"`
}

// RawCategory accepts either a list of labels or a single label.
type RawCategory []string

func (c *RawCategory) UnmarshalJSON(b []byte) error {
	*c = nil
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*c = list
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil && one != "" {
		*c = []string{one}
	}
	return nil
}

// RawTransaction is a transaction record as returned by the proxy.
type RawTransaction struct {
	TransactionID           string      `json:"transaction_id"`
	AccountID               string      `json:"account_id"`
	Date                    string      `json:"date"`
	Name                    string      `json:"name"`
	MerchantName            string      `json:"merchant_name"`
	Amount                  Number      `json:"amount"`
	Category                RawCategory `json:"category"`
	PersonalFinanceCategory *struct {
		Primary  string `json:"primary"`
		Detailed string `json:"detailed"`
	} `json:"personal_finance_category"`
}

// ParseAccounts converts raw account records. It never fails per record:
// missing balances become 0 and unknown types become "other".
func ParseAccounts(raw []RawAccount) []core.Account {
	out := make([]core.Account, 0, len(raw))
	for _, r := range raw {
		a := core.Account{
			ID:             r.AccountID,
			Name:           firstNonEmpty(r.Name, r.OfficialName, "Account"),
			Type:           core.ParseAccountType(r.Type, r.Subtype),
			Subtype:        strings.TrimSpace(r.Subtype),
			CurrentBalance: r.Balances.Current.Or(r.Balances.Available.Or(0)),
		}
		if r.Balances.Limit.Valid {
			limit := r.Balances.Limit.Value
			a.CreditLimit = &limit
		}
		out = append(out, a)
	}
	return out
}

// ParseTransactions converts raw transaction records. Missing amounts become
// 0, unparseable dates the zero date, and a missing category resolves to
// OTHER downstream.
func ParseTransactions(raw []RawTransaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(raw))
	for _, r := range raw {
		t := core.Transaction{
			ID:          r.TransactionID,
			Date:        core.ParseDate(r.Date),
			Name:        firstNonEmpty(r.MerchantName, r.Name, "Unknown"),
			Amount:      r.Amount.Or(0),
			RawCategory: nonEmpty(r.Category),
		}
		if pfc := r.PersonalFinanceCategory; pfc != nil && strings.TrimSpace(pfc.Primary) != "" {
			t.PersonalFinanceCategory = &core.PersonalFinanceCategory{
				Primary:  strings.TrimSpace(pfc.Primary),
				Detailed: strings.TrimSpace(pfc.Detailed),
			}
		}
		out = append(out, t)
	}
	return out
}

// DecodeTransactions parses a JSON array of raw transactions. Elements that
// are not objects are skipped.
func DecodeTransactions(b []byte) ([]core.Transaction, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, err
	}
	raw := make([]RawTransaction, 0, len(items))
	for _, it := range items {
		var r RawTransaction
		if json.Unmarshal(it, &r) != nil {
			continue
		}
		raw = append(raw, r)
	}
	return ParseTransactions(raw), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
