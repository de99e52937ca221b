// Package validate checks transaction input still in its external textual
// form. Every check is a pure function of its input and the injected clock.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
)

// Code classifies why a field was rejected.
type Code string

const (
	CodeEmpty         Code = "EmptyField"
	CodeFormat        Code = "FormatError"
	CodeCalendar      Code = "InvalidCalendarDate"
	CodeFuture        Code = "FutureDate"
	CodeEnum          Code = "NotInEnum"
	CodeDuplicateWord Code = "DuplicateWord"
)

// Result is the outcome of a single field check.
type Result struct {
	OK      bool
	Code    Code
	Message string
}

func pass() Result { return Result{OK: true} }

func fail(code Code, msg string) Result { return Result{Code: code, Message: msg} }

// Categories is the closed category set, in display order.
var Categories = []string{"Food", "Transport", "Entertainment", "Education", "Shopping", "Bills", "Health", "Other"}

var (
	descriptionRe = regexp.MustCompile(`^[a-zA-Z0-9\s.,!?'-]{3,100}$`)
	amountRe      = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	dateRe        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	freeformRe    = regexp.MustCompile(`^[A-Za-z]+(?:[ -][A-Za-z]+)*$`)
	wordRe        = regexp.MustCompile(`\w+`)
)

// Rules carries the active validation policy. Construct with Default and
// override from configuration; the zero value has no amount ceiling.
type Rules struct {
	AmountMax decimal.Decimal
	Freeform  bool // free-text categories instead of the closed set
	Now       func() time.Time
}

// Default returns the canonical rule set: strict 9999.99 amount ceiling and
// the closed category set.
func Default() Rules {
	return Rules{
		AmountMax: decimal.New(999999, -2),
		Now:       time.Now,
	}
}

// Description rejects blank, out-of-shape and word-stuttering descriptions.
func (r Rules) Description(v string) Result {
	if strings.TrimSpace(v) == "" {
		return fail(CodeEmpty, "Description is required")
	}
	if !descriptionRe.MatchString(v) {
		return fail(CodeFormat, "Description must be 3-100 characters: letters, numbers, spaces and basic punctuation only")
	}
	if pair, found := firstDuplicateWord(v); found {
		return fail(CodeDuplicateWord, fmt.Sprintf("Duplicate words detected: %q. Please remove repeated words.", pair))
	}
	return pass()
}

// firstDuplicateWord reports the first immediately repeated word,
// case-insensitively, with only whitespace between the two occurrences. The
// returned pair keeps its original casing. RE2 has no back-references, so
// this is a scan over maximal word runs rather than `\b(\w+)\s+\1\b`.
func firstDuplicateWord(v string) (string, bool) {
	locs := wordRe.FindAllStringIndex(v, -1)
	for i := 1; i < len(locs); i++ {
		gap := v[locs[i-1][1]:locs[i][0]]
		if strings.TrimSpace(gap) != "" {
			continue
		}
		a := v[locs[i-1][0]:locs[i-1][1]]
		b := v[locs[i][0]:locs[i][1]]
		if strings.EqualFold(a, b) {
			return v[locs[i-1][0]:locs[i][1]], true
		}
	}
	return "", false
}

// Amount rejects blank input, malformed decimals, non-positive values and
// values above the configured ceiling.
func (r Rules) Amount(v string) Result {
	if strings.TrimSpace(v) == "" {
		return fail(CodeEmpty, "Amount is required")
	}
	if !amountRe.MatchString(v) {
		return fail(CodeFormat, "Amount must be a positive number with up to 2 decimal places (e.g. 12.50)")
	}
	n, err := decimal.NewFromString(v)
	if err != nil {
		return fail(CodeFormat, "Amount must be a valid number")
	}
	if n.Sign() <= 0 {
		return fail(CodeFormat, "Amount must be greater than 0")
	}
	if r.AmountMax.Sign() > 0 && n.GreaterThan(r.AmountMax) {
		return fail(CodeFormat, fmt.Sprintf("Amount cannot exceed %s", r.AmountMax.StringFixed(2)))
	}
	return pass()
}

// Date rejects blank input, non-ISO shapes, impossible calendar dates and
// dates after today. A date equal to today passes.
func (r Rules) Date(v string) Result {
	if strings.TrimSpace(v) == "" {
		return fail(CodeEmpty, "Date is required")
	}
	if !dateRe.MatchString(v) {
		return fail(CodeFormat, "Date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		return fail(CodeCalendar, "Invalid calendar date (e.g. February 29th in a non-leap year)")
	}
	// ISO dates compare lexically in calendar order, so this stays at day
	// granularity regardless of timezone.
	if v > r.Now().Format("2006-01-02") {
		return fail(CodeFuture, "Date cannot be in the future")
	}
	return pass()
}

// Category enforces the closed set, or the letters/spaces/hyphens rule when
// Freeform is on. Closed-set rejections suggest the nearest category.
func (r Rules) Category(v string) Result {
	if strings.TrimSpace(v) == "" {
		return fail(CodeEmpty, "Category is required")
	}
	if r.Freeform {
		if !freeformRe.MatchString(v) {
			return fail(CodeFormat, "Category must contain only letters, spaces and hyphens")
		}
		return pass()
	}
	for _, c := range Categories {
		if v == c {
			return pass()
		}
	}
	msg := "Please select a valid category"
	if s := closestCategory(v); s != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", s)
	}
	return fail(CodeEnum, msg)
}

// closestCategory returns the nearest predefined category when the edit
// distance is small enough to be a plausible typo.
func closestCategory(v string) string {
	lower := strings.ToLower(strings.TrimSpace(v))
	best, bestDist := "", 3
	for _, c := range Categories {
		if d := levenshtein.ComputeDistance(lower, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// Input is a transaction still in external textual form.
type Input struct {
	Description string
	Amount      string
	Date        string
	Category    string
}

// Errors maps field name to the failure message for that field.
type Errors map[string]string

// Transaction runs every field validator over in. The record is valid iff
// the returned map is empty.
func (r Rules) Transaction(in Input) Errors {
	errs := Errors{}
	if res := r.Description(in.Description); !res.OK {
		errs["description"] = res.Message
	}
	if res := r.Amount(in.Amount); !res.OK {
		errs["amount"] = res.Message
	}
	if res := r.Date(in.Date); !res.OK {
		errs["date"] = res.Message
	}
	if res := r.Category(in.Category); !res.OK {
		errs["category"] = res.Message
	}
	return errs
}
