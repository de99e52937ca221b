package validate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testRules() Rules {
	r := Default()
	r.AmountMax = decimal.New(999999, -2) // 9999.99
	r.Now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestDescription(t *testing.T) {
	r := testRules()

	require.True(t, r.Description("Lunch at the cafe").OK)
	require.True(t, r.Description("Taxi, airport - 2am!").OK)

	res := r.Description("")
	require.False(t, res.OK)
	require.Equal(t, CodeEmpty, res.Code)

	res = r.Description("ab")
	require.False(t, res.OK)
	require.Equal(t, CodeFormat, res.Code)

	res = r.Description("café visit")
	require.False(t, res.OK)
	require.Equal(t, CodeFormat, res.Code)
}

func TestDescriptionDuplicateWords(t *testing.T) {
	r := testRules()

	res := r.Description("pay pay rent")
	require.False(t, res.OK)
	require.Equal(t, CodeDuplicateWord, res.Code)
	require.Contains(t, res.Message, "pay pay")

	// case-insensitive
	res = r.Description("Pay pay rent")
	require.False(t, res.OK)
	require.Equal(t, CodeDuplicateWord, res.Code)

	// non-adjacent repeats are fine
	require.True(t, r.Description("pay rent pay").OK)
	// substrings are not repeats
	require.True(t, r.Description("paying pay").OK)
}

func TestAmount(t *testing.T) {
	r := testRules()

	require.True(t, r.Amount("12.50").OK)
	require.True(t, r.Amount("1").OK)
	require.True(t, r.Amount("9999.99").OK)

	cases := []struct {
		in   string
		code Code
	}{
		{"", CodeEmpty},
		{"abc", CodeFormat},
		{"12.345", CodeFormat},
		{"-5", CodeFormat},
		{"0", CodeFormat},
		{"0.00", CodeFormat},
		{"10000.00", CodeFormat},
	}
	for _, c := range cases {
		res := r.Amount(c.in)
		require.False(t, res.OK, "amount %q should fail", c.in)
		require.Equal(t, c.code, res.Code, "amount %q", c.in)
	}
}

func TestDate(t *testing.T) {
	r := testRules()

	require.True(t, r.Date("2024-02-29").OK) // leap year
	require.True(t, r.Date("2024-06-15").OK) // today passes

	res := r.Date("")
	require.Equal(t, CodeEmpty, res.Code)

	res = r.Date("15/06/2024")
	require.Equal(t, CodeFormat, res.Code)

	res = r.Date("2023-02-29")
	require.Equal(t, CodeCalendar, res.Code)

	res = r.Date("2024-04-31")
	require.Equal(t, CodeCalendar, res.Code)

	res = r.Date("2024-06-16")
	require.Equal(t, CodeFuture, res.Code)
}

func TestCategory(t *testing.T) {
	r := testRules()

	for _, c := range Categories {
		require.True(t, r.Category(c).OK)
	}

	res := r.Category("")
	require.Equal(t, CodeEmpty, res.Code)

	res = r.Category("Fod")
	require.Equal(t, CodeEnum, res.Code)
	require.Contains(t, res.Message, "did you mean Food?")

	res = r.Category("Groceries")
	require.Equal(t, CodeEnum, res.Code)
}

func TestCategoryFreeform(t *testing.T) {
	r := testRules()
	r.Freeform = true

	require.True(t, r.Category("Side Projects").OK)
	require.True(t, r.Category("Co-working").OK)

	res := r.Category("Rent 2024")
	require.Equal(t, CodeFormat, res.Code)
}

func TestTransaction(t *testing.T) {
	r := testRules()

	errs := r.Transaction(Input{
		Description: "Groceries at the market",
		Amount:      "45.20",
		Date:        "2024-06-10",
		Category:    "Food",
	})
	require.Empty(t, errs)

	errs = r.Transaction(Input{})
	require.Len(t, errs, 4)
	require.Contains(t, errs, "description")
	require.Contains(t, errs, "amount")
	require.Contains(t, errs, "date")
	require.Contains(t, errs, "category")
}
