package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/okwera/fintrack/internal/database/repository"
)

func tx(id int64, desc, date, cat, amount string) repository.Transaction {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	return repository.Transaction{ID: id, Description: desc, Date: date, Category: cat, Amount: a}
}

func TestCompile(t *testing.T) {
	m, err := Compile("")
	require.NoError(t, err)
	require.Nil(t, m)

	m, err = Compile("   ")
	require.NoError(t, err)
	require.Nil(t, m)

	// bare input is case-insensitive by default
	m, err = Compile("coffee")
	require.NoError(t, err)
	require.True(t, m.Matches(tx(1, "COFFEE RUN", "2024-01-01", "Food", "4.50")))

	// envelope form with explicit flags
	m, err = Compile("/foo/i")
	require.NoError(t, err)
	require.True(t, m.Matches(tx(1, "FOO bar", "2024-01-01", "Other", "1")))

	// empty flags means case-sensitive
	m, err = Compile("/FOO/")
	require.NoError(t, err)
	require.False(t, m.Matches(tx(1, "foo", "2024-01-01", "Other", "1")))
	require.True(t, m.Matches(tx(2, "FOO", "2024-01-01", "Other", "1")))

	// g/u/y are accepted no-ops
	_, err = Compile("/foo/gi")
	require.NoError(t, err)
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile("(unterminated")
	require.ErrorIs(t, err, ErrInvalidPattern)

	_, err = Compile("/foo/x")
	require.ErrorIs(t, err, ErrInvalidPattern)

	_, err = Compile("/(/i")
	require.ErrorIs(t, err, ErrInvalidPattern)
}

func TestMatchesFields(t *testing.T) {
	row := tx(1, "Bus ticket", "2024-03-05", "Transport", "2.75")

	for _, input := range []string{"bus", "transport", "2.75", "2024-03"} {
		m, err := Compile(input)
		require.NoError(t, err)
		require.True(t, m.Matches(row), "input %q", input)
	}

	m, err := Compile("groceries")
	require.NoError(t, err)
	require.False(t, m.Matches(row))

	// nil matcher matches everything
	var nilM *Matcher
	require.True(t, nilM.Matches(row))
}

func TestHighlight(t *testing.T) {
	m, err := Compile("pay")
	require.NoError(t, err)

	wrap := func(s string) string { return "[" + s + "]" }
	require.Equal(t, "[Pay]ment re[pay]", m.Highlight("Payment repay", wrap))

	var nilM *Matcher
	require.Equal(t, "unchanged", nilM.Highlight("unchanged", wrap))
}

func TestApply(t *testing.T) {
	rows := []repository.Transaction{
		tx(1, "Coffee", "2024-01-01", "Food", "4.50"),
		tx(2, "Bus", "2024-01-02", "Transport", "2.75"),
		tx(3, "Espresso coffee", "2024-01-03", "Food", "3.00"),
	}

	m, err := Compile("coffee")
	require.NoError(t, err)

	got := Apply(rows, m)
	require.Len(t, got, 2)
	require.Equal(t, int64(1), got[0].ID)
	require.Equal(t, int64(3), got[1].ID)

	// nil matcher keeps everything
	require.Len(t, Apply(rows, nil), 3)
}

func TestSort(t *testing.T) {
	rows := []repository.Transaction{
		tx(1, "b", "2024-01-02", "Food", "5.00"),
		tx(2, "A", "2024-01-01", "Transport", "10.00"),
		tx(3, "c", "2024-01-03", "Bills", "1.00"),
	}

	got := Sort(rows, ByDate, true)
	require.Equal(t, []int64{2, 1, 3}, ids(got))

	got = Sort(rows, ByDate, false)
	require.Equal(t, []int64{3, 1, 2}, ids(got))

	got = Sort(rows, ByAmount, true)
	require.Equal(t, []int64{3, 1, 2}, ids(got))

	// description sorting is case-insensitive
	got = Sort(rows, ByDescription, true)
	require.Equal(t, []int64{2, 1, 3}, ids(got))

	// input slice is untouched
	require.Equal(t, []int64{1, 2, 3}, ids(rows))
}

func TestSortStable(t *testing.T) {
	rows := []repository.Transaction{
		tx(1, "x", "2024-01-01", "Food", "5.00"),
		tx(2, "y", "2024-01-01", "Food", "5.00"),
		tx(3, "z", "2024-01-01", "Food", "5.00"),
	}

	// equal keys keep input order in both directions
	require.Equal(t, []int64{1, 2, 3}, ids(Sort(rows, ByDate, true)))
	require.Equal(t, []int64{1, 2, 3}, ids(Sort(rows, ByDate, false)))
	require.Equal(t, []int64{1, 2, 3}, ids(Sort(rows, ByAmount, false)))

	// sorting twice changes nothing
	once := Sort(rows, ByAmount, false)
	require.Equal(t, ids(once), ids(Sort(once, ByAmount, false)))
}

func ids(rows []repository.Transaction) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}
