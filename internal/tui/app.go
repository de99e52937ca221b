package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/okwera/fintrack/internal/database/repository"
	"github.com/okwera/fintrack/internal/filter"
	"github.com/okwera/fintrack/internal/money"
	"github.com/okwera/fintrack/internal/prefs"
	"github.com/okwera/fintrack/internal/service"
	"github.com/okwera/fintrack/internal/stats"
	"github.com/okwera/fintrack/internal/validate"
)

// App ties together views.
type App struct {
	ctx      context.Context
	repos    Repos
	services Services
	state    appState

	transactions []repository.Transaction
	settings     repository.Settings
	txCursor     int
	status       string

	// search
	searchActive bool
	searchInput  string
	matcher      *filter.Matcher

	// sorting
	sortField string
	sortAsc   bool

	// form (add/edit)
	form formState

	// settings view
	settingsMode settingsMode
	inputBuffer  string
	freeform     bool
}

type Repos struct {
	Transactions *repository.TransactionRepo
	Settings     *repository.SettingsRepo
}

type Services struct {
	Tracker     *service.Tracker
	Portability *service.Portability
}

type appState string

const (
	viewDashboard    appState = "dashboard"
	viewTransactions appState = "transactions"
	viewForm         appState = "form"
	viewSettings     appState = "settings"
)

type settingsMode string

const (
	settingsModeIdle    settingsMode = "idle"
	settingsModeBudget  settingsMode = "budget"
	settingsModeRate    settingsMode = "rate"
	settingsModeConvert settingsMode = "convert"
	settingsModeImport  settingsMode = "import"
)

// formState holds the add/edit form. editingID is nil when adding.
type formState struct {
	editingID *int64
	fields    [4]string // description, amount, date, category
	focus     int
	catCursor int
	errors    validate.Errors
}

var formLabels = [4]string{"Description", "Amount", "Date", "Category"}

const (
	fieldDescription = 0
	fieldAmount      = 1
	fieldDate        = 2
	fieldCategory    = 3
)

func New(ctx context.Context, repos Repos, services Services, p prefs.Prefs, freeform bool) *App {
	a := &App{
		ctx:          ctx,
		repos:        repos,
		services:     services,
		state:        viewDashboard,
		sortField:    p.SortField,
		sortAsc:      p.SortAsc,
		settingsMode: settingsModeIdle,
		settings:     repository.DefaultSettings(),
		freeform:     freeform,
	}
	if p.LastView == string(viewTransactions) || p.LastView == string(viewSettings) {
		a.state = appState(p.LastView)
	}
	if a.sortField == "" {
		a.sortField = filter.ByDate
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadTransactions(), a.loadSettings())
}

func (a *App) loadTransactions() tea.Cmd {
	return func() tea.Msg {
		return transactionsMsg(a.services.Tracker.List(a.ctx))
	}
}

func (a *App) loadSettings() tea.Cmd {
	return func() tea.Msg {
		s, err := a.repos.Settings.Get(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return settingsMsg(s)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.state == viewForm {
			return a.handleFormKey(m)
		}
		if a.searchActive {
			return a.handleSearchKey(m)
		}
		if a.state == viewSettings && a.settingsMode != settingsModeIdle {
			return a.handleSettingsInputKey(m)
		}
		return a.handleKey(m)
	case transactionsMsg:
		a.transactions = []repository.Transaction(m)
		if a.txCursor >= len(a.visible()) {
			a.txCursor = 0
		}
	case settingsMsg:
		a.settings = repository.Settings(m)
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	case formErrorsMsg:
		a.form.errors = validate.Errors(m)
	case formSavedMsg:
		a.state = viewTransactions
		a.status = "transaction saved"
		return a, a.loadTransactions()
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		a.savePrefs()
		return a, tea.Quit
	case "d":
		a.state = viewDashboard
		a.status = ""
	case "t":
		a.state = viewTransactions
		a.status = ""
	case "p":
		a.state = viewSettings
		a.status = ""
	case "a":
		if a.state == viewDashboard || a.state == viewTransactions {
			a.openForm(nil)
		}
	case "/":
		if a.state == viewTransactions {
			a.searchActive = true
			a.status = ""
		}
	case "esc":
		if a.state == viewTransactions && a.matcher != nil {
			a.matcher = nil
			a.searchInput = ""
			a.txCursor = 0
			a.status = "search cleared"
		}
	case "s":
		if a.state == viewTransactions {
			a.cycleSortField()
		}
	case "o":
		if a.state == viewTransactions {
			a.sortAsc = !a.sortAsc
			a.savePrefs()
		}
	case "up", "k":
		if a.state == viewTransactions && a.txCursor > 0 {
			a.txCursor--
		}
	case "down", "j":
		if a.state == viewTransactions && a.txCursor < len(a.visible())-1 {
			a.txCursor++
		}
	case "enter", "e":
		if a.state == viewTransactions {
			if t := a.selected(); t != nil {
				a.openForm(t)
			}
		}
	case "x", "backspace":
		if a.state == viewTransactions {
			if t := a.selected(); t != nil {
				return a, a.deleteCmd(t.ID)
			}
		}
	case "b":
		if a.state == viewSettings {
			a.settingsMode = settingsModeBudget
			a.inputBuffer = ""
			if a.settings.BudgetCap != nil {
				a.inputBuffer = a.settings.BudgetCap.String()
			}
		}
	case "r":
		if a.state == viewSettings {
			a.settingsMode = settingsModeRate
			a.inputBuffer = ""
		}
	case "c":
		if a.state == viewSettings {
			a.settingsMode = settingsModeConvert
			a.inputBuffer = ""
		}
	case "u":
		if a.state == viewSettings {
			a.cycleBaseCurrency()
			return a, a.saveSettingsCmd(a.settings, "base currency updated")
		}
	case "w":
		if a.state == viewSettings {
			return a, a.exportCmd()
		}
	case "i":
		if a.state == viewSettings {
			a.settingsMode = settingsModeImport
			a.inputBuffer = ""
		}
	}
	return a, nil
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.searchActive = false
		a.searchInput = ""
	case tea.KeyEnter:
		a.searchActive = false
		mt, err := filter.Compile(a.searchInput)
		if err != nil {
			a.matcher = nil
			a.status = err.Error()
			return a, nil
		}
		a.matcher = mt
		a.txCursor = 0
		a.status = ""
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.searchInput) > 0 {
			a.searchInput = a.searchInput[:len(a.searchInput)-1]
		}
	case tea.KeySpace:
		a.searchInput += " "
	case tea.KeyRunes:
		a.searchInput += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.state = viewTransactions
		a.status = ""
		return a, nil
	case tea.KeyEnter:
		return a, a.submitFormCmd()
	case tea.KeyTab, tea.KeyDown:
		a.form.focus = (a.form.focus + 1) % len(a.form.fields)
		return a, nil
	case tea.KeyShiftTab, tea.KeyUp:
		a.form.focus = (a.form.focus + len(a.form.fields) - 1) % len(a.form.fields)
		return a, nil
	}
	if a.form.focus == fieldCategory && !a.freeform {
		switch m.String() {
		case "left", "h":
			a.form.catCursor = (a.form.catCursor + len(validate.Categories) - 1) % len(validate.Categories)
			a.form.fields[fieldCategory] = validate.Categories[a.form.catCursor]
		case "right", "l", " ":
			a.form.catCursor = (a.form.catCursor + 1) % len(validate.Categories)
			a.form.fields[fieldCategory] = validate.Categories[a.form.catCursor]
		}
		return a, nil
	}
	switch m.Type {
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		f := &a.form.fields[a.form.focus]
		if len(*f) > 0 {
			*f = (*f)[:len(*f)-1]
		}
	case tea.KeySpace:
		a.form.fields[a.form.focus] += " "
	case tea.KeyRunes:
		a.form.fields[a.form.focus] += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleSettingsInputKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.settingsMode = settingsModeIdle
		a.inputBuffer = ""
		return a, nil
	case tea.KeyEnter:
		mode := a.settingsMode
		text := strings.TrimSpace(a.inputBuffer)
		a.settingsMode = settingsModeIdle
		a.inputBuffer = ""
		switch mode {
		case settingsModeBudget:
			return a, a.setBudgetCmd(text)
		case settingsModeRate:
			return a, a.setRateCmd(text)
		case settingsModeConvert:
			a.runConvert(text)
		case settingsModeImport:
			if text == "" {
				a.status = "enter a file path"
				return a, nil
			}
			return a, a.importCmd(text)
		}
		return a, nil
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.inputBuffer) > 0 {
			a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
		}
	case tea.KeySpace:
		a.inputBuffer += " "
	case tea.KeyRunes:
		a.inputBuffer += string(m.Runes)
	}
	return a, nil
}

// commands

func (a *App) submitFormCmd() tea.Cmd {
	in := validate.Input{
		Description: a.form.fields[fieldDescription],
		Amount:      a.form.fields[fieldAmount],
		Date:        a.form.fields[fieldDate],
		Category:    a.form.fields[fieldCategory],
	}
	editing := a.form.editingID
	return func() tea.Msg {
		var err error
		if editing == nil {
			_, err = a.services.Tracker.Add(a.ctx, in)
		} else {
			_, err = a.services.Tracker.Update(a.ctx, *editing, in)
		}
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				return formErrorsMsg(verr.Fields)
			}
			return errMsg{err}
		}
		return formSavedMsg{}
	}
}

func (a *App) deleteCmd(id int64) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.services.Tracker.Delete(a.ctx, id); err != nil {
				return errMsg{err}
			}
			return statusMsg("transaction deleted")
		},
		a.loadTransactions(),
	)
}

func (a *App) setBudgetCmd(text string) tea.Cmd {
	s := a.settings
	if text == "" {
		s.BudgetCap = nil
	} else {
		cap, err := decimal.NewFromString(text)
		if err != nil || cap.Sign() <= 0 {
			return func() tea.Msg { return statusMsg("budget must be a positive amount") }
		}
		s.BudgetCap = &cap
	}
	return a.saveSettingsCmd(s, "budget updated")
}

// setRateCmd parses "CODE RATE", e.g. "EUR 0.92".
func (a *App) setRateCmd(text string) tea.Cmd {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		return func() tea.Msg { return statusMsg("usage: CODE RATE (e.g. EUR 0.92)") }
	}
	rate, err := decimal.NewFromString(parts[1])
	if err != nil || rate.Sign() <= 0 {
		return func() tea.Msg { return statusMsg("rate must be a positive number") }
	}
	s := a.settings
	rates := make(map[string]decimal.Decimal, len(s.ExchangeRates)+1)
	for k, v := range s.ExchangeRates {
		rates[k] = v
	}
	rates[strings.ToUpper(parts[0])] = rate
	s.ExchangeRates = rates
	return a.saveSettingsCmd(s, "rate updated")
}

func (a *App) saveSettingsCmd(s repository.Settings, okStatus string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.repos.Settings.Save(a.ctx, s); err != nil {
				return errMsg{err}
			}
			return statusMsg(okStatus)
		},
		a.loadSettings(),
	)
}

// runConvert parses "AMOUNT FROM TO", e.g. "10 USD EUR".
func (a *App) runConvert(text string) {
	parts := strings.Fields(text)
	if len(parts) != 3 {
		a.status = "usage: AMOUNT FROM TO (e.g. 10 USD EUR)"
		return
	}
	amount, err := decimal.NewFromString(parts[0])
	if err != nil {
		a.status = "amount must be a number"
		return
	}
	from, to := strings.ToUpper(parts[1]), strings.ToUpper(parts[2])
	out, err := money.Convert(amount, from, to, a.settings.ExchangeRates)
	if err != nil {
		a.status = err.Error()
		return
	}
	a.status = fmt.Sprintf("%s = %s", money.Format(amount, from), money.Format(out, to))
}

func (a *App) exportCmd() tea.Cmd {
	return func() tea.Msg {
		data, err := a.services.Portability.Export(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		name := fmt.Sprintf("fintrack-export-%s.json", time.Now().Format("2006-01-02"))
		if err := os.WriteFile(name, data, 0o600); err != nil {
			return errMsg{err}
		}
		return statusMsg("exported to " + name)
	}
}

func (a *App) importCmd(path string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			data, err := os.ReadFile(path)
			if err != nil {
				return errMsg{err}
			}
			if err := a.services.Portability.Import(a.ctx, data); err != nil {
				return errMsg{err}
			}
			return statusMsg("import complete")
		},
		a.loadTransactions(),
		a.loadSettings(),
	)
}

// helpers

func (a *App) visible() []repository.Transaction {
	return filter.View(a.transactions, a.matcher, a.sortField, a.sortAsc)
}

func (a *App) selected() *repository.Transaction {
	rows := a.visible()
	if len(rows) == 0 || a.txCursor >= len(rows) {
		return nil
	}
	t := rows[a.txCursor]
	return &t
}

func (a *App) openForm(t *repository.Transaction) {
	a.form = formState{}
	a.form.fields[fieldDate] = time.Now().Format("2006-01-02")
	a.form.fields[fieldCategory] = validate.Categories[0]
	if t != nil {
		id := t.ID
		a.form.editingID = &id
		a.form.fields[fieldDescription] = t.Description
		a.form.fields[fieldAmount] = t.Amount.String()
		a.form.fields[fieldDate] = t.Date
		a.form.fields[fieldCategory] = t.Category
		for i, c := range validate.Categories {
			if c == t.Category {
				a.form.catCursor = i
			}
		}
	}
	a.state = viewForm
	a.status = ""
}

func (a *App) cycleSortField() {
	order := []string{filter.ByDate, filter.ByAmount, filter.ByDescription, filter.ByCategory}
	for i, f := range order {
		if f == a.sortField {
			a.sortField = order[(i+1)%len(order)]
			a.savePrefs()
			return
		}
	}
	a.sortField = filter.ByDate
}

func (a *App) cycleBaseCurrency() {
	codes := make([]string, 0, len(a.settings.ExchangeRates))
	for c := range a.settings.ExchangeRates {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	for i, c := range codes {
		if c == a.settings.BaseCurrency {
			a.settings.BaseCurrency = codes[(i+1)%len(codes)]
			return
		}
	}
	if len(codes) > 0 {
		a.settings.BaseCurrency = codes[0]
	}
}

func (a *App) savePrefs() {
	_ = prefs.Save(prefs.Prefs{SortField: a.sortField, SortAsc: a.sortAsc, LastView: string(a.state)})
}

// messages
type transactionsMsg []repository.Transaction

type settingsMsg repository.Settings

type statusMsg string

type errMsg struct{ error }

type formErrorsMsg validate.Errors

type formSavedMsg struct{}

// styles
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	matchStyle = lipgloss.NewStyle().Reverse(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func (a *App) View() string {
	var body string
	switch a.state {
	case viewTransactions:
		body = a.renderTransactions()
	case viewForm:
		body = a.renderForm()
	case viewSettings:
		body = a.renderSettings()
	default:
		body = a.renderDashboard()
	}
	return body
}

func (a *App) renderDashboard() string {
	title := titleStyle.Render("FinTrack Dashboard")
	st := stats.Compute(a.transactions, time.Now())
	cur := a.settings.BaseCurrency

	body := fmt.Sprintf("Transactions: %d\nTotal spending: %s\nLast 7 days: %s\nTop category: %s",
		st.TotalTransactions,
		money.Format(st.TotalSpending, cur),
		money.Format(st.WeekSpending, cur),
		st.TopCategory)

	if len(st.CategoryOrder) > 0 {
		body += "\n\nBy category:"
		ordered := append([]string(nil), st.CategoryOrder...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return st.CategoryTotals[ordered[i]].GreaterThan(st.CategoryTotals[ordered[j]])
		})
		for _, c := range ordered {
			body += fmt.Sprintf("\n- %-16s %s", c, money.Format(st.CategoryTotals[c], cur))
		}
	}

	bs := stats.Budget(st.TotalSpending, a.settings.BudgetCap)
	body += "\n\n" + a.renderBudget(bs, cur)

	recent := filter.Sort(a.transactions, filter.ByDate, false)
	if len(recent) > 5 {
		recent = recent[:5]
	}
	if len(recent) > 0 {
		body += "\n\nRecent:"
		for _, t := range recent {
			body += fmt.Sprintf("\n%s  %-30s  %10s  %s", t.Date, t.Description, money.Format(t.Amount, cur), t.Category)
		}
	}

	body += "\n\n[a] Add  [t] Transactions  [p] Settings  [q] Quit"
	if a.status != "" {
		body += "\n" + a.status
	}
	return fmt.Sprintf("%s\n%s", title, body)
}

func (a *App) renderBudget(bs stats.BudgetStatus, cur string) string {
	line := "Budget: "
	if bs.Cap != nil {
		line += fmt.Sprintf("%s of %s (%s%%)  ", money.Format(bs.Spent, cur), money.Format(*bs.Cap, cur), bs.Percentage.Round(0))
	}
	switch bs.Status {
	case stats.StatusDanger:
		line += errStyle.Render(bs.Message)
	case stats.StatusWarning:
		line += warnStyle.Render(bs.Message)
	case stats.StatusSuccess:
		line += okStyle.Render(bs.Message)
	default:
		line += bs.Message
	}
	return line
}

func (a *App) renderTransactions() string {
	title := titleStyle.Render("Transactions")
	out := title + "\n"
	if a.searchActive {
		out += fmt.Sprintf("Search: %s█\n", a.searchInput)
	} else if a.matcher != nil {
		out += fmt.Sprintf("Filter: %s  [esc] clear\n", a.searchInput)
	}
	dir := "desc"
	if a.sortAsc {
		dir = "asc"
	}
	out += fmt.Sprintf("Sort: %s %s\n", a.sortField, dir)

	rows := a.visible()
	if len(rows) == 0 {
		out += "(no transactions)\n"
	}
	cur := a.settings.BaseCurrency
	highlight := func(s string) string { return matchStyle.Render(s) }
	for i, t := range rows {
		marker := " "
		if i == a.txCursor {
			marker = "▶"
		}
		desc, cat := t.Description, t.Category
		if a.matcher != nil {
			desc = a.matcher.Highlight(desc, highlight)
			cat = a.matcher.Highlight(cat, highlight)
		}
		out += fmt.Sprintf("%s %s  %-40s  %10s  %s\n", marker, t.Date, desc, money.Format(t.Amount, cur), cat)
	}
	out += "[a] Add  [enter] Edit  [x] Delete  [/] Search  [s] Sort field  [o] Order  [d] Dashboard  [p] Settings  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderForm() string {
	heading := "Add Transaction"
	if a.form.editingID != nil {
		heading = fmt.Sprintf("Edit Transaction #%d", *a.form.editingID)
	}
	out := titleStyle.Render(heading) + "\n"
	keys := []string{"description", "amount", "date", "category"}
	for i, label := range formLabels {
		marker := " "
		if i == a.form.focus {
			marker = "▶"
		}
		value := a.form.fields[i]
		if i == fieldCategory && !a.freeform {
			value = fmt.Sprintf("◀ %s ▶", value)
		} else if i == a.form.focus {
			value += "█"
		}
		out += fmt.Sprintf("%s %-12s %s\n", marker, label+":", value)
		if msg, ok := a.form.errors[keys[i]]; ok {
			out += "    " + errStyle.Render(msg) + "\n"
		}
	}
	out += "[tab] Next field  [enter] Save  [esc] Cancel"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderSettings() string {
	title := titleStyle.Render("Settings")
	out := title + "\n"

	capText := "(not set)"
	if a.settings.BudgetCap != nil {
		capText = money.Format(*a.settings.BudgetCap, a.settings.BaseCurrency)
	}
	out += fmt.Sprintf("Budget cap: %s\n", capText)
	out += fmt.Sprintf("Base currency: %s\n", a.settings.BaseCurrency)

	out += "Exchange rates (per USD):\n"
	codes := make([]string, 0, len(a.settings.ExchangeRates))
	for c := range a.settings.ExchangeRates {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	for _, c := range codes {
		out += fmt.Sprintf("  %s  %s\n", c, a.settings.ExchangeRates[c].String())
	}

	switch a.settingsMode {
	case settingsModeBudget:
		out += fmt.Sprintf("\nBudget cap (empty to clear): %s█\n[enter] Save  [esc] Cancel", a.inputBuffer)
	case settingsModeRate:
		out += fmt.Sprintf("\nRate (CODE RATE): %s█\n[enter] Save  [esc] Cancel", a.inputBuffer)
	case settingsModeConvert:
		out += fmt.Sprintf("\nConvert (AMOUNT FROM TO): %s█\n[enter] Convert  [esc] Cancel", a.inputBuffer)
	case settingsModeImport:
		out += fmt.Sprintf("\nImport file path: %s█\n[enter] Import  [esc] Cancel", a.inputBuffer)
	default:
		out += "\n[b] Budget cap  [u] Cycle base currency  [r] Edit rate  [c] Convert  [w] Export  [i] Import\n"
		out += "[d] Dashboard  [t] Transactions  [q] Quit"
	}
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}
