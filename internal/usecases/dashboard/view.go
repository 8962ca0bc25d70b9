package dashboard

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/aggregating"
	"github.com/vfg2006/sales-dashboard-api/pkg/utils"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ViewState is the filter selection of one dashboard
type ViewState struct {
	Filter     aggregating.DateFilter `json:"filter"`
	CustomDate string                 `json:"date,omitempty"`
}

// PublicDefault shows every day
func PublicDefault() ViewState {
	return ViewState{Filter: aggregating.FilterAll}
}

// AdminDefault shows today
func AdminDefault() ViewState {
	return ViewState{Filter: aggregating.FilterToday}
}

// ParseViewState reads query values; an unknown filter keeps the fallback filter
func ParseViewState(filter, date string, fallback ViewState) ViewState {
	state := fallback
	if f, ok := aggregating.ParseDateFilter(strings.TrimSpace(filter)); ok {
		state.Filter = f
	}
	state.CustomDate = strings.TrimSpace(date)
	return state
}

type Section struct {
	Date           aggregating.DateKey `json:"date"`
	Label          string              `json:"label"`
	Sales          []domain.Sale       `json:"sales"`
	Total          decimal.Decimal     `json:"total"`
	FormattedTotal string              `json:"formatted_total"`
}

type View struct {
	State                  ViewState        `json:"state"`
	Sections               []Section        `json:"sections"`
	AllTotal               decimal.Decimal  `json:"all_total"`
	FormattedAllTotal      string           `json:"formatted_all_total"`
	SelectedLabel          string           `json:"selected_label,omitempty"`
	SelectedTotal          *decimal.Decimal `json:"selected_total,omitempty"`
	FormattedSelectedTotal string           `json:"formatted_selected_total,omitempty"`
	Products               []domain.Product `json:"products"`
	GeneratedAt            time.Time        `json:"generated_at"`
}

// Formatter prints amounts for display
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter builds a Formatter for a BCP 47 locale; an unknown locale falls back to English
func NewFormatter(locale, currencySymbol string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return Formatter{printer: message.NewPrinter(tag), symbol: currencySymbol}
}

// Money formats d with two decimals and the currency symbol. The digits come
// from the decimal itself; the printer only supplies grouping and separators.
func (f Formatter) Money(d decimal.Decimal) string {
	fixed := utils.RoundWithTwoDecimalPlace(d).StringFixed(2)
	if f.printer == nil {
		return f.symbol + fixed
	}

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, fraction, _ := strings.Cut(fixed, ".")

	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return f.symbol + sign + fixed
	}

	return f.symbol + sign + f.printer.Sprintf("%d", n) + f.decimalSeparator() + fraction
}

func (f Formatter) decimalSeparator() string {
	sample := f.printer.Sprintf("%.1f", 1.5)
	return strings.TrimSuffix(strings.TrimPrefix(sample, "1"), "5")
}

// Render derives everything a dashboard shows from the two snapshots
func Render(
	cal aggregating.Calendar,
	formatter Formatter,
	state ViewState,
	products map[string]domain.Product,
	sales map[string]domain.Sale,
	now time.Time,
) View {
	ordered := aggregating.SortNewestFirst(salesList(sales))
	buckets := aggregating.SelectByDateFilter(cal, ordered, state.Filter, state.CustomDate, now)
	today, yesterday, dayBefore := cal.ReferenceKeys(now)

	sections := make([]Section, 0, len(buckets))
	for _, bucket := range buckets {
		total := aggregating.SumTotals(bucket.Sales)
		sections = append(sections, Section{
			Date:           bucket.Key,
			Label:          aggregating.LabelForDate(bucket.Key, today, yesterday, dayBefore),
			Sales:          bucket.Sales,
			Total:          total,
			FormattedTotal: formatter.Money(total),
		})
	}

	allTotal := aggregating.SumTotals(ordered)
	view := View{
		State:             state,
		Sections:          sections,
		AllTotal:          allTotal,
		FormattedAllTotal: formatter.Money(allTotal),
		Products:          productList(products),
		GeneratedAt:       now,
	}

	if target, ok := aggregating.TargetDate(cal, state.Filter, state.CustomDate, now); ok {
		selected, _ := aggregating.SelectedTotal(cal, ordered, state.Filter, state.CustomDate, now)
		view.SelectedLabel = aggregating.LabelForDate(target, today, yesterday, dayBefore)
		view.SelectedTotal = &selected
		view.FormattedSelectedTotal = formatter.Money(selected)
	}

	return view
}

// salesList flattens a snapshot in key order so ties on timestamp stay deterministic
func salesList(sales map[string]domain.Sale) []domain.Sale {
	keys := make([]string, 0, len(sales))
	for key := range sales {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	list := make([]domain.Sale, 0, len(keys))
	for _, key := range keys {
		sale := sales[key]
		sale.ID = key
		list = append(list, sale)
	}
	return list
}

func productList(products map[string]domain.Product) []domain.Product {
	list := make([]domain.Product, 0, len(products))
	for key, product := range products {
		product.ID = key
		list = append(list, product)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})

	return list
}
