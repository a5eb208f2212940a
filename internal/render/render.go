// Package render prints query results as a table, Markdown, CSV or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"

	"github.com/orbitlab/rocketminer/internal/model"
)

// Result is a ranked query result in both tabular and structured form.
type Result struct {
	Columns []string
	Rows    [][]string
	Records any // encoded as-is for JSON output
}

type rocketView struct {
	Rank         int    `json:"rank"`
	Name         string `json:"name"`
	Country      string `json:"country"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

type providerView struct {
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	YearFounded int    `json:"year_founded,omitempty"`
}

type launchView struct {
	Rank       int                 `json:"rank"`
	ID         string              `json:"id"`
	LaunchDate string              `json:"launch_date"`
	LaunchSite string              `json:"launch_site,omitempty"`
	Orbit      string              `json:"orbit"`
	Outcome    string              `json:"outcome,omitempty"`
	Price      decimal.NullDecimal `json:"price"`
	Rocket     string              `json:"rocket,omitempty"`
	Provider   string              `json:"provider,omitempty"`
}

type countryView struct {
	Rank    int    `json:"rank"`
	Country string `json:"country"`
}

// Rockets tabulates ranked rockets.
func Rockets(rs []*model.Rocket) *Result {
	res := &Result{Columns: []string{"#", "Rocket", "Country", "Manufacturer"}}
	views := make([]rocketView, 0, len(rs))
	for i, r := range rs {
		v := rocketView{Rank: i + 1, Name: r.Name, Country: r.Country}
		if r.Manufacturer != nil {
			v.Manufacturer = r.Manufacturer.Name
		}
		views = append(views, v)
		res.Rows = append(res.Rows, []string{strconv.Itoa(v.Rank), v.Name, v.Country, v.Manufacturer})
	}
	res.Records = views
	return res
}

// Providers tabulates ranked launch service providers.
func Providers(ps []*model.LaunchServiceProvider) *Result {
	res := &Result{Columns: []string{"#", "Provider", "Country", "Founded"}}
	views := make([]providerView, 0, len(ps))
	for i, p := range ps {
		v := providerView{Rank: i + 1, Name: p.Name, Country: p.Country, YearFounded: p.YearFounded}
		views = append(views, v)
		founded := ""
		if p.YearFounded != 0 {
			founded = strconv.Itoa(p.YearFounded)
		}
		res.Rows = append(res.Rows, []string{strconv.Itoa(v.Rank), v.Name, v.Country, founded})
	}
	res.Records = views
	return res
}

// Launches tabulates ranked launches.
func Launches(ls []*model.Launch) *Result {
	res := &Result{Columns: []string{"#", "Date", "Orbit", "Outcome", "Price", "Rocket", "Provider"}}
	views := make([]launchView, 0, len(ls))
	for i, l := range ls {
		v := launchView{
			Rank:       i + 1,
			ID:         l.ID,
			LaunchDate: l.LaunchDate.Format("2006-01-02"),
			LaunchSite: l.LaunchSite,
			Orbit:      l.Orbit,
			Outcome:    string(l.Outcome),
			Price:      l.Price,
		}
		if l.Vehicle != nil {
			v.Rocket = l.Vehicle.Name
		}
		if l.Provider != nil {
			v.Provider = l.Provider.Name
		}
		views = append(views, v)

		price := ""
		if l.Price.Valid {
			price = l.Price.Decimal.StringFixed(2)
		}
		res.Rows = append(res.Rows, []string{strconv.Itoa(v.Rank), v.LaunchDate, v.Orbit, v.Outcome, price, v.Rocket, v.Provider})
	}
	res.Records = views
	return res
}

// Countries tabulates ranked country names.
func Countries(cs []string) *Result {
	res := &Result{Columns: []string{"#", "Country"}}
	views := make([]countryView, 0, len(cs))
	for i, c := range cs {
		views = append(views, countryView{Rank: i + 1, Country: c})
		res.Rows = append(res.Rows, []string{strconv.Itoa(i + 1), c})
	}
	res.Records = views
	return res
}

// Country wraps a single answer, such as the dominant country of an orbit.
func Country(c string) *Result {
	return &Result{
		Columns: []string{"Country"},
		Rows:    [][]string{{c}},
		Records: map[string]string{"country": c},
	}
}

// Write renders res to w in format: table, markdown, csv or json.
func Write(w io.Writer, res *Result, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Records)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, r := range res.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		t.AppendRow(row)
	}

	switch format {
	case "csv":
		t.RenderCSV()
	case "md", "markdown":
		t.RenderMarkdown()
	case "table", "":
		if len(res.Rows) == 0 {
			_, _ = fmt.Fprintln(w, "(0 rows)")
			return nil
		}
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}
