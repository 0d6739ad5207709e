// Package metrics estimates codespace usage and cost.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/luanzeba/gh-csm/internal/gh"
	"github.com/luanzeba/gh-csm/internal/terminal"
)

// StateAvailable is the state of a running codespace.
const StateAvailable = "Available"

// DefaultHourlyRate applies to machine types missing from HourlyRates.
const DefaultHourlyRate = 0.18

// HourlyRates are estimated USD prices per hour by machine type.
var HourlyRates = map[string]float64{
	"basicLinux32gb":    0.18,
	"standardLinux32gb": 0.36,
	"premiumLinux64gb":  0.72,
	"largeLinux128gb":   1.44,
}

// HourlyRate returns the estimated hourly price of machine.
func HourlyRate(machine string) float64 {
	if rate, ok := HourlyRates[machine]; ok {
		return rate
	}
	return DefaultHourlyRate
}

// Entry is the estimate for one codespace.
type Entry struct {
	Codespace  gh.Codespace
	HourlyRate float64
	// Uptime is zero unless the codespace is running.
	Uptime  time.Duration
	Accrued float64
}

// Running reports whether the codespace is available.
func (e Entry) Running() bool {
	return e.Codespace.State == StateAvailable
}

// Report aggregates the entries of every codespace.
type Report struct {
	Entries []Entry
	Running int
	// HourlyTotal sums the rates of running codespaces.
	HourlyTotal  float64
	AccruedTotal float64
}

// Build estimates costs for codespaces as of now.
func Build(codespaces []gh.Codespace, now time.Time) Report {
	var r Report
	for _, cs := range codespaces {
		e := Entry{Codespace: cs, HourlyRate: HourlyRate(cs.MachineName)}
		if e.Running() {
			e.Uptime = uptime(cs, now)
			e.Accrued = e.Uptime.Hours() * e.HourlyRate
			r.Running++
			r.HourlyTotal += e.HourlyRate
		}
		r.AccruedTotal += e.Accrued
		r.Entries = append(r.Entries, e)
	}
	return r
}

func uptime(cs gh.Codespace, now time.Time) time.Duration {
	since := cs.LastUsedAt
	if since.IsZero() {
		since = cs.CreatedAt
	}
	if since.IsZero() || since.After(now) {
		return 0
	}
	return now.Sub(since)
}

// Render writes the per-codespace table followed by the totals.
func (r Report) Render(w io.Writer) error {
	t := terminal.NewTable("NAME", "REPOSITORY", "STATE", "MACHINE", "$/HOUR", "UPTIME", "ACCRUED")
	for _, e := range r.Entries {
		up, accrued := "-", "-"
		if e.Running() {
			up = fmt.Sprintf("%.2fh", e.Uptime.Hours())
			accrued = fmt.Sprintf("$%.2f", e.Accrued)
		}
		t.AddRow(
			e.Codespace.Name,
			e.Codespace.Repository,
			e.Codespace.State,
			e.Codespace.MachineName,
			fmt.Sprintf("$%.2f", e.HourlyRate),
			up,
			accrued,
		)
	}
	if err := t.Render(w); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nTotal codespaces: %d (%d running)\nEstimated cost/hour: $%.2f\nEstimated accrued: $%.2f\n",
		len(r.Entries), r.Running, r.HourlyTotal, r.AccruedTotal)
	return err
}
