package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	dailySheet   = "Daily"
	visitsSheet  = "Visits"
)

// WriteXLSX renders the report as a workbook with summary, daily and visit sheets.
func WriteXLSX(w io.Writer, rep RangeReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	for _, name := range []string{dailySheet, visitsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	s := rep.Summary
	summaryRows := [][]any{
		{"Start date", s.DateRange.Start},
		{"End date", s.DateRange.End},
		{"Days", s.DateRange.Days},
		{"Total km", s.TotalKm},
		{"Total visits", s.TotalVisits},
		{"Total duration (min)", s.TotalDuration},
		{"Working days", s.TotalWorkingDays},
		{"Average km per day", s.AverageKmPerDay},
		{"Average visits per day", s.AverageVisitsPerDay},
		{"Average duration per visit", s.AverageDurationPerVisit},
	}
	if err := writeRows(f, summarySheet, summaryRows); err != nil {
		return err
	}
	if err := f.SetColStyle(summarySheet, "A", bold); err != nil {
		return err
	}

	daily := [][]any{{"Date", "Start", "End", "Km", "Distance incomplete", "Visits", "Duration (min)", "Working hours"}}
	for _, d := range rep.DailyReports {
		row := []any{d.Date, clock(d.StartTime), clock(d.EndTime), d.KmTravelled, yesNo(d.DistanceIncomplete), d.VisitCount, d.TotalDuration, ""}
		if d.WorkingHours != nil {
			row[7] = *d.WorkingHours
		}
		daily = append(daily, row)
	}
	if err := writeRows(f, dailySheet, daily); err != nil {
		return err
	}

	visits := [][]any{{"Date", "Check-in", "Client", "Address", "Contact", "Phone", "Category", "Duration (min)", "Comment"}}
	for _, d := range rep.DailyReports {
		for _, v := range d.Visits {
			duration := any("")
			if v.Duration != nil {
				duration = *v.Duration
			}
			visits = append(visits, []any{d.Date, v.CheckInTime.Format("15:04"), v.CompanyName, v.Address, v.ContactPerson, v.ContactPhone, v.Category, duration, v.Comment})
		}
	}
	if err := writeRows(f, visitsSheet, visits); err != nil {
		return err
	}

	for _, sheet := range []string{dailySheet, visitsSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
