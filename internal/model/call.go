package model

import "strings"

// CallColumns is the canonical width of a Calls row. An earlier draft of the
// sheet had 9 columns without Completed; those rows still parse, with
// Completed defaulting to false. All writes emit the full 10 columns.
const CallColumns = 10

// Call represents one row of the Calls table
type Call struct {
	ID           string `json:"id"`
	CompanyName  string `json:"company_name"`
	ContactName  string `json:"contact_name"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Notes        string `json:"notes"`
	Outcome      string `json:"outcome"`
	NextSteps    string `json:"next_steps"`
	FollowUpDate string `json:"follow_up_date"`
	Completed    bool   `json:"completed"`
}

// CallFromRow projects a raw row into a Call, padding short rows.
func CallFromRow(row []string) Call {
	row = pad(row, CallColumns)
	return Call{
		ID:           row[0],
		CompanyName:  row[1],
		ContactName:  row[2],
		Date:         row[3],
		Time:         row[4],
		Notes:        row[5],
		Outcome:      row[6],
		NextSteps:    row[7],
		FollowUpDate: row[8],
		Completed:    strings.EqualFold(row[9], "TRUE"),
	}
}

// Row encodes the call in the canonical 10-column layout.
func (c Call) Row() []string {
	return []string{
		c.ID,
		c.CompanyName,
		c.ContactName,
		c.Date,
		c.Time,
		c.Notes,
		c.Outcome,
		c.NextSteps,
		c.FollowUpDate,
		boolCell(c.Completed),
	}
}
