package model

import "strings"

// CompanyColumns is the fixed width of a Companies row. Column position is
// the encoding; rows shorter than this are padded with empty strings on read.
const CompanyColumns = 11

// Company represents one row of the Companies table
type Company struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Products    string `json:"products"`
	Notes       string `json:"notes"`
	State       string `json:"state"`
	Quality     string `json:"quality"`
	NoCall      bool   `json:"no_call"`
	CreatedAt   string `json:"created_at"`
}

// CompanyFromRow projects a raw row into a Company, tolerating missing
// trailing columns the way the legacy sheets did.
func CompanyFromRow(row []string) Company {
	row = pad(row, CompanyColumns)
	return Company{
		Name:        row[0],
		Location:    row[1],
		ContactName: row[2],
		Phone:       row[3],
		Email:       row[4],
		Products:    row[5],
		Notes:       row[6],
		State:       row[7],
		Quality:     row[8],
		NoCall:      strings.EqualFold(row[9], "TRUE"),
		CreatedAt:   row[10],
	}
}

// Row encodes the company in the fixed 11-column layout.
func (c Company) Row() []string {
	return []string{
		c.Name,
		c.Location,
		c.ContactName,
		c.Phone,
		c.Email,
		c.Products,
		c.Notes,
		c.State,
		c.Quality,
		boolCell(c.NoCall),
		c.CreatedAt,
	}
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

func boolCell(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
