package registry

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dhbw-ka/leihschein/internal/form"
)

// Loan is one issued slip as recorded in the local registry.
type Loan struct {
	ID       string    `json:"id"`
	Borrower string    `json:"borrower"`
	Email    string    `json:"email"`
	Course   string    `json:"course"`
	Purpose  string    `json:"purpose"`
	Items    []string  `json:"items"`
	LoanDate time.Time `json:"loan_date"`
	DueDate  time.Time `json:"due_date"`
	SlipPath string    `json:"slip_path"`
	Returned bool      `json:"returned"`
}

// NewLoan records the values of one issued slip.
func NewLoan(v *form.Values, slipPath string) *Loan {
	return &Loan{
		ID:       uuid.NewString(),
		Borrower: v.Name,
		Email:    v.Email,
		Course:   v.Course,
		Purpose:  v.Purpose,
		Items:    v.ItemDescriptions(),
		LoanDate: v.LoanDate,
		DueDate:  v.ReturnDate,
		SlipPath: slipPath,
	}
}

// sortLoans orders outstanding loans before returned ones, earliest due
// date first within each group.
func sortLoans(loans []*Loan) {
	sort.SliceStable(loans, func(i, j int) bool {
		if loans[i].Returned != loans[j].Returned {
			return !loans[i].Returned
		}
		return loans[i].DueDate.Before(loans[j].DueDate)
	})
}
