// Package model holds the school records shared by every component: students,
// attendance rows and fee payments, plus the closed enumerations they use.
package model

import (
	"math"
	"time"
)

// Student is a row of the students table.
type Student struct {
	ID         int64     `json:"id"`
	RollNumber string    `json:"roll_number"`
	Name       string    `json:"name"`
	Class      string    `json:"class"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
}

// StudentRef is the student identity embedded into joined attendance and fee rows.
type StudentRef struct {
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
	Class      string `json:"class,omitempty"`
}

// AttendanceRecord is a row of the attendance table. At most one exists per (StudentID, Date).
type AttendanceRecord struct {
	ID        int64            `json:"id"`
	StudentID int64            `json:"student_id"`
	Date      Date             `json:"date"`
	Status    AttendanceStatus `json:"status"`
	Student   *StudentRef      `json:"students,omitempty"`
}

// FeePayment is a row of the fee_payments table.
type FeePayment struct {
	ID          int64       `json:"id"`
	StudentID   int64       `json:"student_id"`
	Amount      float64     `json:"amount"`
	FeeType     FeeType     `json:"fee_type"`
	PaymentDate Date        `json:"payment_date"`
	DueDate     *Date       `json:"due_date"`
	Status      FeeStatus   `json:"status"`
	Student     *StudentRef `json:"students,omitempty"`
}

// Cents converts a currency amount to integer cents, rounding half away from zero.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts integer cents back to a currency amount.
func FromCents(c int64) float64 {
	return float64(c) / 100
}

// SumAmounts adds amounts in cents so that repeated two-decimal sums stay exact.
func SumAmounts(amounts ...float64) float64 {
	var total int64
	for _, a := range amounts {
		total += Cents(a)
	}
	return FromCents(total)
}
