package app

import (
	"context"

	"github.com/schooladmin/schooladmin/internal/students"
)

var demoStudents = []students.Input{
	{RollNumber: "001", Name: "Asha Rao", Class: "5A", Email: "asha@example.com"},
	{RollNumber: "002", Name: "Ben Okafor", Class: "5A"},
	{RollNumber: "003", Name: "Chidi Nwosu", Class: "5B", Phone: "+234 800 000 0003"},
	{RollNumber: "004", Name: "Dana Kim", Class: "6A", Email: "dana@example.com"},
	{RollNumber: "005", Name: "Eli Moreau", Class: "6B"},
}

// Seed adds a handful of demo students and returns how many were created.
func Seed(ctx context.Context, roster *students.Service) (int, error) {
	for i, in := range demoStudents {
		if _, err := roster.Create(ctx, in); err != nil {
			return i, err
		}
	}
	return len(demoStudents), nil
}
