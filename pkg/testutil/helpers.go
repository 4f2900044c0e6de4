// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/givewise/internal/rates"
)

// FindProvince finds a province by code in the provinces slice.
// Returns a pointer to the record if found, nil otherwise.
func FindProvince(provinces []rates.Province, code string) *rates.Province {
	for i := range provinces {
		if provinces[i].Code == code {
			return &provinces[i]
		}
	}
	return nil
}
