// Package dto defines data transfer objects for the pairs HTTP API.
package dto

// PairItem is the public view of a trading pair.
type PairItem struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// PairGroup lists the pairs of one category.
type PairGroup struct {
	Category string     `json:"category"`
	Pairs    []PairItem `json:"pairs"`
}
