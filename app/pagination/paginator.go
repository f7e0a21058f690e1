// Package pagination splits a counted result set into fixed-size pages.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrPageNotAnInteger = errors.New("pagination: page number is not an integer")
	ErrEmptyPage        = errors.New("pagination: page contains no results")
)

// Paginator describes Count items split into pages of PerPage items.
type Paginator struct {
	Count   int
	PerPage int
}

// New creates a Paginator. A perPage below 1 is treated as 1.
func New(count, perPage int) *Paginator {
	if perPage < 1 {
		perPage = 1
	}
	if count < 0 {
		count = 0
	}
	return &Paginator{Count: count, PerPage: perPage}
}

// NumPages returns the number of pages. An empty result set still has one
// (empty) first page.
func (p *Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	return (p.Count + p.PerPage - 1) / p.PerPage
}

// ValidateNumber parses raw and checks it is within range.
func (p *Paginator) ValidateNumber(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) {
		// an integer, just not one any page can have
		return 0, ErrEmptyPage
	}
	if err != nil {
		return 0, ErrPageNotAnInteger
	}
	if n < 1 || n > p.NumPages() {
		return 0, ErrEmptyPage
	}
	return n, nil
}

// Page returns the page numbered raw.
func (p *Paginator) Page(raw string) (*Page, error) {
	n, err := p.ValidateNumber(raw)
	if err != nil {
		return nil, err
	}
	return p.page(n), nil
}

// Resolve is like Page but never fails: a missing or non-integer number
// yields the first page and an out-of-range number yields the last one.
func (p *Paginator) Resolve(raw string) *Page {
	page, err := p.Page(raw)
	switch {
	case errors.Is(err, ErrPageNotAnInteger):
		return p.page(1)
	case errors.Is(err, ErrEmptyPage):
		return p.page(p.NumPages())
	}
	return page
}

func (p *Paginator) page(n int) *Page {
	return &Page{Number: n, NumPages: p.NumPages(), Count: p.Count, PerPage: p.PerPage}
}

// Page is a single page of a Paginator.
type Page struct {
	Number   int `json:"number"`
	NumPages int `json:"num_pages"`
	Count    int `json:"count"`
	PerPage  int `json:"per_page"`
}

// Offset is the index of the first item on the page.
func (p *Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Limit is the page size.
func (p *Page) Limit() int {
	return p.PerPage
}

func (p *Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page) NextPageNumber() int {
	return p.Number + 1
}

func (p *Page) PreviousPageNumber() int {
	return p.Number - 1
}
