package models

import "strconv"

// DefaultPageSize is the number of posts shown per feed page.
const DefaultPageSize = 10

// Page is one bounded slice of a feed plus navigation metadata.
type Page struct {
	Posts    []*Post
	Number   int
	NumPages int
	Total    int
	PerPage  int
}

// Window describes which rows of a feed a page covers.
type Window struct {
	Number   int
	NumPages int
	Offset   int
	Limit    int
}

// Paginate resolves a requested page number against a feed of total rows.
// There is always at least one page. A number below 1 or past the end lands on
// the last page.
func Paginate(total, perPage, requested int) Window {
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	numPages := (total + perPage - 1) / perPage
	if numPages < 1 {
		numPages = 1
	}
	number := requested
	if number < 1 || number > numPages {
		number = numPages
	}
	return Window{
		Number:   number,
		NumPages: numPages,
		Offset:   (number - 1) * perPage,
		Limit:    perPage,
	}
}

// ParsePageNumber reads a ?page= value. Anything that is not an integer means
// the first page.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

// NewPage builds a page from a window and the rows it selected.
func NewPage(posts []*Post, w Window, total int) *Page {
	if posts == nil {
		posts = []*Post{}
	}
	return &Page{
		Posts:    posts,
		Number:   w.Number,
		NumPages: w.NumPages,
		Total:    total,
		PerPage:  w.Limit,
	}
}

func (p *Page) Len() int { return len(p.Posts) }

func (p *Page) HasNext() bool { return p.Number < p.NumPages }

func (p *Page) HasPrevious() bool { return p.Number > 1 }

func (p *Page) HasOtherPages() bool { return p.HasNext() || p.HasPrevious() }

func (p *Page) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p *Page) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// PageRange lists every page number, for rendering the paginator.
func (p *Page) PageRange() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
