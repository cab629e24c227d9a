// Package backlog holds the ordered backlog document and the only code that
// mutates it.
//
// A valid backlog has orders exactly {1..N} and unique positive issue
// numbers. [Apply] preserves that invariant and refuses to return a backlog
// that violates it; [Store] refuses to persist one.
package backlog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Item is one entry of the backlog.
type Item struct {
	Issue int    `json:"issue"`
	Order int    `json:"order"`
	Title string `json:"title"`
}

// Backlog is the persisted ordered list plus exporter bookkeeping.
type Backlog struct {
	Project   string `json:"project"`
	FieldID   string `json:"fieldId"`
	Generated string `json:"generated"`
	Items     []Item `json:"items"`
}

// Len returns the number of items.
func (b Backlog) Len() int {
	return len(b.Items)
}

// Find returns the item for issue and whether it exists.
func (b Backlog) Find(issue int) (Item, bool) {
	for _, it := range b.Items {
		if it.Issue == issue {
			return it, true
		}
	}

	return Item{}, false
}

// Clone returns a deep copy.
func (b Backlog) Clone() Backlog {
	out := b
	out.Items = slices.Clone(b.Items)

	if out.Items == nil {
		out.Items = []Item{}
	}

	return out
}

// Sorted returns a copy with items ordered by position.
func (b Backlog) Sorted() Backlog {
	out := b.Clone()
	slices.SortStableFunc(out.Items, func(x, y Item) int {
		return x.Order - y.Order
	})

	return out
}

// Validate reports every violation of the ordering invariant, joined into a
// single error. Each violation wraps [ErrInvariantViolation].
func (b Backlog) Validate() error {
	var errs []error

	n := len(b.Items)
	seenIssue := make(map[int]bool, n)
	seenOrder := make(map[int]bool, n)

	for _, it := range b.Items {
		if it.Issue <= 0 {
			errs = append(errs, fmt.Errorf("%w: issue number %d is not positive", ErrInvariantViolation, it.Issue))
		}

		if seenIssue[it.Issue] {
			errs = append(errs, fmt.Errorf("%w: issue #%d appears more than once", ErrInvariantViolation, it.Issue))
		}

		seenIssue[it.Issue] = true

		if it.Order < 1 || it.Order > n {
			errs = append(errs, fmt.Errorf("%w: issue #%d has order %d outside 1..%d", ErrInvariantViolation, it.Issue, it.Order, n))

			continue
		}

		if seenOrder[it.Order] {
			errs = append(errs, fmt.Errorf("%w: order %d is used more than once", ErrInvariantViolation, it.Order))
		}

		seenOrder[it.Order] = true
	}

	return errors.Join(errs...)
}

// String renders the backlog one item per line, in order.
func (b Backlog) String() string {
	var sb strings.Builder

	for _, it := range b.Sorted().Items {
		fmt.Fprintf(&sb, "%4d  #%-6d %s\n", it.Order, it.Issue, it.Title)
	}

	return sb.String()
}
