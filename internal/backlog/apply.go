package backlog

import (
	"fmt"

	"github.com/calvinalkan/prio/internal/scoring"
)

// Request describes one placement to apply to a backlog.
type Request struct {
	Issue  int
	Title  string
	Action scoring.Action

	// Order is the recommended 1-based position.
	Order int

	// Resequence shifts items at or after Order down by one to make room.
	// When false a new item is appended regardless of Order.
	Resequence bool

	// Existing moves an item already in the backlog instead of inserting a
	// new one.
	Existing bool
}

// Apply returns the backlog that results from req. The input is never
// modified; on error the returned backlog is the zero value.
//
// Skip returns a content-identical copy. Assign inserts a new item (shifting
// later items when Resequence is set, otherwise appending), or moves an
// existing one to min(Order, N). The result is validated before it is
// returned.
func Apply(b Backlog, req Request) (Backlog, error) {
	if req.Issue <= 0 {
		return Backlog{}, fmt.Errorf("%w: %d", ErrInvalidIssue, req.Issue)
	}

	switch req.Action {
	case scoring.ActionSkip:
		return b.Clone(), nil
	case scoring.ActionAssign:
	default:
		return Backlog{}, fmt.Errorf("%w: %q", ErrInvalidAction, req.Action)
	}

	if err := b.Validate(); err != nil {
		return Backlog{}, fmt.Errorf("input backlog: %w", err)
	}

	n := b.Len()
	if req.Order < 1 || req.Order > n+1 {
		return Backlog{}, fmt.Errorf("%w: %d not in 1..%d", ErrOrderOutOfRange, req.Order, n+1)
	}

	var (
		out Backlog
		err error
	)

	if req.Existing {
		out, err = move(b, req)
	} else {
		out, err = insert(b, req)
	}

	if err != nil {
		return Backlog{}, err
	}

	if err := out.Validate(); err != nil {
		return Backlog{}, fmt.Errorf("post-condition: %w", err)
	}

	return out, nil
}

func insert(b Backlog, req Request) (Backlog, error) {
	if _, ok := b.Find(req.Issue); ok {
		return Backlog{}, fmt.Errorf("%w: #%d", ErrDuplicateIssue, req.Issue)
	}

	out := b.Sorted()
	order := out.Len() + 1

	if req.Resequence {
		order = req.Order

		for i := range out.Items {
			if out.Items[i].Order >= order {
				out.Items[i].Order++
			}
		}
	}

	out.Items = append(out.Items, Item{Issue: req.Issue, Order: order, Title: req.Title})

	return out.Sorted(), nil
}

func move(b Backlog, req Request) (Backlog, error) {
	current, ok := b.Find(req.Issue)
	if !ok {
		return Backlog{}, fmt.Errorf("%w: #%d", ErrIssueNotFound, req.Issue)
	}

	out := b.Sorted()
	target := min(req.Order, out.Len())

	for i := range out.Items {
		it := &out.Items[i]

		if it.Issue == req.Issue {
			it.Order = target

			if req.Title != "" {
				it.Title = req.Title
			}

			continue
		}

		// Close the gap left at the old position, then open one at target.
		if it.Order > current.Order {
			it.Order--
		}

		if it.Order >= target {
			it.Order++
		}
	}

	return out.Sorted(), nil
}
