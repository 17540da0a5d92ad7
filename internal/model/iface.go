package model

import "context"

// ItemSource returns the display names of records that are due tomorrow,
// not completed and not archived, for one category.
type ItemSource interface {
	DueTomorrow(ctx context.Context, category string) ([]string, error)
}

// ItemSourceFunc adapts a function to ItemSource.
type ItemSourceFunc func(ctx context.Context, category string) ([]string, error)

func (f ItemSourceFunc) DueTomorrow(ctx context.Context, category string) ([]string, error) {
	return f(ctx, category)
}
