package ports

import (
	"context"

	"github.com/brdocs/docket/internal/domain"
)

// BrowserDriver is the escape hatch for portals that render the sign-on
// form with script. An external automation harness implements it.
type BrowserDriver interface {
	Navigate(ctx context.Context, url string) error
	FillField(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	CurrentCookies(ctx context.Context) ([]domain.Cookie, error)
}
