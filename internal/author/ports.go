package author

import (
	"context"
)

// Repository stores author records keyed by name.
type Repository interface {
	GetByName(ctx context.Context, name string) (Author, error)
	Create(ctx context.Context, a *Author) error
	Update(ctx context.Context, a *Author) error
}

// LookupCache remembers knowledge lookups by queried name. A hit with a nil
// profile records that the lookup found nobody.
type LookupCache interface {
	Get(ctx context.Context, name string) (p *Profile, hit bool, err error)
	Set(ctx context.Context, name string, p *Profile) error
}
