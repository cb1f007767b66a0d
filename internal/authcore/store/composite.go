package store

import "context"

// WithSessions returns a Store identical to base except that session
// operations are served by the given Sessions implementation. It is how
// the redis session driver is layered over the sqlite user store.
//
// Session writes through the override are not part of any sql
// transaction; callers needing user+session atomicity must use the
// default driver.
func WithSessions(base Store, sessions Sessions) Store {
	return &sessionOverlay{Store: base, sessions: sessions}
}

type sessionOverlay struct {
	Store
	sessions Sessions
}

func (o *sessionOverlay) Sessions() Sessions { return o.sessions }

func (o *sessionOverlay) Tx(ctx context.Context) (Tx, error) {
	tx, err := o.Store.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &sessionOverlayTx{storeTx: tx, sessions: o.sessions}, nil
}

func (o *sessionOverlay) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return o.Store.WithTx(ctx, func(tx Tx) error {
		return fn(&sessionOverlayTx{storeTx: tx, sessions: o.sessions})
	})
}

// storeTx aliases Tx so it can be embedded without the field name
// shadowing the interface's Tx method.
type storeTx = Tx

type sessionOverlayTx struct {
	storeTx
	sessions Sessions
}

func (t *sessionOverlayTx) Sessions() Sessions { return t.sessions }
