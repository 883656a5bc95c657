package store

import (
	"context"
	"fmt"

	"github.com/resqdesk/resqdesk-api/schema"
)

//go:generate mockgen -destination=../mocks/archive.go -package=mocks github.com/resqdesk/resqdesk-api/store Archive

var ErrArchiveUnavailable = fmt.Errorf("dispatch archive is not configured")

// Closer - close the underlying connection
type Closer interface {
	Close() error
}

// Pinger - check the underlying connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// Archive keeps completed dispatches
type Archive interface {
	Closer
	Pinger
	Save(ctx context.Context, record schema.DispatchRecord) error
	List(ctx context.Context, count int64) ([]schema.DispatchRecord, error)
}

type nopArchive struct{}

// NewNopArchive returns an archive which keeps nothing. It is used when no
// redis connection is configured.
func NewNopArchive() Archive {
	return nopArchive{}
}

func (nopArchive) Close() error                   { return nil }
func (nopArchive) Ping(ctx context.Context) error { return nil }

func (nopArchive) Save(ctx context.Context, record schema.DispatchRecord) error {
	return nil
}

func (nopArchive) List(ctx context.Context, count int64) ([]schema.DispatchRecord, error) {
	return nil, ErrArchiveUnavailable
}
