// Package domain defines the archive mirror types and ports
package domain

import (
	"context"
	"time"
)

// Row is one compact analytics record derived from a synced message.
// The mirror keeps per-day message shape (length, attachment presence)
// without carrying content, so retention rules on the relational side
// never touch it
type Row struct {
	TenantID       int64
	ChannelID      int64
	MessageID      int64
	AuthorID       int64
	PostedDay      time.Time
	ContentLen     uint32
	HasAttachments bool
}

// StoragePort writes archive rows to the columnar store
type StoragePort interface {
	InsertRows(ctx context.Context, rows []Row) error
}
