// Package realtime turns table change notifications into refetch signals.
package realtime

import (
	"context"
	"strings"
)

// Op is the kind of row change reported by a source.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

const (
	TableProducts   = "products"
	TableSuppliers  = "suppliers"
	TableCategories = "categories"
)

// Change says a row in Table was inserted, updated or deleted. Consumers are
// not expected to look past the table name.
type Change struct {
	Table string `json:"table"`
	Op    Op     `json:"op"`
}

// Source delivers changes for the given tables until ctx is cancelled or the
// underlying channel fails, then closes the returned channel.
type Source interface {
	Listen(ctx context.Context, tables []string) (<-chan Change, error)
}

// Publisher accepts changes produced in-process.
type Publisher interface {
	Publish(c Change)
}

const channelSuffix = "_changes"

// ChannelName is the NOTIFY channel a table's trigger publishes on.
func ChannelName(table string) string {
	return table + channelSuffix
}

// TableFromChannel reverses ChannelName.
func TableFromChannel(channel string) string {
	return strings.TrimSuffix(channel, channelSuffix)
}
