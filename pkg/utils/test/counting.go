package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/bridge/pkg/storage"
)

// CountingDriver wraps a storage.Driver and counts calls. BeforeWrite, when
// set, runs ahead of every Write and can be used to simulate a concurrent
// writer in another process.
type CountingDriver struct {
	storage.Driver

	mu     sync.Mutex
	reads  int
	writes int

	BeforeWrite func(ctx context.Context, records ...*storage.Record)
}

// NewCountingDriver wraps d.
func NewCountingDriver(d storage.Driver) *CountingDriver {
	return &CountingDriver{Driver: d}
}

// Read implements storage.Driver.
func (c *CountingDriver) Read(ctx context.Context, keys ...string) (map[string]*storage.Record, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.Driver.Read(ctx, keys...)
}

// Write implements storage.Driver.
func (c *CountingDriver) Write(ctx context.Context, records ...*storage.Record) error {
	c.mu.Lock()
	c.writes++
	hook := c.BeforeWrite
	c.mu.Unlock()

	if hook != nil {
		hook(ctx, records...)
	}
	return c.Driver.Write(ctx, records...)
}

// Reads returns the number of Read calls.
func (c *CountingDriver) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Writes returns the number of Write calls.
func (c *CountingDriver) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}
