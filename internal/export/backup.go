package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/laundrydesk/laundrydesk/internal/catalog"
	"github.com/laundrydesk/laundrydesk/internal/customers"
	"github.com/laundrydesk/laundrydesk/internal/expenses"
	"github.com/laundrydesk/laundrydesk/internal/orders"
)

// BackupVersion is stamped into every snapshot's metadata.
const BackupVersion = "1.0.0"

// Snapshot is a full dump of every collection.
type Snapshot struct {
	Metadata Metadata     `json:"metadata"`
	Data     SnapshotData `json:"data"`
	Stats    Stats        `json:"stats"`
}

// Metadata identifies when and by what a snapshot was produced.
type Metadata struct {
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	Application string    `json:"application"`
}

// SnapshotData holds the collections themselves.
type SnapshotData struct {
	Customers []customers.Customer     `json:"customers"`
	Services  []catalog.LaundryService `json:"services"`
	Orders    []orders.Details         `json:"orders"`
	Payments  []orders.PaymentRecord   `json:"payments"`
	Expenses  []expenses.Expense       `json:"expenses"`
}

// Stats counts each collection.
type Stats struct {
	TotalCustomers int `json:"totalCustomers"`
	TotalServices  int `json:"totalServices"`
	TotalOrders    int `json:"totalOrders"`
	TotalPayments  int `json:"totalPayments"`
	TotalExpenses  int `json:"totalExpenses"`
}

// Snapshot loads every collection concurrently and assembles a backup.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	var data SnapshotData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Customers, err = s.customers.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		data.Services, err = s.services.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		data.Orders, err = s.orders.List(gctx, orders.ListFilter{})
		return err
	})
	g.Go(func() (err error) {
		data.Payments, err = s.orders.ListPayments(gctx, orders.PaymentFilter{})
		return err
	})
	g.Go(func() (err error) {
		data.Expenses, err = s.expenses.List(gctx, expenses.Filter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	return &Snapshot{
		Metadata: Metadata{
			Version:     BackupVersion,
			Timestamp:   s.now().UTC(),
			Application: s.application,
		},
		Data: data,
		Stats: Stats{
			TotalCustomers: len(data.Customers),
			TotalServices:  len(data.Services),
			TotalOrders:    len(data.Orders),
			TotalPayments:  len(data.Payments),
			TotalExpenses:  len(data.Expenses),
		},
	}, nil
}

// WriteBackup encodes the snapshot as indented JSON.
func WriteBackup(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// BackupFilename returns laundry-backup-YYYY-MM-DD.json.
func BackupFilename(now time.Time) string {
	return "laundry-backup-" + now.Format(time.DateOnly) + ".json"
}

// WriteBackupFile stores a fresh snapshot in dir and returns its path. The
// file is written under a temporary name and renamed once complete.
func (s *Service) WriteBackupFile(ctx context.Context, dir string) (string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	path := filepath.Join(dir, BackupFilename(snap.Metadata.Timestamp))
	tmp, err := os.CreateTemp(dir, ".backup-*.json")
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := WriteBackup(tmp, snap); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("store backup: %w", err)
	}
	return path, nil
}
