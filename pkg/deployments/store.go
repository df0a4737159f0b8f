/*
Package deployments keeps a local registry of deployed contracts, so that
contracts can be referred to by name instead of address.
*/
package deployments

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/vne-network/priceoracle-go/pkg/io"
	"github.com/vne-network/priceoracle-go/pkg/util"
	"go.etcd.io/bbolt"
)

// Options configuration for the registry.
type Options struct {
	FilePath string `yaml:"FilePath"`
}

// Bucket represents bucket used in boltdb to store deployment records.
var Bucket = []byte("deployments")

// ErrNotFound is returned when there is no matching record.
var ErrNotFound = errors.New("deployment not found")

const openTimeout = time.Second

// Store is a bbolt-backed deployment registry. Records are keyed by
// genesis hash and address, so each chain has its own set.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the registry file.
func Open(cfg Options) (*Store, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("no deployments file path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), os.ModePerm); err != nil {
		return nil, fmt.Errorf("could not create dir for deployments: %w", err)
	}
	db, err := bbolt.Open(cfg.FilePath, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open deployments: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(Bucket)
		if err != nil {
			return fmt.Errorf("could not create root bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func key(genesis util.Uint256, addr util.Uint160) []byte {
	k := make([]byte, 0, util.Uint256Size+util.Uint160Size)
	k = append(k, genesis[:]...)
	return append(k, addr[:]...)
}

// Put saves the record replacing the previous one for the same address.
func (s *Store) Put(r *Record) error {
	val, err := io.ToBytes(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(Bucket).Put(key(r.Genesis, r.Address), val)
	})
}

// Get returns the record of the contract with the given address.
func (s *Store) Get(genesis util.Uint256, addr util.Uint160) (*Record, error) {
	var r *Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket(Bucket).Get(key(genesis, addr))
		if val == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, addr)
		}
		r = new(Record)
		return io.FromBytes(val, r)
	})
	return r, err
}

// List returns records of the chain sorted by deployment time.
func (s *Store) List(genesis util.Uint256) ([]*Record, error) {
	var res []*Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(Bucket).Cursor()
		prefix := genesis[:]
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			r := new(Record)
			if err := io.FromBytes(v, r); err != nil {
				return fmt.Errorf("record %x: %w", k, err)
			}
			res = append(res, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(res, func(a, b *Record) int { return a.Time.Compare(b.Time) })
	return res, nil
}

// Latest returns the most recent deployment of the named contract.
func (s *Store) Latest(genesis util.Uint256, contract string) (*Record, error) {
	list, err := s.List(genesis)
	if err != nil {
		return nil, err
	}
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Contract == contract {
			return list[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, contract)
}

// Delete removes the record.
func (s *Store) Delete(genesis util.Uint256, addr util.Uint160) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(Bucket)
		k := key(genesis, addr)
		if b.Get(k) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, addr)
		}
		return b.Delete(k)
	})
}

// Close releases all db resources.
func (s *Store) Close() error {
	return s.db.Close()
}
