package paper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/shopspring/decimal"

	"github.com/zappabad/tradedesk/internal/account"
	"github.com/zappabad/tradedesk/internal/execution"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

const (
	balancePrefix = "bal/"
	orderPrefix   = "ord/"
)

// LedgerOptions configures where the ledger keeps its data.
// An empty Path opens an in-memory ledger.
type LedgerOptions struct {
	Path string
}

// Ledger holds paper balances and executed orders in badger.
type Ledger struct {
	db *badger.DB
}

// OpenLedger opens (or creates) a ledger.
func OpenLedger(opts LedgerOptions) (*Ledger, error) {
	bopts := badger.DefaultOptions(opts.Path).WithLogger(nil)
	if strings.TrimSpace(opts.Path) == "" {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Seed sets the balance of asset unless it already has one.
func (l *Ledger) Seed(asset string, amount decimal.Decimal) error {
	return l.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(balanceKey(asset))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(balanceKey(asset), []byte(amount.String()))
	})
}

// Balance returns the balance of asset, zero if it was never set.
func (l *Ledger) Balance(asset string) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := l.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = getBalance(txn, asset)
		return err
	})
	return out, err
}

// Balances returns every asset balance in the ledger.
func (l *Ledger) Balances() (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(balancePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			asset := strings.TrimPrefix(string(item.Key()), balancePrefix)
			err := item.Value(func(val []byte) error {
				d, err := decimal.NewFromString(string(val))
				if err != nil {
					return err
				}
				out[asset] = d
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

// AccountBalances returns the ledger as fully available account balances.
func (l *Ledger) AccountBalances(ctx context.Context) ([]account.Balance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := l.Balances()
	if err != nil {
		return nil, err
	}
	out := make([]account.Balance, 0, len(m))
	for asset, total := range m {
		out = append(out, account.NewBalance(asset, total))
	}
	account.SortBalances(out)
	return out, nil
}

// Transfer atomically debits one asset, credits another and stores the order.
// It returns ErrInsufficientFunds without writing anything when debit exceeds the balance.
func (l *Ledger) Transfer(debitAsset string, debit decimal.Decimal, creditAsset string, credit decimal.Decimal, order execution.ExecutedOrder) error {
	return l.db.Update(func(txn *badger.Txn) error {
		from, err := getBalance(txn, debitAsset)
		if err != nil {
			return err
		}
		if debit.GreaterThan(from) {
			return ErrInsufficientFunds
		}
		if err := txn.Set(balanceKey(debitAsset), []byte(from.Sub(debit).String())); err != nil {
			return err
		}

		to, err := getBalance(txn, creditAsset)
		if err != nil {
			return err
		}
		if err := txn.Set(balanceKey(creditAsset), []byte(to.Add(credit).String())); err != nil {
			return err
		}
		return putOrder(txn, order)
	})
}

// RecordOrder stores an order without moving balances.
func (l *Ledger) RecordOrder(order execution.ExecutedOrder) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return putOrder(txn, order)
	})
}

// Orders returns up to n stored orders, newest first. n <= 0 returns all.
func (l *Ledger) Orders(n int) ([]execution.ExecutedOrder, error) {
	var out []execution.ExecutedOrder
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(orderPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var o execution.ExecutedOrder
				if err := json.Unmarshal(val, &o); err != nil {
					return err
				}
				out = append(out, o)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ExecutedAt.After(out[j].ExecutedAt) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func balanceKey(asset string) []byte { return []byte(balancePrefix + asset) }

func getBalance(txn *badger.Txn, asset string) (decimal.Decimal, error) {
	item, err := txn.Get(balanceKey(asset))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	var out decimal.Decimal
	err = item.Value(func(val []byte) error {
		d, perr := decimal.NewFromString(string(val))
		out = d
		return perr
	})
	return out, err
}

func putOrder(txn *badger.Txn, order execution.ExecutedOrder) error {
	b, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return txn.Set([]byte(orderPrefix+order.ID), b)
}
