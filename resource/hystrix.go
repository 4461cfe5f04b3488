package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/afex/hystrix-go/hystrix"
	"github.com/rs/rest-layer-orm/schema"
)

type hystrixStorer struct {
	findCmd   string
	countCmd  string
	insertCmd string
	updateCmd string
	deleteCmd string
	beginCmd  string
	storage   Storer
}

// NewHystrixStorer wraps s so its operations run as hystrix commands named
// after name (i.e.: <name>.Find). Commands must be configured using
// hystrix.ConfigureCommand. Operations issued through a transaction returned
// by Begin are not wrapped.
func NewHystrixStorer(name string, s Storer) Storer {
	return hystrixStorer{
		findCmd:   fmt.Sprintf("%s.Find", name),
		countCmd:  fmt.Sprintf("%s.Count", name),
		insertCmd: fmt.Sprintf("%s.Insert", name),
		updateCmd: fmt.Sprintf("%s.Update", name),
		deleteCmd: fmt.Sprintf("%s.Delete", name),
		beginCmd:  fmt.Sprintf("%s.Begin", name),
		storage:   s,
	}
}

func (h hystrixStorer) Find(ctx context.Context, m *schema.Model, q *Query) (records []*Record, err error) {
	out := make(chan []*Record, 1)
	errs := hystrix.Go(h.findCmd, func() error {
		records, err := h.storage.Find(ctx, m, q)
		if err == nil {
			out <- records
		}
		return err
	}, nil)
	select {
	case records = <-out:
	case err = <-errs:
	}
	return
}

func (h hystrixStorer) Count(ctx context.Context, m *schema.Model, q *Query) (total int, err error) {
	out := make(chan int, 1)
	errs := hystrix.Go(h.countCmd, func() error {
		total, err := h.storage.Count(ctx, m, q)
		if err == nil {
			out <- total
		}
		return err
	}, nil)
	select {
	case total = <-out:
	case err = <-errs:
	}
	return
}

func (h hystrixStorer) Insert(ctx context.Context, r *Record) error {
	return hystrix.Do(h.insertCmd, func() error {
		return h.storage.Insert(ctx, r)
	}, nil)
}

func (h hystrixStorer) Update(ctx context.Context, m *schema.Model, q *Query, values map[string]interface{}) (updated int, err error) {
	out := make(chan int, 1)
	errs := hystrix.Go(h.updateCmd, func() error {
		updated, err := h.storage.Update(ctx, m, q, values)
		if err == nil {
			out <- updated
		}
		return err
	}, nil)
	select {
	case updated = <-out:
	case err = <-errs:
	}
	return
}

func (h hystrixStorer) Delete(ctx context.Context, m *schema.Model, q *Query) (deleted int, err error) {
	out := make(chan int, 1)
	errs := hystrix.Go(h.deleteCmd, func() error {
		deleted, err := h.storage.Delete(ctx, m, q)
		if err == nil {
			out <- deleted
		}
		return err
	}, nil)
	select {
	case deleted = <-out:
	case err = <-errs:
	}
	return
}

// Begin opens a transaction through the beginCmd command. When the command
// fails or times out while the wrapped Begin is still running, the
// transaction it eventually opens is rolled back.
func (h hystrixStorer) Begin(ctx context.Context) (tx Tx, err error) {
	var mu sync.Mutex
	abandoned := false
	out := make(chan Tx, 1)
	errs := hystrix.Go(h.beginCmd, func() error {
		tx, err := h.storage.Begin(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		if abandoned {
			return tx.Rollback()
		}
		out <- tx
		return nil
	}, nil)
	select {
	case tx = <-out:
	case err = <-errs:
		mu.Lock()
		abandoned = true
		select {
		case late := <-out:
			late.Rollback()
		default:
		}
		mu.Unlock()
	}
	return
}
