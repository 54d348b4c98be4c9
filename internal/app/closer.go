package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

// Closer закрывает ресурсы в обратном порядке регистрации
type Closer struct {
	mu    sync.Mutex
	funcs []closeFunc
}

type closeFunc struct {
	name string
	fn   func(ctx context.Context) error
}

// Add регистрирует функцию закрытия ресурса
func (c *Closer) Add(name string, fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcs = append(c.funcs, closeFunc{name: name, fn: fn})
}

// AddFunc регистрирует Close без контекста
func (c *Closer) AddFunc(name string, fn func() error) {
	c.Add(name, func(context.Context) error { return fn() })
}

// Close вызывает все функции и собирает ошибки
func (c *Closer) Close(ctx context.Context) error {
	c.mu.Lock()
	funcs := c.funcs
	c.funcs = nil
	c.mu.Unlock()

	var err error
	for i := len(funcs) - 1; i >= 0; i-- {
		if cerr := funcs[i].fn(ctx); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close %s: %w", funcs[i].name, cerr))
		}
	}
	return err
}
