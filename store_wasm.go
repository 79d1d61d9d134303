//go:build wasm

package authflow

import (
	"context"
	"syscall/js"
)

// LocalStorage is the browser's window.localStorage.
type LocalStorage struct {
	ls js.Value
}

func NewLocalStorage() *LocalStorage {
	return &LocalStorage{ls: js.Global().Get("localStorage")}
}

func (s *LocalStorage) Get(_ context.Context, key string) (string, bool, error) {
	v := s.ls.Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return "", false, nil
	}
	return v.String(), true, nil
}

func (s *LocalStorage) Set(_ context.Context, key, value string) error {
	s.ls.Call("setItem", key, value)
	return nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	s.ls.Call("removeItem", key)
	return nil
}
