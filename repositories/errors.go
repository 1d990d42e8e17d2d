package repositories

import "errors"

// ErrNotFound возвращается всеми реализациями хранилищ, когда документ отсутствует
var ErrNotFound = errors.New("record not found")
