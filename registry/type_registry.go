/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
)

// typeRegistry maps a Go type to the EntityType name stored alongside its items.
var (
	typeRegistry = make(map[reflect.Type]string)
	nameRegistry = make(map[string]reflect.Type)
)

// RegisterType registers the EntityType name for T.
// If the name is already taken by another type, it panics to prevent accidental overrides.
func RegisterType[T any](name string) {
	t := typeOf[T]()

	mu.Lock()
	defer mu.Unlock()
	if existing, exists := nameRegistry[name]; exists && existing != t {
		panic(fmt.Sprintf("type registry: type with name %q already registered", name))
	}
	typeRegistry[t] = name
	nameRegistry[name] = t
}

// TypeName returns the EntityType name registered for T.
func TypeName[T any]() (string, error) {
	t := typeOf[T]()

	mu.RLock()
	defer mu.RUnlock()
	name, ok := typeRegistry[t]
	if !ok {
		return "", fmt.Errorf("type registry: no name registered for type %v", t)
	}
	return name, nil
}

// Register records both the EntityType name and the index map of T.
func Register[T any](name string, idxMap map[string]string) {
	RegisterType[T](name)
	RegisterIndexMap[T](idxMap)
}
