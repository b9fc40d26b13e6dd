/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/suparena/nftregistry/errors"
)

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// Key is the primary key of a stored item.
type Key struct {
	PK string
	SK string
}

// ExpandMacros replaces every {Field} macro in the index map with the value of
// that exported field of entity. Unknown fields expand to the empty string.
func ExpandMacros(indexMap map[string]string, entity any) (map[string]string, error) {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, errors.NewValidationError("entity", "nil entity")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, errors.NewValidationError("entity", fmt.Sprintf("expected struct, got %s", v.Kind()))
	}

	res := make(map[string]string, len(indexMap))
	for fieldName, template := range indexMap {
		res[fieldName] = macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			// macro is something like "{ID}"
			f := v.FieldByName(strings.Trim(macro, "{}"))
			if !f.IsValid() || !f.CanInterface() {
				return ""
			}
			return fmt.Sprint(f.Interface())
		})
	}
	return res, nil
}

// ExpandStringKey replaces every macro pattern in the indexMap values with key.
func ExpandStringKey(indexMap map[string]string, key string) map[string]string {
	expanded := make(map[string]string, len(indexMap))
	for field, template := range indexMap {
		expanded[field] = macroPattern.ReplaceAllLiteralString(template, key)
	}
	return expanded
}

// KeyFromExpanded builds a Key from an expanded index map.
// It requires non-empty values for "PK" and "SK".
func KeyFromExpanded(expanded map[string]string) (Key, error) {
	pk, sk := expanded["PK"], expanded["SK"]
	if pk == "" || sk == "" {
		return Key{}, errors.NewValidationError("key", "expanded index map missing valid PK or SK")
	}
	return Key{PK: pk, SK: sk}, nil
}

// KeyFor returns the storage key of entity using the index map of T.
func KeyFor[T any](entity T) (Key, error) {
	indexMap, ok := GetIndexMap[T]()
	if !ok {
		return Key{}, fmt.Errorf("%w: %v", errors.ErrNoIndexMap, typeOf[T]())
	}
	expanded, err := ExpandMacros(indexMap, entity)
	if err != nil {
		return Key{}, err
	}
	return KeyFromExpanded(expanded)
}

// KeyForString returns the storage key addressed by a string key, the form used by GetOne and Delete.
func KeyForString[T any](key string) (Key, error) {
	indexMap, ok := GetIndexMap[T]()
	if !ok {
		return Key{}, fmt.Errorf("%w: %v", errors.ErrNoIndexMap, typeOf[T]())
	}
	return KeyFromExpanded(ExpandStringKey(indexMap, key))
}

// PartitionKey returns the PK value for a string key, for building queries.
func PartitionKey[T any](key string) (string, error) {
	k, err := KeyForString[T](key)
	if err != nil {
		return "", err
	}
	return k.PK, nil
}

// SortKeyPrefix returns the literal part of T's SK template before its first macro.
func SortKeyPrefix[T any]() string {
	indexMap, ok := GetIndexMap[T]()
	if !ok {
		return ""
	}
	sk := indexMap["SK"]
	if loc := macroPattern.FindStringIndex(sk); loc != nil {
		return sk[:loc[0]]
	}
	return sk
}
