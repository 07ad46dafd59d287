/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package descriptor

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/suparena/auditstore/errors"
)

// Marker values recognized in the `auditstore` struct tag.
const (
	TagName         = "auditstore"
	MarkerKey       = "key"
	MarkerPartition = "partitionkey"
	MarkerRevision  = "revision"
	MarkerTimestamp = "timestamp"
)

// EntityDescriptor holds the resolved storage metadata for one record type.
// It is immutable after Resolve and cached for the process lifetime.
type EntityDescriptor struct {
	typ      reflect.Type
	TypeName string

	KeyField       string
	PartitionField string
	RevisionField  string
	TimestampField string

	keyIndex       []int
	partitionIndex []int
	revisionIndex  []int
	timestampIndex []int
}

var (
	cache   = make(map[reflect.Type]*EntityDescriptor)
	cacheMu sync.RWMutex
)

var timeType = reflect.TypeOf(time.Time{})

// For resolves the descriptor for type T.
func For[T any]() (*EntityDescriptor, error) {
	var zero T
	return Resolve(reflect.TypeOf(zero))
}

// Resolve builds (or returns the cached) descriptor for the given struct type.
// Exactly one field must carry the key marker; the partition, revision and
// timestamp markers are each optional but may appear at most once. A type
// with zero or multiple key fields fails here, so store construction fails
// fast instead of deferring the problem to the first CRUD call.
func Resolve(t reflect.Type) (*EntityDescriptor, error) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.NewValidationError("type", fmt.Sprintf("expected struct type, got %v", t))
	}

	cacheMu.RLock()
	if d, ok := cache[t]; ok {
		cacheMu.RUnlock()
		return d, nil
	}
	cacheMu.RUnlock()

	d, err := scan(t)
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if existing, ok := cache[t]; ok {
		return existing, nil
	}
	cache[t] = d
	return d, nil
}

func scan(t reflect.Type) (*EntityDescriptor, error) {
	d := &EntityDescriptor{typ: t, TypeName: t.Name()}

	keyCount := 0
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || f.PkgPath != "" {
			continue
		}
		marker, ok := f.Tag.Lookup(TagName)
		if !ok {
			continue
		}
		switch marker {
		case MarkerKey:
			keyCount++
			if keyCount > 1 {
				return nil, errors.NewDescriptorError(t.Name(), errors.ErrMultipleKeyFields)
			}
			if err := checkComparable(t.Name(), f); err != nil {
				return nil, err
			}
			d.KeyField = f.Name
			d.keyIndex = f.Index
		case MarkerPartition:
			if d.partitionIndex != nil {
				return nil, errors.NewValidationError(f.Name, "duplicate partitionkey marker")
			}
			if err := checkComparable(t.Name(), f); err != nil {
				return nil, err
			}
			d.PartitionField = f.Name
			d.partitionIndex = f.Index
		case MarkerRevision:
			if d.revisionIndex != nil {
				return nil, errors.NewValidationError(f.Name, "duplicate revision marker")
			}
			if err := checkInteger(t.Name(), f); err != nil {
				return nil, err
			}
			d.RevisionField = f.Name
			d.revisionIndex = f.Index
		case MarkerTimestamp:
			if d.timestampIndex != nil {
				return nil, errors.NewValidationError(f.Name, "duplicate timestamp marker")
			}
			if err := checkTimestamp(t.Name(), f); err != nil {
				return nil, err
			}
			d.TimestampField = f.Name
			d.timestampIndex = f.Index
		default:
			return nil, errors.NewValidationError(f.Name, fmt.Sprintf("unknown auditstore marker %q", marker))
		}
	}

	if keyCount == 0 {
		return nil, errors.NewDescriptorError(t.Name(), errors.ErrNoKeyField)
	}
	return d, nil
}

// checkComparable enforces the structurally comparable key kinds:
// string, integer, or a Stringer value type such as uuid.UUID.
func checkComparable(typeName string, f reflect.StructField) error {
	ft := f.Type
	if ft.Kind() == reflect.Ptr {
		ft = ft.Elem()
	}
	switch ft.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return nil
	}
	if ft.Implements(stringerType) || reflect.PtrTo(ft).Implements(stringerType) {
		return nil
	}
	return errors.NewValidationError(f.Name,
		fmt.Sprintf("key field on %s must be string, integer or Stringer, got %s", typeName, f.Type))
}

func checkInteger(typeName string, f reflect.StructField) error {
	switch f.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return nil
	}
	return errors.NewValidationError(f.Name,
		fmt.Sprintf("revision field on %s must be an integer type, got %s", typeName, f.Type))
}

func checkTimestamp(typeName string, f reflect.StructField) error {
	ft := f.Type
	if ft.Kind() == reflect.Ptr {
		ft = ft.Elem()
	}
	if ft == timeType || ft.ConvertibleTo(timeType) {
		return nil
	}
	return errors.NewValidationError(f.Name,
		fmt.Sprintf("timestamp field on %s must be time.Time-based, got %s", typeName, f.Type))
}

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

// HasPartitionKey reports whether the type declares a partition key field.
func (d *EntityDescriptor) HasPartitionKey() bool { return d.partitionIndex != nil }

// HasRevision reports whether the type declares a revision field.
func (d *EntityDescriptor) HasRevision() bool { return d.revisionIndex != nil }

// HasTimestamp reports whether the type declares a backend-stamped timestamp field.
func (d *EntityDescriptor) HasTimestamp() bool { return d.timestampIndex != nil }

// Key extracts the entity's key as a string.
func (d *EntityDescriptor) Key(entity any) (string, error) {
	v, err := d.fieldValue(entity, d.keyIndex)
	if err != nil {
		return "", err
	}
	return stringify(v, d.KeyField)
}

// PartitionKey extracts the entity's partition key, or "" when the type
// declares none.
func (d *EntityDescriptor) PartitionKey(entity any) (string, error) {
	if d.partitionIndex == nil {
		return "", nil
	}
	v, err := d.fieldValue(entity, d.partitionIndex)
	if err != nil {
		return "", err
	}
	return stringify(v, d.PartitionField)
}

// Revision reads the entity's revision counter; returns 0 when the type
// declares no revision field.
func (d *EntityDescriptor) Revision(entity any) (int64, error) {
	if d.revisionIndex == nil {
		return 0, nil
	}
	v, err := d.fieldValue(entity, d.revisionIndex)
	if err != nil {
		return 0, err
	}
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint()), nil
	default:
		return v.Int(), nil
	}
}

// SetRevision writes the entity's revision counter. Entity must be a pointer.
func (d *EntityDescriptor) SetRevision(entity any, revision int64) error {
	if d.revisionIndex == nil {
		return nil
	}
	v, err := d.settableField(entity, d.revisionIndex, d.RevisionField)
	if err != nil {
		return err
	}
	v.Set(reflect.ValueOf(revision).Convert(v.Type()))
	return nil
}

// Timestamp reads the backend-stamped timestamp, zero when absent.
func (d *EntityDescriptor) Timestamp(entity any) (time.Time, error) {
	if d.timestampIndex == nil {
		return time.Time{}, nil
	}
	v, err := d.fieldValue(entity, d.timestampIndex)
	if err != nil {
		return time.Time{}, err
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return time.Time{}, nil
		}
		v = v.Elem()
	}
	return v.Convert(timeType).Interface().(time.Time), nil
}

// StampTimestamp sets the timestamp field to the given instant. Backends call
// this on every write; callers never stamp it themselves. Entity must be a
// pointer.
func (d *EntityDescriptor) StampTimestamp(entity any, at time.Time) error {
	if d.timestampIndex == nil {
		return nil
	}
	v, err := d.settableField(entity, d.timestampIndex, d.TimestampField)
	if err != nil {
		return err
	}
	if v.Kind() == reflect.Ptr {
		nv := reflect.New(v.Type().Elem())
		nv.Elem().Set(reflect.ValueOf(at).Convert(v.Type().Elem()))
		v.Set(nv)
		return nil
	}
	v.Set(reflect.ValueOf(at).Convert(v.Type()))
	return nil
}

func (d *EntityDescriptor) fieldValue(entity any, index []int) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, errors.NewValidationError(d.TypeName, "nil entity")
		}
		v = v.Elem()
	}
	if v.Type() != d.typ {
		return reflect.Value{}, errors.NewValidationError(d.TypeName,
			fmt.Sprintf("entity type %s does not match descriptor type %s", v.Type(), d.typ))
	}
	return v.FieldByIndex(index), nil
}

func (d *EntityDescriptor) settableField(entity any, index []int, name string) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, errors.NewValidationError(name, "entity must be a non-nil pointer to set fields")
	}
	v = v.Elem()
	if v.Type() != d.typ {
		return reflect.Value{}, errors.NewValidationError(d.TypeName,
			fmt.Sprintf("entity type %s does not match descriptor type %s", v.Type(), d.typ))
	}
	return v.FieldByIndex(index), nil
}

func stringify(v reflect.Value, field string) (string, error) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "", nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint()), nil
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String(), nil
	}
	if v.CanAddr() {
		if s, ok := v.Addr().Interface().(fmt.Stringer); ok {
			return s.String(), nil
		}
	}
	return "", errors.NewValidationError(field, fmt.Sprintf("cannot convert %s to string key", v.Type()))
}
