// Package testhelper provides cmp options shared across test packages.
package testhelper

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// EquateNilEmpty treats nil slices and empty slices as equal.
var EquateNilEmpty = cmp.FilterValues(func(x, y interface{}) bool {
	vx := reflect.ValueOf(x)
	vy := reflect.ValueOf(y)
	return (vx.Kind() == reflect.Slice || vx.Kind() == reflect.Array) &&
		(vy.Kind() == reflect.Slice || vy.Kind() == reflect.Array)
}, cmp.Comparer(func(x, y interface{}) bool {
	vx := reflect.ValueOf(x)
	vy := reflect.ValueOf(y)

	if vx.IsNil() && vy.IsNil() {
		return true
	}
	if vx.IsNil() {
		return vy.Len() == 0
	}
	if vy.IsNil() {
		return vx.Len() == 0
	}

	if vx.Len() != vy.Len() {
		return false
	}
	for i := 0; i < vx.Len(); i++ {
		if !cmp.Equal(vx.Index(i).Interface(), vy.Index(i).Interface()) {
			return false
		}
	}
	return true
}))
