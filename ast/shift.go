package ast

import (
	"reflect"

	"github.com/josbeir/tree-sitter-latte/syntax"
)

var (
	spanType  = reflect.TypeOf(Span{})
	errorType = reflect.TypeOf((*syntax.Error)(nil))
)

// Shift returns a deep copy of n with every span, and every diagnostic it
// carries, moved by delta bytes. The original tree is left untouched so it
// can keep serving readers while a new tree is assembled from its parts.
func Shift[T Spanned](n T, delta int) T {
	if isNil(n) {
		return n
	}
	return shiftValue(reflect.ValueOf(n), delta).Interface().(T)
}

func shiftValue(v reflect.Value, delta int) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		if v.Type() == errorType {
			return reflect.ValueOf(v.Interface().(*syntax.Error).Shift(delta))
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(shiftValue(v.Elem(), delta))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(shiftValue(v.Elem(), delta))
		return out
	case reflect.Struct:
		if v.Type() == spanType {
			return reflect.ValueOf(v.Interface().(Span).Shift(delta))
		}
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			out.Field(i).Set(shiftValue(v.Field(i), delta))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(shiftValue(v.Index(i), delta))
		}
		return out
	default:
		return v
	}
}

func isNil(n any) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
