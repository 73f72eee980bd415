package nbt

import (
	"fmt"
	"reflect"
)

// Marshal converts v, a struct (or pointer to struct), into a TagCompound.
// Field names default to the Go field name; an `nbt:"name"` tag overrides
// it. Pointer fields are optional: a nil pointer is omitted from the
// compound entirely rather than encoded as an absent marker.
func Marshal(v any) (*TagCompound, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return NewTagCompound(), nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("nbt: Marshal requires a struct, got %s", rv.Kind())
	}
	return marshalStruct(rv)
}

func marshalStruct(rv reflect.Value) (*TagCompound, error) {
	c := NewTagCompound()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := fieldName(field)
		fv := rv.Field(i)
		if fv.Kind() == reflect.Pointer && fv.IsNil() {
			continue
		}
		tag, err := marshalValue(fv)
		if err != nil {
			return nil, fmt.Errorf("nbt: field %s: %w", field.Name, err)
		}
		c.Set(name, tag)
	}
	return c, nil
}

func marshalValue(fv reflect.Value) (Tag, error) {
	if fv.Kind() == reflect.Pointer {
		fv = fv.Elem()
	}
	switch fv.Kind() {
	case reflect.Int8:
		return &TagByte{Value: int8(fv.Int())}, nil
	case reflect.Bool:
		v := int8(0)
		if fv.Bool() {
			v = 1
		}
		return &TagByte{Value: v}, nil
	case reflect.Int16:
		return &TagShort{Value: int16(fv.Int())}, nil
	case reflect.Int32, reflect.Int:
		return &TagInt{Value: int32(fv.Int())}, nil
	case reflect.Int64:
		return &TagLong{Value: fv.Int()}, nil
	case reflect.Float32:
		return &TagFloat{Value: float32(fv.Float())}, nil
	case reflect.Float64:
		return &TagDouble{Value: fv.Float()}, nil
	case reflect.String:
		return &TagString{Value: fv.String()}, nil
	case reflect.Struct:
		return marshalStruct(fv)
	case reflect.Slice:
		return marshalSlice(fv)
	default:
		return nil, fmt.Errorf("unsupported kind %s", fv.Kind())
	}
}

func marshalSlice(fv reflect.Value) (Tag, error) {
	switch fv.Type().Elem().Kind() {
	case reflect.Int8:
		out := make([]int8, fv.Len())
		for i := range out {
			out[i] = int8(fv.Index(i).Int())
		}
		return &TagByteArray{Value: out}, nil
	case reflect.Int32:
		out := make([]int32, fv.Len())
		for i := range out {
			out[i] = int32(fv.Index(i).Int())
		}
		return &TagIntArray{Value: out}, nil
	case reflect.Int64:
		out := make([]int64, fv.Len())
		for i := range out {
			out[i] = fv.Index(i).Int()
		}
		return &TagLongArray{Value: out}, nil
	default:
		list := &TagList{}
		for i := 0; i < fv.Len(); i++ {
			tag, err := marshalValue(fv.Index(i))
			if err != nil {
				return nil, err
			}
			if err := list.Add(tag); err != nil {
				return nil, err
			}
		}
		return list, nil
	}
}

// Unmarshal populates v (a pointer to struct) from c. Non-pointer struct
// fields missing from c fail with ErrMissingField; pointer fields are left
// nil.
func Unmarshal(c *TagCompound, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("nbt: Unmarshal requires a pointer to struct")
	}
	return unmarshalStruct(c, rv.Elem())
}

func unmarshalStruct(c *TagCompound, rv reflect.Value) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := fieldName(field)
		tag, ok := c.Get(name)
		isPointer := field.Type.Kind() == reflect.Pointer
		if !ok {
			if isPointer {
				continue
			}
			return ErrMissingField{Field: name}
		}
		fv := rv.Field(i)
		if isPointer {
			newVal := reflect.New(field.Type.Elem())
			if err := unmarshalValue(tag, newVal.Elem()); err != nil {
				return err
			}
			fv.Set(newVal)
			continue
		}
		if err := unmarshalValue(tag, fv); err != nil {
			return err
		}
	}
	return nil
}

func unmarshalValue(tag Tag, fv reflect.Value) error {
	switch fv.Kind() {
	case reflect.Int8:
		t, ok := tag.(*TagByte)
		if !ok {
			return MismatchedTagError{Want: TagByteID, Got: tag.TypeID()}
		}
		fv.SetInt(int64(t.Value))
	case reflect.Bool:
		t, ok := tag.(*TagByte)
		if !ok {
			return MismatchedTagError{Want: TagByteID, Got: tag.TypeID()}
		}
		fv.SetBool(t.Value != 0)
	case reflect.Int16:
		t, ok := tag.(*TagShort)
		if !ok {
			return MismatchedTagError{Want: TagShortID, Got: tag.TypeID()}
		}
		fv.SetInt(int64(t.Value))
	case reflect.Int32, reflect.Int:
		t, ok := tag.(*TagInt)
		if !ok {
			return MismatchedTagError{Want: TagIntID, Got: tag.TypeID()}
		}
		fv.SetInt(int64(t.Value))
	case reflect.Int64:
		t, ok := tag.(*TagLong)
		if !ok {
			return MismatchedTagError{Want: TagLongID, Got: tag.TypeID()}
		}
		fv.SetInt(t.Value)
	case reflect.Float32:
		t, ok := tag.(*TagFloat)
		if !ok {
			return MismatchedTagError{Want: TagFloatID, Got: tag.TypeID()}
		}
		fv.SetFloat(float64(t.Value))
	case reflect.Float64:
		t, ok := tag.(*TagDouble)
		if !ok {
			return MismatchedTagError{Want: TagDoubleID, Got: tag.TypeID()}
		}
		fv.SetFloat(t.Value)
	case reflect.String:
		t, ok := tag.(*TagString)
		if !ok {
			return MismatchedTagError{Want: TagStringID, Got: tag.TypeID()}
		}
		fv.SetString(t.Value)
	case reflect.Struct:
		t, ok := tag.(*TagCompound)
		if !ok {
			return MismatchedTagError{Want: TagCompoundID, Got: tag.TypeID()}
		}
		return unmarshalStruct(t, fv)
	default:
		return fmt.Errorf("nbt: unsupported field kind %s", fv.Kind())
	}
	return nil
}

// MismatchedTagError reports a type mismatch between a compound field and
// the destination struct field during Unmarshal.
type MismatchedTagError struct {
	Want byte
	Got  byte
}

func (e MismatchedTagError) Error() string {
	return fmt.Sprintf("nbt: expected tag type %d, got %d", e.Want, e.Got)
}

func fieldName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("nbt"); ok && tag != "" {
		return tag
	}
	return field.Name
}
