package extractor

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// object is a JSON object that remembers key order, so that the image search
// visits properties the way they appear in the document.
type object struct {
	keys   []string
	values []any
}

func (o *object) get(key string) (any, bool) {
	for i, k := range o.keys {
		if k == key {
			return o.values[i], true
		}
	}
	return nil, false
}

// decodeOrdered parses a JSON-LD block into *object, []any and scalar values.
func decodeOrdered(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := &object{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, errors.New("object key is not a string")
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.keys = append(obj.keys, key)
			obj.values = append(obj.values, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, errors.New("unexpected delimiter")
}

// findSchemaImage walks v depth-first and returns the first usable "image" value.
func findSchemaImage(v any) string {
	switch node := v.(type) {
	case *object:
		for i, key := range node.keys {
			if key == "image" {
				if ref := imageRef(node.values[i]); ref != "" {
					return ref
				}
				continue
			}
			if ref := findSchemaImage(node.values[i]); ref != "" {
				return ref
			}
		}
	case []any:
		for _, item := range node {
			if ref := findSchemaImage(item); ref != "" {
				return ref
			}
		}
	}
	return ""
}

// imageRef accepts "url", {"url": "url"} or a list whose first element is either.
func imageRef(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case *object:
		return objectURL(img)
	case []any:
		if len(img) == 0 {
			return ""
		}
		switch first := img[0].(type) {
		case string:
			return first
		case *object:
			return objectURL(first)
		}
	}
	return ""
}

func objectURL(o *object) string {
	u, ok := o.get("url")
	if !ok {
		return ""
	}
	s, _ := u.(string)
	return s
}
