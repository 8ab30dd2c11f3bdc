package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// EncodeItems produces the items_json column for an order row.
//
// The encoding is canonical so identical carts always yield identical bytes:
//   - object keys in lexical order
//   - strings NFC normalized, with no HTML escaping and no \u escapes for
//     non-ASCII text (Thai menu names stay readable in the sheet)
//   - money as exact decimal numbers, never floats
func EncodeItems(items []LineItem) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, it := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeItem(&buf, it); err != nil {
			return "", fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return buf.String(), nil
}

// encodeItem writes one item object. Fields are listed in sorted key order.
func encodeItem(buf *bytes.Buffer, it LineItem) error {
	if it.Quantity < 0 {
		return fmt.Errorf("negative quantity %d", it.Quantity)
	}

	fields := []struct {
		key string
		str *string
		raw string
	}{
		{key: "image_url", str: &it.ImageURL},
		{key: "name", str: &it.Name},
		{key: "price", raw: it.Price.String()},
		{key: "product_id", str: &it.ProductID},
		{key: "quantity", raw: strconv.Itoa(it.Quantity)},
		{key: "subtotal", raw: it.Subtotal.String()},
	}

	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalCanonicalString(f.key)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if f.str != nil {
			val, err := marshalCanonicalString(*f.str)
			if err != nil {
				return fmt.Errorf("value for key %q: %w", f.key, err)
			}
			buf.Write(val)
			continue
		}
		buf.WriteString(f.raw)
	}
	buf.WriteByte('}')
	return nil
}

// DecodeItems parses an items_json column. An empty string is an empty list.
func DecodeItems(s string) ([]LineItem, error) {
	items := []LineItem{}
	if s == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}

// marshalCanonicalString encodes s as a JSON string after NFC normalization.
// Only quote, backslash and control characters are escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	result := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return unescapeLineSeparators(result), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json emits back into literal characters. Escape sequences are
// consumed pairwise, so an escaped backslash followed by "u2028" is kept.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if i+5 < len(data) && data[i+1] == 'u' && string(data[i+2:i+5]) == "202" {
			switch data[i+5] {
			case '8':
				out = append(out, "\u2028"...)
				i += 5
				continue
			case '9':
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}
