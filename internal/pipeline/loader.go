package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadUsers reads the user record collection. national_id is pinned to text
// so identifiers like "0012345" never go through a numeric type.
func LoadUsers(path string) (*Frame, error) {
	f, err := loadRecords(path, "national_id")
	if err != nil {
		return nil, fmt.Errorf("LoadUsers: %w", err)
	}
	return f, nil
}

// LoadTransactions reads the transaction record collection.
func LoadTransactions(path string) (*Frame, error) {
	f, err := loadRecords(path)
	if err != nil {
		return nil, fmt.Errorf("LoadTransactions: %w", err)
	}
	return f, nil
}

// loadRecords decodes a JSON array of objects into a Frame. The decode is
// token-driven so that object key order survives into the column order,
// and numbers stay json.Number (no float coercion of identifiers).
// Columns listed in textColumns are stringified on load.
func loadRecords(path string, textColumns ...string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	dec := json.NewDecoder(file)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("decode %s: expected record array, got %v", path, tok)
	}

	frame := &Frame{}
	seen := make(map[string]bool)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode %s: record %d: %w", path, len(frame.Rows), err)
		}
		obj, err := decodeValue(dec, tok)
		if err != nil {
			return nil, fmt.Errorf("decode %s: record %d: %w", path, len(frame.Rows), err)
		}
		rec, ok := obj.(*Nested)
		if !ok {
			return nil, fmt.Errorf("decode %s: record %d: got %T, want object", path, len(frame.Rows), obj)
		}

		row := make(Row, len(rec.Keys))
		for _, key := range rec.Keys {
			if !seen[key] {
				seen[key] = true
				frame.Columns = append(frame.Columns, key)
			}
			row[key] = rec.Fields[key]
		}
		for _, col := range textColumns {
			if v, ok := row[col]; ok && v != nil {
				row[col] = ValueString(v)
			}
		}
		frame.Rows = append(frame.Rows, row)
	}

	// consume the closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return frame, nil
}

// decodeValue turns the token tok (already read from dec) into a cell value,
// consuming the rest of a compound value from the stream.
func decodeValue(dec *json.Decoder, tok json.Token) (interface{}, error) {
	delim, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool or nil
		return tok, nil
	}

	switch delim {
	case '{':
		n := &Nested{Fields: make(map[string]interface{})}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T, want string", keyTok)
			}
			valTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			val, err := decodeValue(dec, valTok)
			if err != nil {
				return nil, err
			}
			if _, dup := n.Fields[key]; !dup {
				n.Keys = append(n.Keys, key)
			}
			n.Fields[key] = val
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return n, nil
	case '[':
		var arr []interface{}
		for dec.More() {
			valTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			val, err := decodeValue(dec, valTok)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}
