// Package model contains the request and response shapes of a scoring
// invocation and the validator that turns raw payloads into typed requests.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/housescore/internal/domain/schema"
)

// DefaultGlobalParameters is used when a request omits GlobalParameters.
const DefaultGlobalParameters = 1.0

// Request is a validated scoring request.
type Request struct {
	// Rows holds the feature table, one row per prediction, in input order.
	Rows []schema.Row

	// GlobalParameters is accepted for contract compatibility. It is reserved
	// and does not influence scoring.
	GlobalParameters float64
}

// Response is the result of a scoring invocation.
type Response struct {
	Results []float64 `json:"Results"`
}

type envelope struct {
	Inputs           json.RawMessage `json:"Inputs"`
	GlobalParameters json.RawMessage `json:"GlobalParameters"`
}

type inputs struct {
	Data json.RawMessage `json:"data"`
}

// splitTable is the pandas "split" orientation: column names plus positional rows.
type splitTable struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// ParseRequest decodes and validates a raw invocation payload against s.
// It returns either a typed Request or an error; validation failures are
// reported as *ValidationError.
func ParseRequest(r io.Reader, s *schema.Schema) (Request, error) {
	var env envelope
	if err := newDecoder(r).Decode(&env); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}

	params, err := parseGlobalParameters(env.GlobalParameters)
	if err != nil {
		return Request{}, err
	}

	if isNull(env.Inputs) {
		return Request{}, requestError(ErrMissingField, "Inputs")
	}
	var in inputs
	if err := newDecoder(bytes.NewReader(env.Inputs)).Decode(&in); err != nil {
		return Request{}, requestError(fmt.Errorf("%w: %w", ErrMalformedRequest, err), "Inputs")
	}
	if isNull(in.Data) {
		return Request{}, requestError(ErrMissingField, "Inputs.data")
	}

	var rows []schema.Row
	switch trimmed := bytes.TrimSpace(in.Data); trimmed[0] {
	case '[':
		rows, err = parseRecords(trimmed, s)
	case '{':
		rows, err = parseSplit(trimmed, s)
	default:
		err = requestError(fmt.Errorf("%w: data must be an array of records or a split table", ErrMalformedRequest), "Inputs.data")
	}
	if err != nil {
		return Request{}, err
	}

	return Request{Rows: rows, GlobalParameters: params}, nil
}

func parseGlobalParameters(raw json.RawMessage) (float64, error) {
	if isNull(raw) {
		return DefaultGlobalParameters, nil
	}
	var num json.Number
	if err := newDecoder(bytes.NewReader(raw)).Decode(&num); err != nil {
		return 0, requestError(fmt.Errorf("%w: must be a number", ErrMalformedRequest), "GlobalParameters")
	}
	f, err := num.Float64()
	if err != nil {
		return 0, requestError(fmt.Errorf("%w: must be a number", ErrMalformedRequest), "GlobalParameters")
	}
	return f, nil
}

func parseRecords(data []byte, s *schema.Schema) ([]schema.Row, error) {
	var records []json.RawMessage
	if err := newDecoder(bytes.NewReader(data)).Decode(&records); err != nil {
		return nil, requestError(fmt.Errorf("%w: %w", ErrMalformedRequest, err), "Inputs.data")
	}

	rows := make([]schema.Row, 0, len(records))
	for i, raw := range records {
		var record map[string]any
		if err := newDecoder(bytes.NewReader(raw)).Decode(&record); err != nil || record == nil {
			return nil, &ValidationError{Row: i, Err: fmt.Errorf("%w: record must be an object", ErrMalformedRequest)}
		}
		values := s.Defaults()
		for name, cell := range record {
			col, ok := s.Index(name)
			if !ok {
				return nil, &ValidationError{Row: i, Column: name, Err: schema.ErrUnknownColumn}
			}
			v, err := s.Coerce(col, cell)
			if err != nil {
				return nil, &ValidationError{Row: i, Column: name, Err: err}
			}
			values[col] = v
		}
		rows = append(rows, schema.NewRow(values))
	}
	return rows, nil
}

func parseSplit(data []byte, s *schema.Schema) ([]schema.Row, error) {
	var table splitTable
	if err := newDecoder(bytes.NewReader(data)).Decode(&table); err != nil {
		return nil, requestError(fmt.Errorf("%w: %w", ErrMalformedRequest, err), "Inputs.data")
	}

	positions := make([]int, len(table.Columns))
	seen := make(map[string]struct{}, len(table.Columns))
	for j, name := range table.Columns {
		col, ok := s.Index(name)
		if !ok {
			return nil, requestError(schema.ErrUnknownColumn, name)
		}
		if _, dup := seen[name]; dup {
			return nil, requestError(schema.ErrDuplicateColumn, name)
		}
		seen[name] = struct{}{}
		positions[j] = col
	}

	rows := make([]schema.Row, 0, len(table.Data))
	for i, cells := range table.Data {
		if len(cells) != len(positions) {
			return nil, &ValidationError{Row: i, Err: fmt.Errorf("%w: row has %d values, expected %d", ErrMalformedRequest, len(cells), len(positions))}
		}
		values := s.Defaults()
		for j, cell := range cells {
			v, err := s.Coerce(positions[j], cell)
			if err != nil {
				return nil, &ValidationError{Row: i, Column: table.Columns[j], Err: err}
			}
			values[positions[j]] = v
		}
		rows = append(rows, schema.NewRow(values))
	}
	return rows, nil
}

func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func requestError(err error, field string) *ValidationError {
	return &ValidationError{Row: -1, Column: field, Err: err}
}
