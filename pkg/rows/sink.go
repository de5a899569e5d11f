package rows

import (
	"reflect"

	"github.com/nativepg/pgclient/pgerr"
	"github.com/nativepg/pgclient/pkg/message"
	"github.com/nativepg/pgclient/pkg/response"
	"github.com/nativepg/pgclient/pkg/types"
)

// sinkState tracks the row-sink handler's progress through one result set:
// parsingMeta until the RowDescription (or NoData) arrives, parsingData
// while rows stream, done after the terminating message.
type sinkState int

const (
	parsingMeta sinkState = iota
	parsingData
	done
)

// Sink is a [response.Handler] that decodes each DataRow it observes into
// a value of type T and appends it to the caller's destination slice.
type Sink[T any] struct {
	dest      *[]T
	mapper    *Mapper
	positions []Position
	binary    bool
	state     sinkState
	appended  int
	err       error
}

// Into constructs a row-sink handler that appends decoded rows to dest. T's
// exported fields (optionally tagged `db:"column_name"`) are matched by name
// against the server's RowDescription.
func Into[T any](dest *[]T) (*Sink[T], error) {
	var sample T
	mapper, err := NewMapper(sample)
	if err != nil {
		return nil, err
	}
	return &Sink[T]{dest: dest, mapper: mapper}, nil
}

// Err reports the first error observed while decoding this sink's rows, or
// nil.
func (s *Sink[T]) Err() error {
	return s.err
}

// RowCount reports how many rows this sink has appended to its destination.
func (s *Sink[T]) RowCount() int {
	return s.appended
}

func (s *Sink[T]) recordErr(err error) {
	if s.err == nil {
		s.err = err
	}
}

// OnMessage implements [response.Handler].
func (s *Sink[T]) OnMessage(tag byte, body []byte) (response.HandlerResult, error) {
	switch types.BackendMessage(tag) {
	case types.BackendRowDescription:
		if s.state != parsingMeta {
			return response.Done, s.wrongState("RowDescription")
		}
		rd, err := message.ParseRowDescription(body)
		if err != nil {
			s.recordErr(err)
			s.state = parsingData
			return response.NeedsMore, err
		}
		s.binary = rowIsBinary(rd)
		positions, perr := s.mapper.BuildPositions(rd)
		s.positions = positions
		if perr != nil {
			s.recordErr(perr)
		}
		s.state = parsingData
		return response.NeedsMore, perr

	case types.BackendNoData:
		if s.state != parsingMeta {
			return response.Done, s.wrongState("NoData")
		}
		s.state = parsingData
		return response.NeedsMore, nil

	case types.BackendParseComplete, types.BackendBindComplete:
		if s.state != parsingMeta {
			return response.Done, s.wrongState(types.BackendMessage(tag).String())
		}
		return response.NeedsMore, nil

	case types.BackendDataRow:
		if s.state != parsingData {
			return response.Done, s.wrongState("DataRow")
		}
		if s.err != nil {
			// A prior error was recorded; keep consuming the stream without
			// decoding further rows so the connection stays usable.
			return response.NeedsMore, nil
		}
		dr, err := message.ParseDataRow(body)
		if err != nil {
			s.recordErr(err)
			return response.NeedsMore, err
		}
		row, err := s.decodeRow(dr)
		if err != nil {
			s.recordErr(err)
			return response.NeedsMore, err
		}
		*s.dest = append(*s.dest, row)
		s.appended++
		return response.NeedsMore, nil

	case types.BackendCommandComplete, types.BackendPortalSuspended:
		s.state = done
		return response.Done, nil

	case types.SkippedParse, types.SkippedBind, types.SkippedDescribe:
		// Placeholders for steps the server skipped after an error earlier
		// in the segment; the ErrorResponse itself already terminated
		// whichever handler it landed on.
		return response.NeedsMore, nil

	case types.SkippedExecute, types.SkippedClose:
		s.state = done
		return response.Done, nil

	case types.BackendErrorResponse:
		diag, err := message.ParseDiagnostics(body)
		if err == nil {
			s.recordErr(pgerr.WithDiagnostics(pgerr.KindExecServerError, diag))
		} else {
			s.recordErr(err)
		}
		s.state = done
		return response.Done, s.err

	default:
		s.state = done
		err := pgerr.New(pgerr.KindIncompatibleResponseType, "unexpected message in row-sink: "+types.BackendMessage(tag).String())
		s.recordErr(err)
		return response.Done, err
	}
}

func (s *Sink[T]) wrongState(kind string) error {
	err := pgerr.New(pgerr.KindIncompatibleResponseType, kind+" received outside its permitted row-sink state")
	s.recordErr(err)
	return err
}

func (s *Sink[T]) decodeRow(dr message.DataRow) (T, error) {
	var row T
	v := reflect.ValueOf(&row).Elem()

	for i, pos := range s.positions {
		f := s.mapper.fields[i]
		fieldVal := v.Field(f.index)

		if pos.DBIndex == invalidPos {
			continue
		}
		if pos.DBIndex >= len(dr.Values) {
			return row, pgerr.New(pgerr.KindProtocolValue, "DataRow has fewer columns than RowDescription declared")
		}

		raw := dr.Values[pos.DBIndex]
		decoded, err := decode(f.typ, raw, pos.Field, s.binary)
		if err != nil {
			return row, err
		}
		fieldVal.Set(decoded)
	}

	return row, nil
}

// rowIsBinary reports whether the server described every column in rd using
// the binary format code; mixed-format RowDescriptions are not expected in
// practice (the request builder asks for one uniform result format) but a
// single text column forces this sink to decode the whole row as text.
func rowIsBinary(rd message.RowDescription) bool {
	if len(rd.Fields) == 0 {
		return false
	}
	for _, f := range rd.Fields {
		if f.Format != types.BinaryFormat {
			return false
		}
	}
	return true
}
