package backendconn

import (
	"github.com/innerpeacez/sharding-sphere/resultset"
	"github.com/innerpeacez/sharding-sphere/wire"
)

// decodeOKPacket parses an OK packet body (protocol-41 layout: header |
// affected_rows lenenc | last_insert_id lenenc | status int2 | warnings
// int2 | info).
func decodeOKPacket(payload []byte) (*resultset.GenericResponse, error) {
	r := wire.NewReader(payload)
	if _, err := r.Int1(); err != nil { // header
		return nil, err
	}
	affected, _, err := r.LengthEncodedInt()
	if err != nil {
		return nil, err
	}
	insertID, _, err := r.LengthEncodedInt()
	if err != nil {
		return nil, err
	}
	status := uint16(0)
	if len(r.Remaining()) >= 2 {
		s, err := r.Int2()
		if err != nil {
			return nil, err
		}
		status = s
	}
	return &resultset.GenericResponse{
		AffectedRows: affected,
		LastInsertID: insertID,
		Status:       status,
	}, nil
}

// decodeErrPacket parses an ERR packet body (header | error_code int2 |
// '#' sql_state[5] | message).
func decodeErrPacket(payload []byte) (*resultset.GenericResponse, error) {
	r := wire.NewReader(payload)
	if _, err := r.Int1(); err != nil { // header
		return nil, err
	}
	code, err := r.Int2()
	if err != nil {
		return nil, err
	}

	sqlState := ""
	if len(r.Remaining()) > 0 {
		if marker, ok := r.PeekHeader(); ok && marker == '#' {
			if _, err := r.Int1(); err != nil {
				return nil, err
			}
			sqlState, err = r.FixedString(5)
			if err != nil {
				return nil, err
			}
		}
	}
	message := r.RestOfPacketString()

	return &resultset.GenericResponse{
		IsError:   true,
		ErrorCode: uint16(code),
		SQLState:  sqlState,
		Message:   message,
	}, nil
}

// decodeColumnDefinition parses a ColumnDefinition41 packet: catalog,
// schema, table, org_table, name, org_name (all length-encoded
// strings), fixed-length filler, charset int2, column length int4, type
// int1, flags int2, decimals int1, 2-byte filler.
func decodeColumnDefinition(payload []byte) (*resultset.ColumnDefinition, error) {
	r := wire.NewReader(payload)
	if _, _, err := r.LengthEncodedString(); err != nil { // catalog
		return nil, err
	}
	schema, _, err := r.LengthEncodedString()
	if err != nil {
		return nil, err
	}
	table, _, err := r.LengthEncodedString()
	if err != nil {
		return nil, err
	}
	if _, _, err := r.LengthEncodedString(); err != nil { // org_table
		return nil, err
	}
	name, _, err := r.LengthEncodedString()
	if err != nil {
		return nil, err
	}
	if _, _, err := r.LengthEncodedString(); err != nil { // org_name
		return nil, err
	}
	if err := r.Skip(1); err != nil { // length-of-fixed-fields filler, always 0x0c
		return nil, err
	}
	charset, err := r.Int2()
	if err != nil {
		return nil, err
	}
	if err := r.Skip(4); err != nil { // column length
		return nil, err
	}
	colType, err := r.Int1()
	if err != nil {
		return nil, err
	}
	flags, err := r.Int2()
	if err != nil {
		return nil, err
	}
	decimals, err := r.Int1()
	if err != nil {
		return nil, err
	}

	return &resultset.ColumnDefinition{
		Schema:       schema,
		Name:         name,
		Table:        table,
		Type:         byte(colType),
		CharacterSet: uint16(charset),
		Flags:        uint16(flags),
		Decimals:     byte(decimals),
	}, nil
}

// decodeTextRow parses a text-protocol row: columnCount length-encoded
// strings, NULL-sentinel (0xfb) standing in for a SQL NULL.
func decodeTextRow(payload []byte, columnCount int) (resultset.Row, error) {
	r := wire.NewReader(payload)
	row := make(resultset.Row, columnCount)
	for i := 0; i < columnCount; i++ {
		value, isNull, err := r.LengthEncodedString()
		if err != nil {
			return nil, err
		}
		if isNull {
			row[i] = nil
			continue
		}
		row[i] = []byte(value)
	}
	return row, nil
}
