// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package function

import (
	"github.com/ffutop/modbus-master/modbus"
)

// FileRecordReference is the reference type of every file record sub-request.
const FileRecordReference = 6

const (
	readFileSubRequestSize  = 7 // reference(1) file(2) record(2) length(2)
	writeFileSubHeaderSize  = 7 // reference(1) file(2) record(2) length(2)
	readFileSubResponseSize = 2 // length(1) reference(1)
)

// FileRecordRequest selects Count registers of file File starting at
// record Record.
type FileRecordRequest struct {
	File   uint16
	Record uint16
	Count  uint16
}

// FileRecord is a block of registers of a file.
type FileRecord struct {
	File   uint16
	Record uint16
	Values []uint16
}

// ReadFileRecord reads one group of registers per sub-request.
type ReadFileRecord struct {
	Requests []FileRecordRequest
}

func (f ReadFileRecord) Code() byte { return modbus.FuncCodeReadFileRecord }

// Request:
//
//	Function code         : 1 byte
//	Byte count            : 1 byte (7 * N)
//	Sub-request N         : reference(1) file(2) record(2) length(2)
func (f ReadFileRecord) Encode() (modbus.ProtocolDataUnit, error) {
	if len(f.Requests) == 0 {
		return modbus.ProtocolDataUnit{}, modbus.InvalidArgument("read file record needs at least one sub-request")
	}
	requestSize := readFileSubRequestSize * len(f.Requests)
	responseSize := 0
	for _, req := range f.Requests {
		if req.Count == 0 {
			return modbus.ProtocolDataUnit{}, modbus.InvalidArgument("record length of file '%v' must not be zero", req.File)
		}
		if req.Record > maxFileRecordNumber {
			return modbus.ProtocolDataUnit{}, modbus.InvalidArgument("record number '%v' must not be bigger than '%v'", req.Record, maxFileRecordNumber)
		}
		responseSize += readFileSubResponseSize + 2*int(req.Count)
	}
	if requestSize > maxFileRecordByteCount {
		return modbus.ProtocolDataUnit{}, modbus.InvalidArgument("request byte count '%v' must not be bigger than '%v'", requestSize, maxFileRecordByteCount)
	}
	if responseSize > maxFileRecordByteCount {
		return modbus.ProtocolDataUnit{}, modbus.InvalidArgument("response byte count '%v' must not be bigger than '%v'", responseSize, maxFileRecordByteCount)
	}

	data := make([]byte, 1, 1+requestSize)
	data[0] = byte(requestSize)
	for _, req := range f.Requests {
		data = append(data, FileRecordReference)
		data = append(data, dataBlock(req.File, req.Record, req.Count)...)
	}
	return modbus.ProtocolDataUnit{FunctionCode: f.Code(), Data: data}, nil
}

// Response:
//
//	Function code         : 1 byte
//	Byte count            : 1 byte
//	Sub-response N        : length(1) reference(1) registers(length-1)
//
// The cursor advances by 1 + length per sub-response and must land exactly
// on the end of the byte count.
func (f ReadFileRecord) Decode(pdu modbus.ProtocolDataUnit) ([][]uint16, error) {
	r, err := open(f.Code(), pdu)
	if err != nil {
		return nil, err
	}
	if _, err := r.byteCount(); err != nil {
		return nil, err
	}
	var records [][]uint16
	for r.remaining() > 0 {
		length, err := r.uint8()
		if err != nil {
			return nil, err
		}
		if length == 0 || length%2 == 0 {
			return nil, modbus.MalformedPDU(f.Code(), "sub-response length '%v' at offset '%v' is invalid", length, r.off-1)
		}
		if err := r.need(int(length)); err != nil {
			return nil, err
		}
		reference, _ := r.uint8()
		if reference != FileRecordReference {
			return nil, modbus.MalformedPDU(f.Code(), "sub-response reference type '%v' is not '%v'", reference, FileRecordReference)
		}
		values, err := r.bytes(int(length) - 1)
		if err != nil {
			return nil, err
		}
		records = append(records, words(values))
	}
	return records, nil
}

// WriteFileRecord writes one group of registers per record.
type WriteFileRecord struct {
	Records []FileRecord
}

func (f WriteFileRecord) Code() byte { return modbus.FuncCodeWriteFileRecord }

// Request:
//
//	Function code         : 1 byte
//	Byte count            : 1 byte
//	Sub-request N         : reference(1) file(2) record(2) length(2) registers(2*length)
func (f WriteFileRecord) Encode() (modbus.ProtocolDataUnit, error) {
	if len(f.Records) == 0 {
		return modbus.ProtocolDataUnit{}, modbus.InvalidArgument("write file record needs at least one record")
	}
	size := 0
	for _, rec := range f.Records {
		if len(rec.Values) == 0 {
			return modbus.ProtocolDataUnit{}, modbus.InvalidArgument("record of file '%v' must not be empty", rec.File)
		}
		if rec.Record > maxFileRecordNumber {
			return modbus.ProtocolDataUnit{}, modbus.InvalidArgument("record number '%v' must not be bigger than '%v'", rec.Record, maxFileRecordNumber)
		}
		size += writeFileSubHeaderSize + 2*len(rec.Values)
	}
	if size > maxFileRecordByteCount {
		return modbus.ProtocolDataUnit{}, modbus.InvalidArgument("request byte count '%v' must not be bigger than '%v'", size, maxFileRecordByteCount)
	}

	data := make([]byte, 1, 1+size)
	data[0] = byte(size)
	for _, rec := range f.Records {
		data = append(data, FileRecordReference)
		data = append(data, dataBlock(rec.File, rec.Record, uint16(len(rec.Values)))...)
		data = append(data, dataBlock(rec.Values...)...)
	}
	return modbus.ProtocolDataUnit{FunctionCode: f.Code(), Data: data}, nil
}

// Decode parses the echo of the request.
func (f WriteFileRecord) Decode(pdu modbus.ProtocolDataUnit) ([]FileRecord, error) {
	r, err := open(f.Code(), pdu)
	if err != nil {
		return nil, err
	}
	if _, err := r.byteCount(); err != nil {
		return nil, err
	}
	var records []FileRecord
	for r.remaining() > 0 {
		reference, err := r.uint8()
		if err != nil {
			return nil, err
		}
		if reference != FileRecordReference {
			return nil, modbus.MalformedPDU(f.Code(), "sub-request reference type '%v' is not '%v'", reference, FileRecordReference)
		}
		var rec FileRecord
		if rec.File, err = r.uint16(); err != nil {
			return nil, err
		}
		if rec.Record, err = r.uint16(); err != nil {
			return nil, err
		}
		length, err := r.uint16()
		if err != nil {
			return nil, err
		}
		values, err := r.bytes(2 * int(length))
		if err != nil {
			return nil, err
		}
		rec.Values = words(values)
		records = append(records, rec)
	}
	return records, nil
}
